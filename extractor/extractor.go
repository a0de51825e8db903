// Package extractor turns wishlist markup into book records.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/aluiziolira/wishlist-watch/models"
	"github.com/aluiziolira/wishlist-watch/parser"
)

// ErrNoBlockSelector is returned when the extractor has no compiled block selector.
var ErrNoBlockSelector = errors.New("no block selector configured")

// ExtractionError reports a product block missing a required field.
type ExtractionError struct {
	Index int
	Field string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("product block %d: missing %s", e.Index, e.Field)
}

// Extractor maps product blocks to books.
type Extractor struct {
	sel          Selectors
	authorPrefix string
}

// New builds an extractor. authorPrefix is stripped from the author text.
func New(sel Selectors, authorPrefix string) *Extractor {
	return &Extractor{sel: sel, authorPrefix: authorPrefix}
}

// Extract parses markup and returns one book per product block, in document
// order. A block missing a required field aborts the extraction and no books
// are returned.
func (e *Extractor) Extract(markup string) ([]models.Book, error) {
	if e.sel.Block.matcher == nil {
		return nil, ErrNoBlockSelector
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	blocks := doc.FindMatcher(e.sel.Block.matcher)
	books := make([]models.Book, 0, blocks.Length())
	var extractErr error
	blocks.EachWithBreak(func(i int, block *goquery.Selection) bool {
		book, err := e.extractBook(block)
		if err != nil {
			var missing *parser.MissingFieldError
			if errors.As(err, &missing) {
				extractErr = &ExtractionError{Index: i, Field: missing.Field}
			} else {
				extractErr = fmt.Errorf("product block %d: %w", i, err)
			}
			return false
		}
		books = append(books, book)
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}
	return books, nil
}

func (e *Extractor) extractBook(block *goquery.Selection) (models.Book, error) {
	book := models.Book{
		Title:        fieldText(e.sel.Title, block),
		Author:       parser.StripPrefix(fieldText(e.sel.Author, block), e.authorPrefix),
		CurrentPrice: fieldText(e.sel.Price, block),
	}
	if err := parser.ValidateBook(&book); err != nil {
		return models.Book{}, err
	}
	if discount := fieldText(e.sel.Discount, block); discount != "" {
		book.Discount = &discount
	}
	return book, nil
}

// fieldText returns the normalized text of the selected subtree, or "" when
// nothing matched.
func fieldText(sel FieldSelector, block *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	match := sel.Select(block)
	if match == nil || match.Length() == 0 {
		return ""
	}
	return parser.NormalizeText(textFragments(match.Get(0))...)
}

func textFragments(node *html.Node) []string {
	var fragments []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			fragments = append(fragments, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return fragments
}
