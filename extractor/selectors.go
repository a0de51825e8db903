package extractor

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// FieldSelector locates at most one subtree inside a product block.
type FieldSelector interface {
	Select(block *goquery.Selection) *goquery.Selection
}

// CSSSelector is a FieldSelector backed by a compiled CSS selector.
type CSSSelector struct {
	expr    string
	matcher cascadia.Selector
}

// NewCSSSelector compiles expr.
func NewCSSSelector(expr string) (CSSSelector, error) {
	matcher, err := cascadia.Compile(expr)
	if err != nil {
		return CSSSelector{}, fmt.Errorf("compile selector %q: %w", expr, err)
	}
	return CSSSelector{expr: expr, matcher: matcher}, nil
}

// Select returns the first match under block in document order.
func (s CSSSelector) Select(block *goquery.Selection) *goquery.Selection {
	return block.FindMatcher(s.matcher).First()
}

func (s CSSSelector) String() string {
	return s.expr
}

// Selectors bundles the block marker and the per-field selectors.
type Selectors struct {
	Block    CSSSelector
	Title    FieldSelector
	Author   FieldSelector
	Price    FieldSelector
	Discount FieldSelector
}

// SelectorExprs holds the raw selector expressions, as they come from configuration.
type SelectorExprs struct {
	Block    string
	Title    string
	Author   string
	Price    string
	Discount string
}

// DefaultSelectorExprs returns the markup contract of the wishlist page.
func DefaultSelectorExprs() SelectorExprs {
	return SelectorExprs{
		Block:    ".prod-details-sec",
		Title:    ".product-shelf-title",
		Author:   ".product-shelf-author",
		Price:    ".current-price",
		Discount: ".discount-amount-text",
	}
}

// Compile turns every expression into a CSSSelector.
func (e SelectorExprs) Compile() (Selectors, error) {
	var (
		sel Selectors
		err error
	)
	if sel.Block, err = NewCSSSelector(e.Block); err != nil {
		return Selectors{}, fmt.Errorf("block: %w", err)
	}
	fields := []struct {
		name string
		expr string
		dst  *FieldSelector
	}{
		{"title", e.Title, &sel.Title},
		{"author", e.Author, &sel.Author},
		{"price", e.Price, &sel.Price},
		{"discount", e.Discount, &sel.Discount},
	}
	for _, f := range fields {
		compiled, err := NewCSSSelector(f.expr)
		if err != nil {
			return Selectors{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = compiled
	}
	return sel, nil
}
