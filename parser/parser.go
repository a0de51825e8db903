package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aluiziolira/wishlist-watch/models"
)

// Required field names, as reported by MissingFieldError.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
	FieldPrice  = "price"
)

// MissingFieldError reports a required book field with no text.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("book missing %s", e.Field)
}

// ValidateBook ensures the extractor captured the required fields.
func ValidateBook(b *models.Book) error {
	if b == nil {
		return fmt.Errorf("book is nil")
	}
	if strings.TrimSpace(b.Title) == "" {
		return &MissingFieldError{Field: FieldTitle}
	}
	if strings.TrimSpace(b.Author) == "" {
		return &MissingFieldError{Field: FieldAuthor}
	}
	if strings.TrimSpace(b.CurrentPrice) == "" {
		return &MissingFieldError{Field: FieldPrice}
	}
	return nil
}

// Line breaks, non-breaking spaces and ordinary spaces.
var spaceRun = regexp.MustCompile("[\n\u00a0 ]+")

// NormalizeText joins the text fragments of a markup subtree and collapses the
// whitespace noise between them into single spaces.
func NormalizeText(fragments ...string) string {
	joined := strings.Join(fragments, "")
	return strings.TrimSpace(spaceRun.ReplaceAllString(joined, " "))
}

// StripPrefix removes every leading repetition of prefix from text.
func StripPrefix(text, prefix string) string {
	if prefix == "" {
		return text
	}
	for strings.HasPrefix(text, prefix) {
		text = text[len(prefix):]
	}
	return text
}
