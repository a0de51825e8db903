// Package report renders the human-readable price report.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aluiziolira/wishlist-watch/models"
)

// Write prints the price changes, when there are any, followed by every
// currently discounted book.
func Write(w io.Writer, changes []models.Change, current []models.Book) error {
	var b strings.Builder

	if len(changes) > 0 {
		b.WriteString("Price change\n")
		b.WriteString("============\n")
		for _, change := range changes {
			fmt.Fprintf(&b, "%s\n", change)
		}
		b.WriteString("\n\n\n")
	}

	b.WriteString("Discounted\n")
	b.WriteString("==========\n")
	for _, book := range current {
		if book.HasDiscount() {
			fmt.Fprintf(&b, "%s\n", book)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
