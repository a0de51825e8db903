// Package diff compares the previous snapshot with the current wishlist.
package diff

import (
	"go.uber.org/zap"

	"github.com/aluiziolira/wishlist-watch/models"
)

// Result is the outcome of comparing two book lists.
type Result struct {
	Changes []models.Change
	// DuplicateTitles lists, in old-list order, every title that matched more
	// than one current book.
	DuplicateTitles []string
}

// Compare joins old and current by exact title. A title that has left the
// current list is ignored. When several current books share a title a warning
// is logged and the first of them in current order is compared.
func Compare(old, current []models.Book, logger *zap.Logger) Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	byTitle := make(map[string][]int, len(current))
	for i := range current {
		byTitle[current[i].Title] = append(byTitle[current[i].Title], i)
	}

	var result Result
	for _, oldBook := range old {
		matches := byTitle[oldBook.Title]
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			rendered := make([]string, 0, len(matches))
			for _, idx := range matches {
				rendered = append(rendered, current[idx].String())
			}
			logger.Warn("multiple books share a title",
				zap.String("title", oldBook.Title),
				zap.Strings("books", rendered),
			)
			result.DuplicateTitles = append(result.DuplicateTitles, oldBook.Title)
		}

		match := &current[matches[0]]
		if match.CurrentPrice != oldBook.CurrentPrice {
			result.Changes = append(result.Changes, models.Change{
				Book:          match,
				PreviousPrice: oldBook.CurrentPrice,
			})
		}
	}
	return result
}

// FindChangedPrices returns the price changes between old and current.
func FindChangedPrices(old, current []models.Book, logger *zap.Logger) []models.Change {
	return Compare(old, current, logger).Changes
}
