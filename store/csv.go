package store

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/aluiziolira/wishlist-watch/models"
)

var csvHeader = []string{"title", "author", "current_price", "discount"}

// ExportCSV writes books to path as CSV with a header row.
func ExportCSV(path string, books []models.Book) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, book := range books {
		record := []string{
			book.Title,
			book.Author,
			book.CurrentPrice,
			book.DiscountText(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}
