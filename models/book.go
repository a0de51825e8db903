// Package models defines data structures for the wishlist watcher.
package models

import (
	"fmt"
	"time"
)

// Book represents one wishlist listing.
type Book struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	CurrentPrice string  `json:"current_price"`
	Discount     *string `json:"discount_percentage"`
}

// NewBook builds a book that is not currently discounted.
func NewBook(title, author, price string) Book {
	return Book{Title: title, Author: author, CurrentPrice: price}
}

// NewDiscountedBook builds a book showing the given discount text.
func NewDiscountedBook(title, author, price, discount string) Book {
	return Book{Title: title, Author: author, CurrentPrice: price, Discount: &discount}
}

// HasDiscount reports whether the listing currently shows a discount.
func (b Book) HasDiscount() bool {
	return b.Discount != nil
}

// DiscountText returns the discount text, or "" when there is none.
func (b Book) DiscountText() string {
	if b.Discount == nil {
		return ""
	}
	return *b.Discount
}

func (b Book) String() string {
	if b.HasDiscount() {
		return fmt.Sprintf("%s, %s. Currently %s (%s)", b.Title, b.Author, b.CurrentPrice, *b.Discount)
	}
	return fmt.Sprintf("%s, %s. Currently %s", b.Title, b.Author, b.CurrentPrice)
}

// Change is a price difference between the snapshot and the current listing.
// Book points into the current book slice.
type Change struct {
	Book          *Book
	PreviousPrice string
}

func (c Change) String() string {
	return fmt.Sprintf("%s, was %s", c.Book, c.PreviousPrice)
}

// RunResult holds the overall result of one watch run.
type RunResult struct {
	Source          string
	Books           []Book
	Changes         []Change
	DuplicateTitles []string
	DiscountCount   int
	StartTime       time.Time
	EndTime         time.Time
}
