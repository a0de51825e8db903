package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/wishlist-watch/models"
)

func newDefaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	sel, err := DefaultSelectorExprs().Compile()
	require.NoError(t, err)
	return New(sel, "By: ")
}

func TestExtractFixture(t *testing.T) {
	markup, err := os.ReadFile(filepath.Join("testdata", "wishlist.html"))
	require.NoError(t, err)

	books, err := newDefaultExtractor(t).Extract(string(markup))
	require.NoError(t, err)

	expected := []models.Book{
		models.NewDiscountedBook("The Dispossessed", "Ursula K. Le Guin", "$12.99", "Save 28%"),
		models.NewBook("Solaris", "Stanisław Lem", "$15.00"),
		models.NewDiscountedBook("Roadside Picnic", "Arkady Strugatsky, Boris Strugatsky", "$10.49", "Save 30%"),
	}
	assert.Equal(t, expected, books)
}

func TestExtractMissingRequiredField(t *testing.T) {
	tests := []struct {
		name      string
		markup    string
		wantIndex int
		wantField string
	}{
		{
			name: "missing price",
			markup: `<div class="prod-details-sec">
				<h3 class="product-shelf-title">Solaris</h3>
				<div class="product-shelf-author">By: Stanisław Lem</div>
			</div>`,
			wantIndex: 0,
			wantField: "price",
		},
		{
			name: "second block missing title",
			markup: `<div class="prod-details-sec">
				<h3 class="product-shelf-title">Solaris</h3>
				<div class="product-shelf-author">By: Stanisław Lem</div>
				<span class="current-price">$15.00</span>
			</div>
			<div class="prod-details-sec">
				<div class="product-shelf-author">By: Frank Herbert</div>
				<span class="current-price">$9.99</span>
			</div>`,
			wantIndex: 1,
			wantField: "title",
		},
		{
			name: "author is only the prefix",
			markup: `<div class="prod-details-sec">
				<h3 class="product-shelf-title">Solaris</h3>
				<div class="product-shelf-author">By: </div>
				<span class="current-price">$15.00</span>
			</div>`,
			wantIndex: 0,
			wantField: "author",
		},
		{
			name: "whitespace-only price",
			markup: `<div class="prod-details-sec">
				<h3 class="product-shelf-title">Solaris</h3>
				<div class="product-shelf-author">By: Stanisław Lem</div>
				<span class="current-price"> &nbsp; </span>
			</div>`,
			wantIndex: 0,
			wantField: "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := newDefaultExtractor(t).Extract(tt.markup)
			require.Error(t, err)
			assert.Empty(t, books)

			var extractErr *ExtractionError
			require.True(t, errors.As(err, &extractErr), "expected ExtractionError, got %T", err)
			assert.Equal(t, tt.wantIndex, extractErr.Index)
			assert.Equal(t, tt.wantField, extractErr.Field)
		})
	}
}

func TestExtractNoBlocks(t *testing.T) {
	books, err := newDefaultExtractor(t).Extract("<html><body><p>Your wishlist is empty.</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestExtractEmptyDiscountIsNoDiscount(t *testing.T) {
	markup := `<div class="prod-details-sec">
		<h3 class="product-shelf-title">Solaris</h3>
		<div class="product-shelf-author">By: Stanisław Lem</div>
		<span class="current-price">$15.00</span>
		<span class="discount-amount-text">  </span>
	</div>`

	books, err := newDefaultExtractor(t).Extract(markup)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.False(t, books[0].HasDiscount())
}

func TestExtractUsesFirstFieldMatch(t *testing.T) {
	markup := `<div class="prod-details-sec">
		<h3 class="product-shelf-title">Solaris</h3>
		<div class="product-shelf-author">By: Stanisław Lem</div>
		<span class="current-price">$15.00</span>
		<span class="current-price">$99.00</span>
	</div>`

	books, err := newDefaultExtractor(t).Extract(markup)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "$15.00", books[0].CurrentPrice)
}

type attrSelector struct {
	attr string
}

func (s attrSelector) Select(block *goquery.Selection) *goquery.Selection {
	return block.Find("[" + s.attr + "]").First()
}

func TestExtractInjectedSelectors(t *testing.T) {
	exprs := SelectorExprs{
		Block:    "li.item",
		Title:    ".name",
		Author:   ".by",
		Price:    ".cost",
		Discount: ".promo",
	}
	sel, err := exprs.Compile()
	require.NoError(t, err)
	sel.Price = attrSelector{attr: "data-price"}

	markup := `<ul>
		<li class="item"><b class="name">Dune</b><i class="by">Frank Herbert</i><span data-price>$9.99</span></li>
	</ul>`

	books, err := New(sel, "").Extract(markup)
	require.NoError(t, err)
	assert.Equal(t, []models.Book{models.NewBook("Dune", "Frank Herbert", "$9.99")}, books)
}

func TestSelectorExprsCompileInvalid(t *testing.T) {
	exprs := DefaultSelectorExprs()
	exprs.Price = "span[["
	_, err := exprs.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestExtractWithoutBlockSelector(t *testing.T) {
	sel, err := DefaultSelectorExprs().Compile()
	require.NoError(t, err)
	sel.Block = CSSSelector{}

	books, err := New(sel, "").Extract(`<div class="prod-details-sec"></div>`)
	require.ErrorIs(t, err, ErrNoBlockSelector)
	assert.Nil(t, books)
}
