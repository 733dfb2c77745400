package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func catalog() []models.Product {
	return append(models.SeedProducts(), models.Product{
		ID:          "7",
		Name:        "Pocket Organizer",
		Description: "Keeps your WATCH strap and cables tidy.",
		Price:       100,
		Category:    "Accessories",
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "default matches all", filter: DefaultFilter(), want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "keyword in name or description, case-insensitive", filter: Filter{Keyword: "watch"}, want: []string{"3", "7"}},
		{name: "category exact", filter: Filter{Category: "Electronics"}, want: []string{"1", "3", "6"}},
		{name: "category All is no filter", filter: Filter{Category: "All"}, want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "category is case-sensitive", filter: Filter{Category: "electronics"}, want: []string{}},
		{name: "keyword and category intersect", filter: Filter{Keyword: "watch", Category: "Electronics"}, want: []string{"3"}},
		{name: "price bounds are inclusive", filter: Filter{MinPrice: Price(100), MaxPrice: Price(100)}, want: []string{"7"}},
		{name: "inverted bounds yield nothing", filter: Filter{MinPrice: Price(200), MaxPrice: Price(100)}, want: []string{}},
		{name: "explicit zero max keeps only free items", filter: Filter{MaxPrice: Price(0)}, want: []string{}},
		{name: "min only leaves max open", filter: Filter{MinPrice: Price(150)}, want: []string{"1", "2", "6"}},
		{name: "unknown category yields nothing", filter: Filter{Category: "Garden"}, want: []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(Apply(catalog(), tt.filter)))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := catalog()
	_ = Apply(in, Filter{Keyword: "chair"})
	assert.Len(t, in, 7)
	assert.Equal(t, "1", in[0].ID)
}

func TestFromValues(t *testing.T) {
	t.Parallel()

	f := FromValues(url.Values{
		"keyword":  {" Watch "},
		"category": {"Electronics"},
		"minPrice": {"10.5"},
		"maxPrice": {"oops"},
	})
	assert.Equal(t, "Watch", f.Keyword)
	assert.Equal(t, "Electronics", f.Category)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 10.5, *f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	lo, hi := f.Bounds()
	assert.Equal(t, 10.5, lo)
	assert.EqualValues(t, DefaultMaxPrice, hi)

	empty := FromValues(url.Values{})
	assert.Equal(t, DefaultFilter(), empty)
}

func TestValues_RoundTrip(t *testing.T) {
	t.Parallel()

	f := Filter{Keyword: "desk", Category: "Furniture", MinPrice: Price(1), MaxPrice: Price(250.25)}
	require.Equal(t, f, FromValues(f.Values()))
}

func TestApply_KeywordOnlyUsesDefaultBounds(t *testing.T) {
	t.Parallel()

	got := Apply(models.SeedProducts(), Filter{Keyword: "watch"})
	require.NotEmpty(t, got)
	assert.Equal(t, "3", got[0].ID)

	assert.Empty(t, Filter{}.Values().Get("maxPrice"))
}
