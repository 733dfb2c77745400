package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	AllCategories   = "All"
	DefaultMaxPrice = 1_000_000
)

// Filter narrows the catalogue. A nil price bound falls back to 0 for
// MinPrice and DefaultMaxPrice for MaxPrice, so the zero Filter matches all.
type Filter struct {
	Keyword  string   `json:"keyword,omitempty"`
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

func DefaultFilter() Filter {
	return Filter{}
}

// Price returns a bound for MinPrice or MaxPrice.
func Price(v float64) *float64 {
	return &v
}

// Bounds resolves the inclusive price window.
func (f Filter) Bounds() (lo, hi float64) {
	lo, hi = 0, DefaultMaxPrice
	if f.MinPrice != nil {
		lo = *f.MinPrice
	}
	if f.MaxPrice != nil {
		hi = *f.MaxPrice
	}
	return lo, hi
}

func parseBound(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func FromValues(v url.Values) Filter {
	return Filter{
		Keyword:  strings.TrimSpace(v.Get("keyword")),
		Category: v.Get("category"),
		MinPrice: parseBound(v.Get("minPrice")),
		MaxPrice: parseBound(v.Get("maxPrice")),
	}
}

func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Keyword != "" {
		v.Set("keyword", f.Keyword)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	return v
}

func (f Filter) matchesKeyword(p models.Product) bool {
	if f.Keyword == "" {
		return true
	}
	kw := strings.ToLower(f.Keyword)
	return strings.Contains(strings.ToLower(p.Name), kw) ||
		strings.Contains(strings.ToLower(p.Description), kw)
}

func (f Filter) matchesCategory(p models.Product) bool {
	if f.Category == "" || f.Category == AllCategories {
		return true
	}
	return p.Category == f.Category
}

func (f Filter) Match(p models.Product) bool {
	lo, hi := f.Bounds()
	return f.matchesKeyword(p) &&
		f.matchesCategory(p) &&
		p.Price >= lo && p.Price <= hi
}

// Apply keeps the products matching f, in their original order.
func Apply(products []models.Product, f Filter) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
