// Package filter holds the catalog FilterState and its query-string form.
// The query string is the durable representation of what is being viewed, so
// Encode and Decode must round-trip exactly.
package filter

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort keys accepted by the catalog.
const (
	SortNewest     = "newest"
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
	SortRating     = "rating"
	SortPopularity = "popularity"
)

// Filter keys, identical to their query-string parameter names.
const (
	KeyCategory  = "category"
	KeySearch    = "search"
	KeyMinPrice  = "minPrice"
	KeyMaxPrice  = "maxPrice"
	KeySort      = "sort"
	KeyMinRating = "rating"
	KeyInStock   = "inStock"
	KeyOnSale    = "onSale"
	KeyPage      = "page"
)

var sortAliases = map[string]string{
	SortNewest:     SortNewest,
	SortPriceAsc:   SortPriceAsc,
	SortPriceDesc:  SortPriceDesc,
	SortRating:     SortRating,
	SortPopularity: SortPopularity,
	"price-low":    SortPriceAsc,
	"price-high":   SortPriceDesc,
}

// State is the client-local set of catalog query parameters.
type State struct {
	Category  string
	Search    string
	MinPrice  *int
	MaxPrice  *int
	Sort      string
	MinRating *int
	InStock   bool
	OnSale    bool
	Page      int
}

// Default returns the unfiltered state: newest first, page 1.
func Default() State {
	return State{Sort: SortNewest, Page: 1}
}

// NormalizeSort maps a sort value or alias onto a canonical key.
// Unknown values fall back to newest.
func NormalizeSort(v string) string {
	if s, ok := sortAliases[strings.ToLower(strings.TrimSpace(v))]; ok {
		return s
	}
	return SortNewest
}

// parseDigits accepts only non-empty ASCII digit strings.
func parseDigits(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// Set updates one field and resets the page to 1. Numeric fields that do not
// parse as digit strings become unset. Unknown keys only reset the page.
func (s State) Set(key, value string) State {
	switch key {
	case KeyCategory:
		s.Category = strings.TrimSpace(value)
	case KeySearch:
		s.Search = strings.TrimSpace(value)
	case KeyMinPrice:
		s.MinPrice = parseDigits(value)
	case KeyMaxPrice:
		s.MaxPrice = parseDigits(value)
	case KeySort:
		s.Sort = NormalizeSort(value)
	case KeyMinRating:
		s.MinRating = parseDigits(value)
	case KeyInStock:
		s.InStock = parseFlag(value)
	case KeyOnSale:
		s.OnSale = parseFlag(value)
	}
	s.Page = 1
	return s
}

// WithPage moves to page n without touching the filters. n < 1 becomes 1.
func (s State) WithPage(n int) State {
	if n < 1 {
		n = 1
	}
	s.Page = n
	return s
}

// IsDefault reports whether no filter deviates from Default.
func (s State) IsDefault() bool {
	return len(s.Encode()) == 0
}

func nonNegative(p *int) *int {
	if p == nil || *p < 0 {
		return nil
	}
	return p
}

// Normalize returns s in the form Decode produces: trimmed text, a canonical
// sort key, non-negative numeric bounds and a page of at least 1.
// Decode(s.Encode()) == s.Normalize() for every State.
func (s State) Normalize() State {
	s.Category = strings.TrimSpace(s.Category)
	s.Search = strings.TrimSpace(s.Search)
	s.MinPrice = nonNegative(s.MinPrice)
	s.MaxPrice = nonNegative(s.MaxPrice)
	s.MinRating = nonNegative(s.MinRating)
	s.Sort = NormalizeSort(s.Sort)
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

// Encode returns only the non-default fields of the normalized state as
// query parameters.
func (s State) Encode() url.Values {
	s = s.Normalize()
	v := url.Values{}
	if s.Category != "" {
		v.Set(KeyCategory, s.Category)
	}
	if s.Search != "" {
		v.Set(KeySearch, s.Search)
	}
	if s.MinPrice != nil {
		v.Set(KeyMinPrice, strconv.Itoa(*s.MinPrice))
	}
	if s.MaxPrice != nil {
		v.Set(KeyMaxPrice, strconv.Itoa(*s.MaxPrice))
	}
	if s.Sort != SortNewest {
		v.Set(KeySort, s.Sort)
	}
	if s.MinRating != nil {
		v.Set(KeyMinRating, strconv.Itoa(*s.MinRating))
	}
	if s.InStock {
		v.Set(KeyInStock, "true")
	}
	if s.OnSale {
		v.Set(KeyOnSale, "true")
	}
	if s.Page > 1 {
		v.Set(KeyPage, strconv.Itoa(s.Page))
	}
	return v
}

// String is the serialized query string without the leading '?'.
func (s State) String() string {
	return s.Encode().Encode()
}

// Decode rebuilds a State from query parameters. Missing or malformed
// values take their defaults.
func Decode(v url.Values) State {
	s := Default()
	s.Category = strings.TrimSpace(v.Get(KeyCategory))
	s.Search = strings.TrimSpace(v.Get(KeySearch))
	s.MinPrice = parseDigits(v.Get(KeyMinPrice))
	s.MaxPrice = parseDigits(v.Get(KeyMaxPrice))
	if raw := v.Get(KeySort); raw != "" {
		s.Sort = NormalizeSort(raw)
	}
	s.MinRating = parseDigits(v.Get(KeyMinRating))
	s.InStock = parseFlag(v.Get(KeyInStock))
	s.OnSale = parseFlag(v.Get(KeyOnSale))
	if p := parseDigits(v.Get(KeyPage)); p != nil && *p > 0 {
		s.Page = *p
	}
	return s
}

// Parse decodes a raw query string; a leading '?' is ignored.
func Parse(query string) (State, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return Default(), err
	}
	return Decode(v), nil
}
