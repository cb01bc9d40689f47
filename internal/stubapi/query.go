package stubapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/filter"
)

const (
	defaultLimit = 12
	maxLimit     = 100
)

// ListParams holds the decoded catalog query.
type ListParams struct {
	Filter filter.State
	Limit  int
}

// parseLimit clamps the limit query parameter to 1..maxLimit.
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func matches(p domain.Product, st filter.State) bool {
	if st.Category != "" && !strings.EqualFold(p.Category, st.Category) {
		return false
	}
	if st.Search != "" {
		needle := strings.ToLower(st.Search)
		hay := strings.ToLower(strings.Join([]string{p.Name.En, p.Name.Ar, p.Description.En, p.Description.Ar}, "\n"))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	final := p.FinalPrice()
	if st.MinPrice != nil && final.LessThan(decimal.NewFromInt(int64(*st.MinPrice))) {
		return false
	}
	if st.MaxPrice != nil && final.GreaterThan(decimal.NewFromInt(int64(*st.MaxPrice))) {
		return false
	}
	if st.MinRating != nil && p.Rating.Average < float64(*st.MinRating) {
		return false
	}
	if st.InStock && !p.InStock() {
		return false
	}
	if st.OnSale && !p.OnSale() {
		return false
	}
	return true
}

func sortProducts(ps []domain.Product, key string) {
	less := func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) }
	switch filter.NormalizeSort(key) {
	case filter.SortPriceAsc:
		less = func(i, j int) bool { return ps[i].FinalPrice().LessThan(ps[j].FinalPrice()) }
	case filter.SortPriceDesc:
		less = func(i, j int) bool { return ps[i].FinalPrice().GreaterThan(ps[j].FinalPrice()) }
	case filter.SortRating:
		less = func(i, j int) bool { return ps[i].Rating.Average > ps[j].Rating.Average }
	case filter.SortPopularity:
		less = func(i, j int) bool { return ps[i].Rating.Count > ps[j].Rating.Count }
	}
	// Product ids break ties so paging is deterministic.
	sort.SliceStable(ps, func(i, j int) bool {
		if less(i, j) {
			return true
		}
		if less(j, i) {
			return false
		}
		return ps[i].ID < ps[j].ID
	})
}

// Query filters, sorts and paginates the catalog.
func (m *Memory) Query(params ListParams) domain.ProductPage {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page := params.Filter.Page
	if page < 1 {
		page = 1
	}

	matched := []domain.Product{}
	for _, p := range m.Products() {
		if matches(p, params.Filter) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, params.Filter.Sort)

	total := len(matched)
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	// Pages past the end are empty; checked before multiplying so huge page
	// numbers cannot overflow.
	start := total
	if page-1 < pages {
		start = (page - 1) * limit
	}
	end := start + limit
	if end > total {
		end = total
	}
	return domain.ProductPage{
		Products: matched[start:end],
		Pagination: domain.Pagination{
			Page:  page,
			Limit: limit,
			Pages: pages,
			Total: total,
		},
	}
}
