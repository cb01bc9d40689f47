// Package discovery is the Product Discovery View: filter and pagination
// state, catalog queries, and the merge of results with the user's wishlist
// and cart membership.
package discovery

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/filter"
	"gaming-storefront/internal/i18n"
	"gaming-storefront/internal/notify"
)

// DefaultPageSize is the fixed catalog page size.
const DefaultPageSize = 12

// ErrSuperseded is returned by LoadPage when a later LoadPage was issued
// before this one completed; its result was discarded.
var ErrSuperseded = errors.New("discovery: response superseded by a newer query")

// Catalog is the read slice of the catalog API used by the view.
type Catalog interface {
	ListProducts(ctx context.Context, st filter.State, limit int) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// RecentStore records product detail visits.
type RecentStore interface {
	RecentlyViewed(ctx context.Context) ([]string, error)
	PushRecentlyViewed(ctx context.Context, productID string) ([]string, error)
}

// Card is a product as displayed: price after discount plus membership flags.
type Card struct {
	Product      domain.Product
	FinalPrice   decimal.Decimal
	Wishlisted   bool
	InCart       bool
	CartQuantity int
}

// Option configures a View.
type Option func(*View)

// WithPageSize overrides the page size.
func WithPageSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.pageSize = n
		}
	}
}

// WithScrollToTop registers the hook run after a page is displayed.
func WithScrollToTop(fn func()) Option {
	return func(v *View) { v.scrollToTop = fn }
}

// WithQuerySync registers the hook receiving the serialized FilterState
// whenever it changes (the URL bar in a browser).
func WithQuerySync(fn func(query string)) Option {
	return func(v *View) { v.syncQuery = fn }
}

// WithRecentStore enables recently viewed tracking.
func WithRecentStore(s RecentStore) Option {
	return func(v *View) { v.recent = s }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(v *View) { v.logger = l }
}

// View owns the discovery state. Safe for concurrent use: overlapping
// LoadPage calls are allowed, and only the most recently issued one may
// change what is displayed.
type View struct {
	catalog  Catalog
	notifier notify.Notifier
	recent   RecentStore
	logger   *log.Logger
	pageSize int

	scrollToTop func()
	syncQuery   func(string)

	mu         sync.Mutex
	filters    filter.State
	seq        uint64
	products   []domain.Product
	pagination domain.Pagination
	loaded     bool
	wishlist   map[string]struct{}
	cartQty    map[string]int
}

// New creates a View starting from initial (typically decoded from the
// current URL).
func New(catalog Catalog, notifier notify.Notifier, initial filter.State, opts ...Option) *View {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if initial.Page < 1 {
		initial.Page = 1
	}
	initial.Sort = filter.NormalizeSort(initial.Sort)
	v := &View{
		catalog:  catalog,
		notifier: notifier,
		logger:   log.Default(),
		pageSize: DefaultPageSize,
		filters:  initial,
		wishlist: map[string]struct{}{},
		cartQty:  map[string]int{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Filters returns the current FilterState.
func (v *View) Filters() filter.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// QueryString is the serialized FilterState.
func (v *View) QueryString() string {
	return v.Filters().String()
}

// SetFilter updates one filter field, resets the page to 1 and syncs the
// query string, which it returns. A LoadPage still in flight is superseded.
func (v *View) SetFilter(key, value string) string {
	v.mu.Lock()
	v.seq++
	v.filters = v.filters.Set(key, value)
	q := v.filters.String()
	v.mu.Unlock()
	v.sync(q)
	return q
}

// ClearFilters restores the defaults and clears the query string. A LoadPage
// still in flight is superseded.
func (v *View) ClearFilters() string {
	v.mu.Lock()
	v.seq++
	v.filters = filter.Default()
	v.mu.Unlock()
	v.sync("")
	return ""
}

func (v *View) sync(q string) {
	if v.syncQuery != nil {
		v.syncQuery(q)
	}
}

// Reload queries the current filters and page.
func (v *View) Reload(ctx context.Context) error {
	st := v.Filters()
	return v.LoadPage(ctx, st, st.Page)
}

// GoToPage moves to page n of the current filters.
func (v *View) GoToPage(ctx context.Context, n int) error {
	return v.LoadPage(ctx, v.Filters(), n)
}

// LoadPage issues one catalog query for st at page. On success the page
// replaces the displayed products, the FilterState adopts st at that page and
// the scroll hook runs. On failure an error toast is shown and the previous
// products stay visible. A response that arrives after a newer LoadPage was
// issued is dropped and ErrSuperseded is returned.
func (v *View) LoadPage(ctx context.Context, st filter.State, page int) error {
	st = st.WithPage(page)

	v.mu.Lock()
	v.seq++
	ticket := v.seq
	v.mu.Unlock()

	res, err := v.catalog.ListProducts(ctx, st, v.pageSize)

	v.mu.Lock()
	if ticket != v.seq {
		v.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		v.mu.Unlock()
		v.logger.Printf("WARN: discovery: load page %d (%s) failed: %v", page, st.String(), err)
		v.notifier.Error(i18n.MsgLoadProductsFailed)
		return err
	}
	v.products = res.Products
	v.pagination = res.Pagination
	v.loaded = true
	q := st.String()
	changed := v.filters.String() != q
	v.filters = st
	v.mu.Unlock()

	if changed {
		v.sync(q)
	}
	if v.scrollToTop != nil {
		v.scrollToTop()
	}
	return nil
}

// Products returns the displayed page.
func (v *View) Products() []domain.Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.Product, len(v.products))
	copy(out, v.products)
	return out
}

// Pagination returns the pagination of the displayed page.
func (v *View) Pagination() domain.Pagination {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pagination
}

// Loaded reports whether any page was displayed yet.
func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Lookup returns a displayed product by id.
func (v *View) Lookup(id string) (domain.Product, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Cards merges the displayed products with membership flags.
func (v *View) Cards() []Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	cards := make([]Card, 0, len(v.products))
	for _, p := range v.products {
		_, wished := v.wishlist[p.ID]
		qty := v.cartQty[p.ID]
		cards = append(cards, Card{
			Product:      p,
			FinalPrice:   p.FinalPrice(),
			Wishlisted:   wished,
			InCart:       qty > 0,
			CartQuantity: qty,
		})
	}
	return cards
}

// SetWishlist replaces the cached wishlist membership set.
func (v *View) SetWishlist(w domain.Wishlist) {
	set := make(map[string]struct{}, len(w.ProductIDs))
	for _, id := range w.ProductIDs {
		set[id] = struct{}{}
	}
	v.mu.Lock()
	v.wishlist = set
	v.mu.Unlock()
}

// SetCart replaces the cached cart membership.
func (v *View) SetCart(c domain.Cart) {
	qty := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		qty[it.Product.ID] += it.Quantity
	}
	v.mu.Lock()
	v.cartQty = qty
	v.mu.Unlock()
}
