// Package cartsync keeps the local cart and wishlist in step with the server.
//
// Every mutation follows one discipline: apply the change locally, call the
// server, adopt the server's confirmed state on success, and on failure toast
// and refetch so the local copy never drifts from server truth.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/i18n"
	"gaming-storefront/internal/notify"
)

var (
	ErrUnauthenticated = apiclient.ErrUnauthenticated
	ErrOutOfStock      = apiclient.ErrOutOfStock
	ErrInvalidQuantity = apiclient.ErrInvalidQuantity
	// ErrBusy is returned when the same control already has a request in flight.
	ErrBusy = errors.New("cartsync: control busy")
	// ErrNotConfirmed is returned when the user declines a destructive action.
	ErrNotConfirmed = errors.New("cartsync: action not confirmed")
	ErrItemNotFound = errors.New("cartsync: cart item not found")
	ErrEmptyCart    = errors.New("cartsync: cart is empty")
)

// API is the cart, wishlist and order slice of the catalog API.
type API interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddToCart(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context) (*domain.Cart, error)

	GetWishlist(ctx context.Context) (*domain.Wishlist, error)
	AddToWishlist(ctx context.Context, productID string) (*domain.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, productID string) (*domain.Wishlist, error)

	PlaceOrder(ctx context.Context, in apiclient.PlaceOrderInput) (*domain.Order, error)
}

// Authorizer gates every mutation on an authenticated session.
type Authorizer interface {
	RequireAuth() error
}

// Confirmer asks the user to approve a destructive action. prompt is an
// i18n message key.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// MembershipSink receives snapshots after every cart or wishlist change.
type MembershipSink interface {
	SetCart(domain.Cart)
	SetWishlist(domain.Wishlist)
}

// Option configures a Sync.
type Option func(*Sync)

// WithConfirmer sets the confirmation step for ClearCart. Without one,
// ClearCart is always declined.
func WithConfirmer(c Confirmer) Option {
	return func(s *Sync) { s.confirm = c }
}

// WithObserver registers a MembershipSink.
func WithObserver(o MembershipSink) Option {
	return func(s *Sync) { s.observers = append(s.observers, o) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Sync) { s.logger = l }
}

// Sync owns the local cart and wishlist.
type Sync struct {
	api       API
	auth      Authorizer
	notifier  notify.Notifier
	confirm   Confirmer
	observers []MembershipSink
	logger    *log.Logger

	mu       sync.Mutex
	cart     domain.Cart
	stale    bool
	wishlist map[string]struct{}
	order    []string
	inflight map[string]struct{}
}

// New creates a Sync with an empty cart and wishlist.
func New(api API, auth Authorizer, notifier notify.Notifier, opts ...Option) *Sync {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	s := &Sync{
		api:      api,
		auth:     auth,
		notifier: notifier,
		logger:   log.Default(),
		wishlist: map[string]struct{}{},
		inflight: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cart returns a snapshot of the local cart.
func (s *Sync) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Wishlist returns a snapshot of the local wishlist.
func (s *Sync) Wishlist() domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistLocked()
}

func (s *Sync) wishlistLocked() domain.Wishlist {
	ids := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if _, ok := s.wishlist[id]; ok {
			ids = append(ids, id)
		}
	}
	return domain.Wishlist{ProductIDs: ids}
}

// Busy reports whether a control has a request outstanding.
func (s *Sync) Busy(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[key]
	return ok
}

func (s *Sync) acquire(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[key]; ok {
		return ErrBusy
	}
	s.inflight[key] = struct{}{}
	return nil
}

func (s *Sync) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

func (s *Sync) requireAuth() error {
	err := ErrUnauthenticated
	if s.auth != nil {
		err = s.auth.RequireAuth()
	}
	if err != nil {
		s.notifier.Error(i18n.MsgLoginRequired)
	}
	return err
}

// Stale reports that a refetch failed after a rejected mutation, so the local
// cart may differ from the server until the next successful cart response.
func (s *Sync) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// Refresh loads the cart and wishlist from the server. An anonymous session
// resets both to empty.
func (s *Sync) Refresh(ctx context.Context) error {
	if s.auth == nil || s.auth.RequireAuth() != nil {
		s.adoptCart(domain.Cart{})
		s.adoptWishlist(domain.Wishlist{})
		return nil
	}
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("cartsync: load cart: %w", err)
	}
	wish, err := s.api.GetWishlist(ctx)
	if err != nil {
		return fmt.Errorf("cartsync: load wishlist: %w", err)
	}
	s.adoptCart(*cart)
	s.adoptWishlist(*wish)
	return nil
}

// mutateCart runs one cart mutation under the shared discipline. local is
// applied to the cart before the call; call returns the server cart.
func (s *Sync) mutateCart(ctx context.Context, key string, local func(*domain.Cart), call func() (*domain.Cart, error)) error {
	if err := s.acquire(key); err != nil {
		return err
	}
	defer s.release(key)

	s.mu.Lock()
	before := s.cart.Clone()
	local(&s.cart)
	optimistic := s.cart.Clone()
	s.mu.Unlock()
	s.publishCart(optimistic)

	cart, err := call()
	if err != nil {
		s.logger.Printf("WARN: cartsync: %s failed: %v", key, err)
		s.notifier.Error(cartFailureKey(err))
		if !s.refetchCart(ctx) {
			s.revertCart(before, optimistic)
		}
		return err
	}
	s.adoptCart(*cart)
	return nil
}

// refetchCart replaces the local cart with the server's and reports whether
// that worked. On failure the cart is marked stale and left as is.
func (s *Sync) refetchCart(ctx context.Context) bool {
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		s.logger.Printf("WARN: cartsync: refetch cart failed: %v", err)
		s.mu.Lock()
		s.stale = true
		s.mu.Unlock()
		return false
	}
	s.adoptCart(*cart)
	return true
}

// adoptCart installs a server-confirmed cart.
func (s *Sync) adoptCart(c domain.Cart) {
	s.mu.Lock()
	s.cart = c.Clone()
	s.stale = false
	snap := s.cart.Clone()
	s.mu.Unlock()
	s.publishCart(snap)
}

// revertCart undoes one optimistic change, leaving lines that other
// mutations settled in the meantime untouched. before and optimistic are the
// cart around that change.
func (s *Sync) revertCart(before, optimistic domain.Cart) {
	s.mu.Lock()
	cur := s.cart.Clone()
	for _, it := range optimistic.Items {
		old, existed := before.ItemByID(it.ID)
		switch {
		case !existed:
			cur.Items = dropItem(cur.Items, it.ID)
		case old.Quantity != it.Quantity:
			cur.Items = putItem(cur.Items, old)
		}
	}
	for _, old := range before.Items {
		if _, kept := optimistic.ItemByID(old.ID); !kept {
			cur.Items = putItem(cur.Items, old)
		}
	}
	s.cart = cur
	snap := cur.Clone()
	s.mu.Unlock()
	s.publishCart(snap)
}

func dropItem(items []domain.CartItem, id string) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// putItem replaces the line with item's id, or appends item.
func putItem(items []domain.CartItem, item domain.CartItem) []domain.CartItem {
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func (s *Sync) publishCart(c domain.Cart) {
	for _, o := range s.observers {
		o.SetCart(c)
	}
}

func cartFailureKey(err error) string {
	switch {
	case errors.Is(err, ErrOutOfStock):
		return i18n.MsgOutOfStock
	case errors.Is(err, ErrUnauthenticated):
		return i18n.MsgLoginRequired
	default:
		return i18n.MsgCartFailed
	}
}

// AddToCart adds quantity units of product. Requests are additive: adding the
// same product twice accumulates on the server. Preconditions are checked
// locally and a rejected add sends nothing.
func (s *Sync) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	if product.Stock <= 0 {
		s.notifier.Error(i18n.MsgOutOfStock)
		return ErrOutOfStock
	}
	if quantity < 1 || quantity > product.Stock {
		s.notifier.Error(i18n.MsgInvalidQuantity, product.Stock)
		return ErrInvalidQuantity
	}

	err := s.mutateCart(ctx, "add:"+product.ID,
		func(c *domain.Cart) {
			for i := range c.Items {
				if c.Items[i].Product.ID == product.ID {
					c.Items[i].Quantity += quantity
					return
				}
			}
			c.Items = append(c.Items, domain.CartItem{
				ID:       "pending:" + product.ID,
				Product:  product,
				Quantity: quantity,
				Price:    product.FinalPrice().InexactFloat64(),
			})
		},
		func() (*domain.Cart, error) { return s.api.AddToCart(ctx, product.ID, quantity) },
	)
	if err == nil {
		s.notifier.Success(i18n.MsgCartAdded)
	}
	return err
}

// UpdateQuantity sets the quantity of a cart line. A quantity below 1 is
// ignored.
func (s *Sync) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return nil
	}
	if err := s.requireAuth(); err != nil {
		return err
	}
	s.mu.Lock()
	item, ok := s.cart.ItemByID(itemID)
	s.mu.Unlock()
	if !ok {
		return ErrItemNotFound
	}
	if quantity > item.Product.Stock {
		s.notifier.Error(i18n.MsgInvalidQuantity, item.Product.Stock)
		return ErrInvalidQuantity
	}

	err := s.mutateCart(ctx, "item:"+itemID,
		func(c *domain.Cart) {
			for i := range c.Items {
				if c.Items[i].ID == itemID {
					c.Items[i].Quantity = quantity
				}
			}
		},
		func() (*domain.Cart, error) { return s.api.UpdateCartItem(ctx, itemID, quantity) },
	)
	if err == nil {
		s.notifier.Success(i18n.MsgCartUpdated)
	}
	return err
}

// RemoveItem deletes a cart line.
func (s *Sync) RemoveItem(ctx context.Context, itemID string) error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	err := s.mutateCart(ctx, "item:"+itemID,
		func(c *domain.Cart) {
			c.Items = dropItem(c.Items, itemID)
		},
		func() (*domain.Cart, error) { return s.api.RemoveCartItem(ctx, itemID) },
	)
	if err == nil {
		s.notifier.Success(i18n.MsgCartRemoved)
	}
	return err
}

// ClearCart empties the cart after the user confirms.
func (s *Sync) ClearCart(ctx context.Context) error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	if s.confirm == nil || !s.confirm.Confirm(ctx, i18n.MsgClearCartPrompt) {
		return ErrNotConfirmed
	}
	err := s.mutateCart(ctx, "cart",
		func(c *domain.Cart) { c.Items = nil },
		func() (*domain.Cart, error) { return s.api.ClearCart(ctx) },
	)
	if err == nil {
		s.notifier.Success(i18n.MsgCartCleared)
	}
	return err
}

// Checkout places an order for the current cart and reloads the cart, which
// the server empties.
func (s *Sync) Checkout(ctx context.Context, shipping domain.Address, payment string) (*domain.Order, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if s.Cart().Count() == 0 {
		return nil, ErrEmptyCart
	}
	if err := s.acquire("checkout"); err != nil {
		return nil, err
	}
	defer s.release("checkout")

	order, err := s.api.PlaceOrder(ctx, apiclient.PlaceOrderInput{ShippingAddress: shipping, PaymentMethod: payment})
	if err != nil {
		s.logger.Printf("WARN: cartsync: place order failed: %v", err)
		if errors.Is(err, ErrOutOfStock) {
			s.notifier.Error(i18n.MsgOutOfStock)
		} else {
			s.notifier.Error(i18n.MsgOrderFailed)
		}
		s.refetchCart(ctx)
		return nil, err
	}
	if !s.refetchCart(ctx) {
		// The server empties the cart when it accepts an order.
		s.mu.Lock()
		s.cart = domain.Cart{}
		s.mu.Unlock()
		s.publishCart(domain.Cart{})
	}
	s.notifier.Success(i18n.MsgOrderPlaced, order.ID)
	return order, nil
}
