package cartsync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/i18n"
	"gaming-storefront/internal/notify"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func cartResult(args mock.Arguments) (*domain.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func wishResult(args mock.Arguments) (*domain.Wishlist, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *MockAPI) GetCart(ctx context.Context) (*domain.Cart, error) {
	return cartResult(m.Called(ctx))
}

func (m *MockAPI) AddToCart(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	return cartResult(m.Called(ctx, productID, quantity))
}

func (m *MockAPI) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error) {
	return cartResult(m.Called(ctx, itemID, quantity))
}

func (m *MockAPI) RemoveCartItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	return cartResult(m.Called(ctx, itemID))
}

func (m *MockAPI) ClearCart(ctx context.Context) (*domain.Cart, error) {
	return cartResult(m.Called(ctx))
}

func (m *MockAPI) GetWishlist(ctx context.Context) (*domain.Wishlist, error) {
	return wishResult(m.Called(ctx))
}

func (m *MockAPI) AddToWishlist(ctx context.Context, productID string) (*domain.Wishlist, error) {
	return wishResult(m.Called(ctx, productID))
}

func (m *MockAPI) RemoveFromWishlist(ctx context.Context, productID string) (*domain.Wishlist, error) {
	return wishResult(m.Called(ctx, productID))
}

func (m *MockAPI) PlaceOrder(ctx context.Context, in apiclient.PlaceOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type authState bool

func (a authState) RequireAuth() error {
	if !a {
		return ErrUnauthenticated
	}
	return nil
}

const loggedIn, anonymous = authState(true), authState(false)

// sink records the last snapshots it was given.
type sink struct {
	mu   sync.Mutex
	cart domain.Cart
	wish domain.Wishlist
}

func (s *sink) SetCart(c domain.Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

func (s *sink) SetWishlist(w domain.Wishlist) {
	s.mu.Lock()
	s.wish = w
	s.mu.Unlock()
}

var (
	controller = domain.Product{ID: "p-ctrl", Name: domain.LocalizedText{En: "DualSense"}, Price: 70, Stock: 1}
	headset    = domain.Product{ID: "p-head", Name: domain.LocalizedText{En: "Headset"}, Price: 120, Stock: 5}
	soldOut    = domain.Product{ID: "p-gone", Name: domain.LocalizedText{En: "Rare Edition"}, Price: 300, Stock: 0}
)

func cartWith(qty int) *domain.Cart {
	return &domain.Cart{Items: []domain.CartItem{{ID: "i-1", Product: headset, Quantity: qty, Price: 120}}}
}

func TestAddToCart_LocalRejectionsNeverHitNetwork(t *testing.T) {
	tests := []struct {
		name    string
		auth    authState
		product domain.Product
		qty     int
		wantErr error
		toast   string
	}{
		{"quantity below one", loggedIn, headset, 0, ErrInvalidQuantity, i18n.MsgInvalidQuantity},
		{"quantity above stock", loggedIn, controller, 2, ErrInvalidQuantity, i18n.MsgInvalidQuantity},
		{"out of stock", loggedIn, soldOut, 1, ErrOutOfStock, i18n.MsgOutOfStock},
		{"anonymous", anonymous, headset, 1, ErrUnauthenticated, i18n.MsgLoginRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			rec := &notify.Recorder{}
			s := New(api, tt.auth, rec)

			err := s.AddToCart(context.Background(), tt.product, tt.qty)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.toast}, rec.Errors())
			assert.Empty(t, s.Cart().Items)
			api.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAddToCart_AdoptsServerCart(t *testing.T) {
	api := new(MockAPI)
	obs := &sink{}
	s := New(api, loggedIn, nil, WithObserver(obs))

	api.On("AddToCart", mock.Anything, "p-head", 2).Return(cartWith(2), nil).Once()
	api.On("AddToCart", mock.Anything, "p-head", 2).Return(cartWith(4), nil).Once()

	require.NoError(t, s.AddToCart(context.Background(), headset, 2))
	require.NoError(t, s.AddToCart(context.Background(), headset, 2))

	assert.Equal(t, 4, s.Cart().QuantityOf("p-head"))
	assert.Equal(t, "i-1", s.Cart().Items[0].ID)
	assert.Equal(t, 4, obs.cart.QuantityOf("p-head"))
	api.AssertExpectations(t)
}

func TestUpdateQuantity_FailureShowsServerQuantity(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	rec := &notify.Recorder{}
	s := New(api, loggedIn, rec)

	api.On("GetCart", mock.Anything).Return(cartWith(2), nil).Once()
	api.On("GetWishlist", mock.Anything).Return(&domain.Wishlist{}, nil).Once()
	require.NoError(t, s.Refresh(ctx))

	api.On("UpdateCartItem", mock.Anything, "i-1", 3).Return(nil, errors.New("502 bad gateway")).Once()
	api.On("GetCart", mock.Anything).Return(cartWith(2), nil).Once()

	err := s.UpdateQuantity(ctx, "i-1", 3)
	require.Error(t, err)
	assert.Equal(t, 2, s.Cart().Items[0].Quantity)
	assert.Equal(t, []string{i18n.MsgCartFailed}, rec.Errors())
	api.AssertExpectations(t)
}

func TestUpdateQuantity_LocalChecks(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	s := New(api, loggedIn, nil)
	api.On("GetCart", mock.Anything).Return(cartWith(2), nil).Once()
	api.On("GetWishlist", mock.Anything).Return(&domain.Wishlist{}, nil).Once()
	require.NoError(t, s.Refresh(ctx))

	assert.NoError(t, s.UpdateQuantity(ctx, "i-1", 0))
	assert.ErrorIs(t, s.UpdateQuantity(ctx, "i-1", 6), ErrInvalidQuantity)
	assert.ErrorIs(t, s.UpdateQuantity(ctx, "i-404", 1), ErrItemNotFound)
	assert.Equal(t, 2, s.Cart().Items[0].Quantity)
	api.AssertNotCalled(t, "UpdateCartItem", mock.Anything, mock.Anything, mock.Anything)
}

var pad = domain.Product{ID: "p-pad", Name: domain.LocalizedText{En: "Mouse Pad"}, Price: 10, Stock: 9}

func twoLines(headsetQty, padQty int) *domain.Cart {
	return &domain.Cart{Items: []domain.CartItem{
		{ID: "i-1", Product: headset, Quantity: headsetQty, Price: 120},
		{ID: "i-2", Product: pad, Quantity: padQty, Price: 10},
	}}
}

func refreshed(t *testing.T, api *MockAPI, s *Sync, cart *domain.Cart) {
	t.Helper()
	api.On("GetCart", mock.Anything).Return(cart, nil).Once()
	api.On("GetWishlist", mock.Anything).Return(&domain.Wishlist{}, nil).Once()
	require.NoError(t, s.Refresh(context.Background()))
}

func TestRemoveItem_AdoptsServerCart(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	rec := &notify.Recorder{}
	obs := &sink{}
	s := New(api, loggedIn, rec, WithObserver(obs))
	refreshed(t, api, s, twoLines(1, 2))

	api.On("RemoveCartItem", mock.Anything, "i-2").Return(cartWith(1), nil).Once()

	require.NoError(t, s.RemoveItem(ctx, "i-2"))
	require.Len(t, s.Cart().Items, 1)
	assert.Equal(t, "i-1", s.Cart().Items[0].ID)
	assert.Zero(t, obs.cart.QuantityOf("p-pad"))
	assert.Empty(t, rec.Errors())
	toasts := rec.Toasts()
	require.NotEmpty(t, toasts)
	assert.Equal(t, i18n.MsgCartRemoved, toasts[len(toasts)-1].Key)
	assert.False(t, s.Stale())
	api.AssertExpectations(t)
}

func TestRemoveItem_FailureRefetches(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	rec := &notify.Recorder{}
	obs := &sink{}
	s := New(api, loggedIn, rec, WithObserver(obs))
	refreshed(t, api, s, twoLines(1, 2))

	api.On("RemoveCartItem", mock.Anything, "i-2").Return(nil, errors.New("502 bad gateway")).Once()
	api.On("GetCart", mock.Anything).Return(twoLines(1, 2), nil).Once()

	require.Error(t, s.RemoveItem(ctx, "i-2"))
	require.Len(t, s.Cart().Items, 2)
	assert.Equal(t, 2, obs.cart.QuantityOf("p-pad"))
	assert.Equal(t, []string{i18n.MsgCartFailed}, rec.Errors())
	assert.False(t, s.Stale())
	api.AssertExpectations(t)
}

func TestRemoveItem_RefetchFailureRestoresLine(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	s := New(api, loggedIn, nil)
	refreshed(t, api, s, twoLines(1, 2))

	api.On("RemoveCartItem", mock.Anything, "i-2").Return(nil, errors.New("timeout")).Once()
	api.On("GetCart", mock.Anything).Return(nil, errors.New("timeout")).Once()

	require.Error(t, s.RemoveItem(ctx, "i-2"))
	assert.Equal(t, 2, s.Cart().QuantityOf("p-pad"))
	assert.Equal(t, 1, s.Cart().QuantityOf("p-head"))
	assert.True(t, s.Stale())
	api.AssertExpectations(t)
}

func TestRefetchFailureKeepsOtherSettledChanges(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	s := New(api, loggedIn, nil)
	refreshed(t, api, s, twoLines(1, 1))

	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("UpdateCartItem", mock.Anything, "i-1", 2).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(nil, errors.New("502 bad gateway")).Once()
	api.On("UpdateCartItem", mock.Anything, "i-2", 3).Return(twoLines(1, 3), nil).Once()
	api.On("GetCart", mock.Anything).Return(nil, errors.New("timeout")).Once()

	done := make(chan error, 1)
	go func() { done <- s.UpdateQuantity(ctx, "i-1", 2) }()
	<-entered
	require.NoError(t, s.UpdateQuantity(ctx, "i-2", 3))

	close(release)
	require.Error(t, <-done)
	assert.Equal(t, 1, s.Cart().QuantityOf("p-head"))
	assert.Equal(t, 3, s.Cart().QuantityOf("p-pad"))
	assert.True(t, s.Stale())

	api.On("GetCart", mock.Anything).Return(twoLines(1, 3), nil).Once()
	api.On("GetWishlist", mock.Anything).Return(&domain.Wishlist{}, nil).Once()
	require.NoError(t, s.Refresh(ctx))
	assert.False(t, s.Stale())
	api.AssertExpectations(t)
}

func TestNoAuthSourceAsksForLogin(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	rec := &notify.Recorder{}
	s := New(api, nil, rec)

	assert.ErrorIs(t, s.AddToCart(ctx, headset, 1), ErrUnauthenticated)
	assert.ErrorIs(t, s.RemoveItem(ctx, "i-1"), ErrUnauthenticated)
	assert.Equal(t, []string{i18n.MsgLoginRequired, i18n.MsgLoginRequired}, rec.Errors())
	api.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "RemoveCartItem", mock.Anything, mock.Anything)
}

func TestToggleWishlist_TwiceRestores(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	obs := &sink{}
	s := New(api, loggedIn, nil, WithObserver(obs))

	api.On("AddToWishlist", mock.Anything, "p-ctrl").Return(&domain.Wishlist{ProductIDs: []string{"p-ctrl"}}, nil).Once()
	api.On("RemoveFromWishlist", mock.Anything, "p-ctrl").Return(&domain.Wishlist{ProductIDs: []string{}}, nil).Once()

	on, err := s.ToggleWishlist(ctx, "p-ctrl")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, obs.wish.Contains("p-ctrl"))

	on, err = s.ToggleWishlist(ctx, "p-ctrl")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, s.Wishlist().ProductIDs)
	api.AssertExpectations(t)
}

func TestToggleWishlist_FailureRefetches(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	rec := &notify.Recorder{}
	s := New(api, loggedIn, rec)

	api.On("AddToWishlist", mock.Anything, "p-head").Return(nil, errors.New("timeout")).Once()
	api.On("GetWishlist", mock.Anything).Return(&domain.Wishlist{ProductIDs: []string{"p-ctrl"}}, nil).Once()

	on, err := s.ToggleWishlist(ctx, "p-head")
	require.Error(t, err)
	assert.False(t, on)
	assert.Equal(t, []string{"p-ctrl"}, s.Wishlist().ProductIDs)
	assert.Equal(t, []string{i18n.MsgWishlistFailed}, rec.Errors())
}

func TestClearCart_RequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)

	declined := New(api, loggedIn, nil, WithConfirmer(ConfirmFunc(func(context.Context, string) bool { return false })))
	assert.ErrorIs(t, declined.ClearCart(ctx), ErrNotConfirmed)
	api.AssertNotCalled(t, "ClearCart", mock.Anything)

	var prompt string
	approved := New(api, loggedIn, nil, WithConfirmer(ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return true
	})))
	api.On("ClearCart", mock.Anything).Return(&domain.Cart{}, nil).Once()
	require.NoError(t, approved.ClearCart(ctx))
	assert.Equal(t, i18n.MsgClearCartPrompt, prompt)
	api.AssertExpectations(t)
}

func TestBusyControlRejectsSecondRequest(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	s := New(api, loggedIn, nil)
	api.On("GetCart", mock.Anything).Return(&domain.Cart{Items: []domain.CartItem{
		{ID: "i-1", Product: headset, Quantity: 1, Price: 120},
		{ID: "i-2", Product: domain.Product{ID: "p-x", Stock: 9}, Quantity: 1, Price: 10},
	}}, nil).Once()
	api.On("GetWishlist", mock.Anything).Return(&domain.Wishlist{}, nil).Once()
	require.NoError(t, s.Refresh(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("UpdateCartItem", mock.Anything, "i-1", 2).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&domain.Cart{Items: []domain.CartItem{{ID: "i-1", Product: headset, Quantity: 2, Price: 120}}}, nil).Once()
	api.On("UpdateCartItem", mock.Anything, "i-2", 3).
		Return(&domain.Cart{Items: []domain.CartItem{{ID: "i-2", Product: domain.Product{ID: "p-x", Stock: 9}, Quantity: 3, Price: 10}}}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- s.UpdateQuantity(ctx, "i-1", 2) }()
	<-entered

	assert.True(t, s.Busy("item:i-1"))
	assert.ErrorIs(t, s.UpdateQuantity(ctx, "i-1", 3), ErrBusy)
	assert.NoError(t, s.UpdateQuantity(ctx, "i-2", 3))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy("item:i-1"))
	api.AssertExpectations(t)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	rec := &notify.Recorder{}
	s := New(api, loggedIn, rec)

	_, err := s.Checkout(ctx, domain.Address{}, apiclient.PaymentCOD)
	assert.ErrorIs(t, err, ErrEmptyCart)

	api.On("AddToCart", mock.Anything, "p-head", 1).Return(cartWith(1), nil).Once()
	require.NoError(t, s.AddToCart(ctx, headset, 1))

	addr := domain.Address{FullName: "Lina K", Phone: "+96550000000", Street: "1 Gulf Rd", City: "Kuwait City", Country: "KW"}
	in := apiclient.PlaceOrderInput{ShippingAddress: addr, PaymentMethod: apiclient.PaymentCOD}
	api.On("PlaceOrder", mock.Anything, in).Return(&domain.Order{ID: "o-1", Status: domain.OrderPending, Total: 120}, nil).Once()
	api.On("GetCart", mock.Anything).Return(&domain.Cart{}, nil).Once()

	order, err := s.Checkout(ctx, addr, apiclient.PaymentCOD)
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)
	assert.Empty(t, s.Cart().Items)
	assert.Empty(t, rec.Errors())
	api.AssertExpectations(t)
}
