package stubapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gaming-storefront/internal/domain"
)

// Custom errors for the in-memory backend
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotFound      = errors.New("cart item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrBadCredentials    = errors.New("invalid email or password")
	ErrEmailNotVerified  = errors.New("email not verified")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

type account struct {
	user domain.User
	hash []byte
	code string
}

// Memory is the state of the reference catalog service.
type Memory struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	accounts  map[string]*account // by lower-cased email
	carts     map[string][]domain.CartItem
	wishlists map[string][]string
	orders    map[string]domain.Order
	owners    map[string]string // order id -> user id
}

// NewMemory creates an empty backend.
func NewMemory() *Memory {
	return &Memory{
		products:  map[string]domain.Product{},
		accounts:  map[string]*account{},
		carts:     map[string][]domain.CartItem{},
		wishlists: map[string][]string{},
		orders:    map[string]domain.Order{},
		owners:    map[string]string{},
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- Products ---

// PutProduct creates p (when p.ID is empty) or replaces it.
func (m *Memory) PutProduct(p domain.Product) domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Images == nil {
		p.Images = []domain.Image{}
	}
	m.products[p.ID] = p
	return p
}

func (m *Memory) Product(id string) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *Memory) DeleteProduct(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

// Products returns every product, unordered.
func (m *Memory) Products() []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out
}

// --- Accounts ---

// CreateAccount registers an unverified user with a pending code.
func (m *Memory) CreateAccount(name, email, password, role, code string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := emailKey(email)
	if _, ok := m.accounts[key]; ok {
		return domain.User{}, ErrEmailTaken
	}
	acc := &account{
		user: domain.User{ID: uuid.NewString(), Name: name, Email: key, Role: role},
		hash: hash,
		code: code,
	}
	m.accounts[key] = acc
	return acc.user, nil
}

// MarkVerified flips the verified flag without a code; used by seeding.
func (m *Memory) MarkVerified(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[emailKey(email)]
	if !ok {
		return ErrUserNotFound
	}
	acc.user.EmailVerified = true
	acc.code = ""
	return nil
}

// Authenticate checks credentials of a verified account.
func (m *Memory) Authenticate(email, password string) (domain.User, error) {
	m.mu.RLock()
	acc, ok := m.accounts[emailKey(email)]
	m.mu.RUnlock()
	if !ok {
		return domain.User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return domain.User{}, ErrBadCredentials
	}
	if !acc.user.EmailVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	return acc.user, nil
}

// Verify consumes the pending code of email.
func (m *Memory) Verify(email, code string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[emailKey(email)]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	if acc.user.EmailVerified {
		return acc.user, nil
	}
	if acc.code == "" || acc.code != code {
		return domain.User{}, ErrInvalidCode
	}
	acc.user.EmailVerified = true
	acc.code = ""
	return acc.user, nil
}

// ReplaceCode stores a fresh code for an unverified account.
func (m *Memory) ReplaceCode(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[emailKey(email)]
	if !ok {
		return ErrUserNotFound
	}
	acc.code = code
	return nil
}

// --- Cart ---

func (m *Memory) cartLocked(userID string) domain.Cart {
	items := make([]domain.CartItem, 0, len(m.carts[userID]))
	for _, it := range m.carts[userID] {
		if p, ok := m.products[it.Product.ID]; ok {
			it.Product = p
		}
		items = append(items, it)
	}
	return domain.Cart{Items: items}
}

func (m *Memory) Cart(userID string) domain.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cartLocked(userID)
}

// AddToCart is additive: an existing line for the product grows by quantity.
func (m *Memory) AddToCart(userID, productID string, quantity int) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return domain.Cart{}, ErrProductNotFound
	}
	if p.Stock <= 0 {
		return domain.Cart{}, ErrOutOfStock
	}
	lines := m.carts[userID]
	for i := range lines {
		if lines[i].Product.ID == productID {
			if lines[i].Quantity+quantity > p.Stock {
				return domain.Cart{}, ErrInsufficientStock
			}
			lines[i].Quantity += quantity
			return m.cartLocked(userID), nil
		}
	}
	if quantity > p.Stock {
		return domain.Cart{}, ErrInsufficientStock
	}
	m.carts[userID] = append(lines, domain.CartItem{
		ID:       uuid.NewString(),
		Product:  p,
		Quantity: quantity,
		Price:    p.FinalPrice().InexactFloat64(),
	})
	return m.cartLocked(userID), nil
}

func (m *Memory) UpdateCartItem(userID, itemID string, quantity int) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.carts[userID]
	for i := range lines {
		if lines[i].ID != itemID {
			continue
		}
		p, ok := m.products[lines[i].Product.ID]
		if !ok {
			return domain.Cart{}, ErrProductNotFound
		}
		if quantity > p.Stock {
			return domain.Cart{}, ErrInsufficientStock
		}
		lines[i].Quantity = quantity
		return m.cartLocked(userID), nil
	}
	return domain.Cart{}, ErrItemNotFound
}

func (m *Memory) RemoveCartItem(userID, itemID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.carts[userID]
	for i := range lines {
		if lines[i].ID == itemID {
			m.carts[userID] = append(lines[:i], lines[i+1:]...)
			return m.cartLocked(userID), nil
		}
	}
	return domain.Cart{}, ErrItemNotFound
}

func (m *Memory) ClearCart(userID string) domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return domain.Cart{Items: []domain.CartItem{}}
}

// --- Wishlist ---

func (m *Memory) Wishlist(userID string) domain.Wishlist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := append([]string{}, m.wishlists[userID]...)
	return domain.Wishlist{ProductIDs: ids}
}

// AddToWishlist is idempotent.
func (m *Memory) AddToWishlist(userID, productID string) (domain.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return domain.Wishlist{}, ErrProductNotFound
	}
	for _, id := range m.wishlists[userID] {
		if id == productID {
			return domain.Wishlist{ProductIDs: append([]string{}, m.wishlists[userID]...)}, nil
		}
	}
	m.wishlists[userID] = append(m.wishlists[userID], productID)
	return domain.Wishlist{ProductIDs: append([]string{}, m.wishlists[userID]...)}, nil
}

// RemoveFromWishlist is idempotent.
func (m *Memory) RemoveFromWishlist(userID, productID string) domain.Wishlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]string, 0, len(m.wishlists[userID]))
	for _, id := range m.wishlists[userID] {
		if id != productID {
			kept = append(kept, id)
		}
	}
	m.wishlists[userID] = kept
	return domain.Wishlist{ProductIDs: append([]string{}, kept...)}
}

// --- Orders ---

// PlaceOrder converts the user's cart into a pending order, decrementing
// stock and emptying the cart. Either every line fits in stock or nothing
// changes.
func (m *Memory) PlaceOrder(userID string, shipping domain.Address, payment string, now time.Time) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.carts[userID]
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	for _, it := range lines {
		p, ok := m.products[it.Product.ID]
		if !ok {
			return domain.Order{}, ErrProductNotFound
		}
		if it.Quantity > p.Stock {
			return domain.Order{}, ErrOutOfStock
		}
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		Items:           make([]domain.OrderItem, 0, len(lines)),
		Status:          domain.OrderPending,
		ShippingAddress: shipping,
		PaymentMethod:   payment,
		CreatedAt:       now.UTC(),
	}
	cart := domain.Cart{Items: lines}
	for _, it := range lines {
		p := m.products[it.Product.ID]
		p.Stock -= it.Quantity
		m.products[p.ID] = p
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	order.Total = cart.Total().InexactFloat64()
	m.orders[order.ID] = order
	m.owners[order.ID] = userID
	delete(m.carts, userID)
	return order, nil
}

// Orders lists a user's orders, newest first.
func (m *Memory) Orders(userID string) []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Order{}
	for id, o := range m.orders {
		if m.owners[id] == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Order returns one order visible to userID (admins see every order).
func (m *Memory) Order(userID string, admin bool, orderID string) (domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok || (!admin && m.owners[orderID] != userID) {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// CancelOrder cancels a pending or processing order and restocks its lines.
func (m *Memory) CancelOrder(userID string, admin bool, orderID string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || (!admin && m.owners[orderID] != userID) {
		return domain.Order{}, ErrOrderNotFound
	}
	if !o.Cancellable() {
		return domain.Order{}, ErrNotCancellable
	}
	for _, it := range o.Items {
		if p, ok := m.products[it.ProductID]; ok {
			p.Stock += it.Quantity
			m.products[p.ID] = p
		}
	}
	o.Status = domain.OrderCancelled
	m.orders[orderID] = o
	return o, nil
}
