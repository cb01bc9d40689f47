package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity attached to a session.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

// IsAdmin reports whether the user may use the back-office calls.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Order statuses as reported by the backend.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Address is a shipping destination.
type Address struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=120"`
	Country    string `json:"country" validate:"required,max=120"`
	PostalCode string `json:"postalCode" validate:"omitempty,max=20"`
}

// OrderItem is an immutable line copied from the cart at checkout.
type OrderItem struct {
	ProductID string        `json:"productId"`
	Name      LocalizedText `json:"name"`
	Quantity  int           `json:"quantity"`
	Price     float64       `json:"price"`
}

// Order is a placed order.
type Order struct {
	ID              string      `json:"id"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	ShippingAddress Address     `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Cancellable reports whether the backend still accepts a cancel request.
func (o Order) Cancellable() bool {
	return o.Status == OrderPending || o.Status == OrderProcessing
}

// TotalDecimal returns Total as an exact decimal.
func (o Order) TotalDecimal() decimal.Decimal { return decimal.NewFromFloat(o.Total) }
