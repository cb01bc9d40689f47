package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"gaming-storefront/internal/domain"
)

// Payment methods accepted at checkout.
const (
	PaymentCard = "card"
	PaymentCOD  = "cod"
)

// PlaceOrderInput is the body of POST /orders. The items come from the
// server-side cart.
type PlaceOrderInput struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod" validate:"required,oneof=card cod"`
}

// OrderList is the body of GET /orders.
type OrderList struct {
	Orders []domain.Order `json:"orders"`
}

// PlaceOrder turns the current cart into an order.
func (c *Client) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the user's orders, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out OrderList
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []domain.Order{}
	}
	return out.Orders, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder asks the server to cancel a pending or processing order.
func (c *Client) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/cancel", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
