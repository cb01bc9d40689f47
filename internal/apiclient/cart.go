package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"gaming-storefront/internal/domain"
)

// AddToCartInput is the body of POST /cart.
type AddToCartInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// UpdateQuantityInput is the body of PUT /cart/:itemId.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

func (c *Client) cartCall(ctx context.Context, method, path string, body interface{}) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []domain.CartItem{}
	}
	return &out, nil
}

// GetCart fetches the current cart.
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

// AddToCart adds quantity units; repeated calls accumulate on the server.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	in := AddToCartInput{ProductID: productID, Quantity: quantity}
	if err := c.check(in); err != nil {
		return nil, err
	}
	return c.cartCall(ctx, http.MethodPost, "/cart", in)
}

// UpdateCartItem sets the quantity of one cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error) {
	in := UpdateQuantityInput{Quantity: quantity}
	if err := c.check(in); err != nil {
		return nil, err
	}
	return c.cartCall(ctx, http.MethodPut, "/cart/"+url.PathEscape(itemID), in)
}

// RemoveCartItem deletes one cart line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/"+url.PathEscape(itemID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart", nil)
}
