package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"gaming-storefront/internal/domain"
)

type wishlistInput struct {
	ProductID string `json:"productId" validate:"required"`
}

func (c *Client) wishlistCall(ctx context.Context, method, path string, body interface{}) (*domain.Wishlist, error) {
	var out domain.Wishlist
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	if out.ProductIDs == nil {
		out.ProductIDs = []string{}
	}
	return &out, nil
}

// GetWishlist fetches the wishlisted product ids.
func (c *Client) GetWishlist(ctx context.Context) (*domain.Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodGet, "/wishlist", nil)
}

// AddToWishlist adds a product to the wishlist.
func (c *Client) AddToWishlist(ctx context.Context, productID string) (*domain.Wishlist, error) {
	in := wishlistInput{ProductID: productID}
	if err := c.check(in); err != nil {
		return nil, err
	}
	return c.wishlistCall(ctx, http.MethodPost, "/wishlist", in)
}

// RemoveFromWishlist removes a product from the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) (*domain.Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil)
}
