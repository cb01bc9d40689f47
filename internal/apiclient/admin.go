package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"gaming-storefront/internal/domain"
)

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name        domain.LocalizedText `json:"name" validate:"required"`
	Description domain.LocalizedText `json:"description"`
	Price       float64              `json:"price" validate:"gte=0"`
	Discount    float64              `json:"discount" validate:"gte=0,lte=100"`
	Stock       int                  `json:"stock" validate:"gte=0"`
	Category    string               `json:"category" validate:"required,max=64"`
	Images      []domain.Image       `json:"images" validate:"omitempty,dive"`
}

// CreateProduct is an admin-only call.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces a product's editable fields. Admin only.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out domain.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a product. Admin only.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil)
}
