package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/filter"
)

// ListProducts issues one catalog query with every filter field plus page
// and limit. sort and page are always sent so the server never guesses.
func (c *Client) ListProducts(ctx context.Context, st filter.State, limit int) (*domain.ProductPage, error) {
	q := st.Encode()
	page := st.Page
	if page < 1 {
		page = 1
	}
	q.Set(filter.KeyPage, strconv.Itoa(page))
	q.Set(filter.KeySort, filter.NormalizeSort(st.Sort))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out domain.ProductPage
	if err := c.do(ctx, http.MethodGet, "/products", q, nil, &out); err != nil {
		return nil, err
	}
	if out.Products == nil {
		out.Products = []domain.Product{}
	}
	return &out, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var out domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
