package stubapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/filter"
)

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()
	params := ListParams{
		Filter: filter.Decode(qParams),
		Limit:  parseLimit(qParams.Get("limit")),
	}
	st := params.Filter
	if st.MinPrice != nil && st.MaxPrice != nil && *st.MinPrice > *st.MaxPrice {
		respondWithError(w, http.StatusBadRequest, "minPrice cannot exceed maxPrice")
		return
	}
	respondWithJSON(w, http.StatusOK, h.mem.Query(params))
}

// GetProduct handles GET /api/products/{productId}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	p, err := h.mem.Product(productID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func productFromInput(in apiclient.ProductInput) domain.Product {
	images := in.Images
	if images == nil {
		images = []domain.Image{}
	}
	return domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Discount:    in.Discount,
		Stock:       in.Stock,
		Category:    in.Category,
		Images:      images,
	}
}

// CreateProduct handles POST /api/products (admin).
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input apiclient.ProductInput
	if !h.decode(w, r, &input) {
		return
	}
	if input.Name.En == "" {
		respondWithError(w, http.StatusBadRequest, "Validation failed: name.en is required")
		return
	}
	p := productFromInput(input)
	p.CreatedAt = h.opts.Now().UTC()
	created := h.mem.PutProduct(p)
	h.logger.Printf("INFO: Product %s created by %s", created.ID, userFrom(r.Context()).Email)
	respondWithJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/products/{productId} (admin). Rating and
// creation time are kept.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	existing, err := h.mem.Product(productID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	var input apiclient.ProductInput
	if !h.decode(w, r, &input) {
		return
	}
	p := productFromInput(input)
	p.ID = existing.ID
	p.Rating = existing.Rating
	p.CreatedAt = existing.CreatedAt
	respondWithJSON(w, http.StatusOK, h.mem.PutProduct(p))
}

// DeleteProduct handles DELETE /api/products/{productId} (admin).
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if err := h.mem.DeleteProduct(productID); err != nil {
		h.logger.Printf("ERROR: DeleteProduct for ID %s failed: %v", productID, err)
		if errors.Is(err, ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /api/healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"serviceName": "CatalogStub",
		"timestamp":   h.opts.Now().UTC().Format(time.RFC3339),
		"products":    len(h.mem.Products()),
	})
}
