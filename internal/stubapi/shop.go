package stubapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gaming-storefront/internal/apiclient"
)

// cartError maps backend failures onto the API's status and code contract.
func (h *Handler) cartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrItemNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrOutOfStock):
		respondWithCode(w, http.StatusConflict, apiclient.CodeOutOfStock, err.Error(), 0)
	case errors.Is(err, ErrInsufficientStock):
		respondWithCode(w, http.StatusUnprocessableEntity, apiclient.CodeInvalidQuantity, err.Error(), 0)
	default:
		h.logger.Printf("ERROR: cart operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update cart")
	}
}

// --- Cart Handlers ---

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.mem.Cart(userFrom(r.Context()).ID))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var input apiclient.AddToCartInput
	if !h.decode(w, r, &input) {
		return
	}
	cart, err := h.mem.AddToCart(userFrom(r.Context()).ID, input.ProductID, input.Quantity)
	if err != nil {
		h.cartError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cart)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var input apiclient.UpdateQuantityInput
	if !h.decode(w, r, &input) {
		return
	}
	cart, err := h.mem.UpdateCartItem(userFrom(r.Context()).ID, chi.URLParam(r, "itemId"), input.Quantity)
	if err != nil {
		h.cartError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cart)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.mem.RemoveCartItem(userFrom(r.Context()).ID, chi.URLParam(r, "itemId"))
	if err != nil {
		h.cartError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cart)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.mem.ClearCart(userFrom(r.Context()).ID))
}

// --- Wishlist Handlers ---

type wishlistInput struct {
	ProductID string `json:"productId" validate:"required"`
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.mem.Wishlist(userFrom(r.Context()).ID))
}

func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var input wishlistInput
	if !h.decode(w, r, &input) {
		return
	}
	wish, err := h.mem.AddToWishlist(userFrom(r.Context()).ID, input.ProductID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, wish)
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.mem.RemoveFromWishlist(userFrom(r.Context()).ID, chi.URLParam(r, "productId")))
}

// --- Order Handlers ---

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var input apiclient.PlaceOrderInput
	if !h.decode(w, r, &input) {
		return
	}
	user := userFrom(r.Context())
	order, err := h.mem.PlaceOrder(user.ID, input.ShippingAddress, input.PaymentMethod, h.opts.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.cartError(w, err)
		}
		return
	}
	h.logger.Printf("INFO: Order %s placed by %s (%d lines)", order.ID, user.Email, len(order.Items))
	respondWithJSON(w, http.StatusCreated, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, apiclient.OrderList{Orders: h.mem.Orders(userFrom(r.Context()).ID)})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	order, err := h.mem.Order(user.ID, user.IsAdmin(), chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	order, err := h.mem.CancelOrder(user.ID, user.IsAdmin(), chi.URLParam(r, "orderId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotCancellable):
			respondWithCode(w, http.StatusConflict, "not_cancellable", err.Error(), 0)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to cancel order")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}
