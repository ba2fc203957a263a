package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/cartview"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/remote"
)

type CartHandler struct {
	carts   *cartview.Service
	timeout time.Duration
}

func NewCartHandler(carts *cartview.Service, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type SetQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// QuantityResponseDTO reports the optimistic local quantity. Pending means
// the value has not been confirmed by the cart service yet; the debounced
// commit will catch up within the quiet period.
type QuantityResponseDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Pending   bool  `json:"pending"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	view, err := h.carts.View(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "cart_unavailable", "could not load cart")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	view, err := h.carts.AddItem(ctx, sessionID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, http.StatusBadGateway, "cart_unavailable", "could not add item")
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

// SetQuantity applies a local quantity edit. The response returns right
// away with the displayed value; the cart service is updated after the
// debounce quiet period.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, func(ctx context.Context, sessionID string, productID int64) (int, error) {
		var req SetQuantityRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, errBadBody
		}
		if req.Quantity <= 0 || req.Quantity > 99 {
			return 0, errBadQuantity
		}
		return h.carts.SetQuantity(ctx, sessionID, productID, req.Quantity)
	})
}

func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, func(ctx context.Context, sessionID string, productID int64) (int, error) {
		return h.carts.AdjustQuantity(ctx, sessionID, productID, +1)
	})
}

func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, func(ctx context.Context, sessionID string, productID int64) (int, error) {
		return h.carts.AdjustQuantity(ctx, sessionID, productID, -1)
	})
}

var (
	errBadBody     = errors.New("invalid JSON body")
	errBadQuantity = errors.New("quantity must be between 1 and 99")
)

func (h *CartHandler) adjust(w http.ResponseWriter, r *http.Request, edit func(ctx context.Context, sessionID string, productID int64) (int, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productID, err := parseProductID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	quantity, err := edit(ctx, sessionID, productID)
	switch {
	case errors.Is(err, errBadBody):
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	case errors.Is(err, errBadQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	case errors.Is(err, remote.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "not_found", "item is not in the cart")
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "cart_unavailable", "could not load cart")
		return
	}

	respondJSON(w, http.StatusOK, QuantityResponseDTO{
		ProductID: productID,
		Quantity:  quantity,
		Pending:   true,
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productID, err := parseProductID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	view, err := h.carts.RemoveItem(ctx, sessionID, productID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "cart_unavailable", "could not remove item")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// ClearCart empties the cart. The destructive action is gated: the request
// must carry confirm=true or it is rejected without touching the cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	err := h.carts.ClearCart(ctx, sessionID, confirmed)
	if errors.Is(err, cartview.ErrConfirmationRequired) {
		respondError(w, http.StatusConflict, "confirmation_required", "pass confirm=true to clear the cart")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "cart_unavailable", "could not clear cart")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func parseProductID(r *http.Request) (int64, error) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return 0, errors.New("invalid product id")
	}
	return productID, nil
}
