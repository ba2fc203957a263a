package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/checkout"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	timeout      time.Duration
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		orchestrator: orchestrator,
		timeout:      timeout,
	}
}

type PlaceOrderRequestDTO struct {
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	Notes           string                 `json:"notes"`
	Currency        string                 `json:"currency"`
	PaymentMethod   string                 `json:"payment_method"`
}

type CheckoutStateDTO struct {
	State string `json:"state"`
}

// PlaceOrder builds a fresh checkout intent from the submitted form and, on
// success, answers with a 303 redirect to the hosted payment page. The
// redirect is the one-time hand-off; control does not come back in-process.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	intent := domain.NewCheckoutIntent(req.ShippingAddress, req.Notes, req.Currency, domain.PaymentVariant(req.PaymentMethod))
	result, err := h.orchestrator.PlaceOrder(ctx, sessionID, intent)
	if err != nil {
		h.respondPlaceOrderError(w, err)
		return
	}

	http.Redirect(w, r, result.PaymentURL, http.StatusSeeOther)
}

func (h *CheckoutHandler) respondPlaceOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusUnprocessableEntity, "missing_shipping_fields", validationErr.Error())
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "checkout_in_progress", "a checkout is already in progress")
	case errors.Is(err, checkout.ErrUnknownVariant):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "unknown payment method")
	default:
		respondError(w, http.StatusBadGateway, "checkout_failed", "could not start checkout, please try again")
	}
}

// State reports the session's checkout state so the UI can disable the
// place-order action while a submission is in flight.
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	respondJSON(w, http.StatusOK, CheckoutStateDTO{
		State: string(h.orchestrator.State(sessionID)),
	})
}

// Return handles the payment provider redirecting the customer back into
// the storefront; the session's checkout returns to idle.
func (h *CheckoutHandler) Return(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	h.orchestrator.Reset(sessionID)
	respondJSON(w, http.StatusOK, CheckoutStateDTO{State: string(checkout.StateIdle)})
}

// Config exposes the read-only payment display settings.
func (h *CheckoutHandler) Config(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orchestrator.Settings())
}
