package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShippingAddress is held only in transient form state while a checkout is
// being prepared; it is never persisted by this service.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// MissingFields returns the names of mandatory fields that are empty.
// All seven fields are required before a checkout session may be created.
func (a ShippingAddress) MissingFields() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
		{"phone", a.Phone},
		{"email", a.Email},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// PaymentVariant selects which of the mutually exclusive checkout-session
// operations is invoked. Exactly one is called per intent, never a fallback
// chain.
type PaymentVariant string

const (
	VariantCard        PaymentVariant = "card"
	VariantApplePay    PaymentVariant = "applepay"
	VariantGooglePay   PaymentVariant = "googlepay"
	VariantStripeMulti PaymentVariant = "stripe"
)

// Valid reports whether v names a known payment variant.
func (v PaymentVariant) Valid() bool {
	switch v {
	case VariantCard, VariantApplePay, VariantGooglePay, VariantStripeMulti:
		return true
	}
	return false
}

func (v PaymentVariant) String() string {
	return string(v)
}

// CheckoutIntent is the payload assembled once per "place order" action.
// It is immutable after construction: a new click builds a new intent with a
// fresh idempotency key, never a mutation of the old one.
type CheckoutIntent struct {
	IdempotencyKey  string          `json:"idempotency_key"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Notes           string          `json:"notes,omitempty"`
	Currency        string          `json:"currency"`
	Variant         PaymentVariant  `json:"payment_method"`
}

// NewCheckoutIntent builds a fresh intent. Currency defaults to USD when the
// caller leaves it blank.
func NewCheckoutIntent(addr ShippingAddress, notes, currency string, variant PaymentVariant) CheckoutIntent {
	if currency == "" {
		currency = "USD"
	}
	return CheckoutIntent{
		IdempotencyKey:  uuid.New().String(),
		ShippingAddress: addr,
		Notes:           notes,
		Currency:        currency,
		Variant:         variant,
	}
}

// CheckoutSessionResult carries the hosted payment page URL returned by the
// order service. It is consumed exactly once for a full-page redirect.
type CheckoutSessionResult struct {
	PaymentURL string `json:"payment_url"`
}

// ValidationError reports the mandatory shipping fields missing from a
// checkout submission. It blocks the submission only; no remote call is made.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required shipping fields: %s", strings.Join(e.Missing, ", "))
}
