// Package checkout turns a validated shipping address and a chosen payment
// method into exactly one checkout-session creation call and a single
// redirect to the hosted payment page.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/remote"
	"github.com/sirupsen/logrus"
)

// State is the per-session checkout lifecycle. Validating and Submitting are
// transient; Redirecting holds until the payment provider hands control back
// out-of-band and the session is reset.
type State string

const (
	StateIdle        State = "IDLE"
	StateValidating  State = "VALIDATING"
	StateSubmitting  State = "SUBMITTING"
	StateRedirecting State = "REDIRECTING"
)

var (
	// ErrSubmissionInFlight rejects a second "place order" while one is
	// already submitting or redirecting. The Submitting state is the mutex.
	ErrSubmissionInFlight = errors.New("a checkout is already in progress for this session")

	// ErrNoPaymentURL means the order service accepted the session but
	// returned nothing to redirect to.
	ErrNoPaymentURL = errors.New("checkout session did not return a payment URL")

	ErrUnknownVariant = errors.New("unknown payment method")
)

// SessionError wraps a failed session-creation call. Recoverable: the
// session returns to Idle with cart and form state untouched.
type SessionError struct {
	Variant domain.PaymentVariant
	Err     error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("create %s checkout session failed: %v", e.Variant, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// Settings is the read-only payment display configuration injected into the
// checkout view. It is fetched once at startup, not ambient global state.
type Settings struct {
	Currency     string                           `json:"currency"`
	MethodLabels map[domain.PaymentVariant]string `json:"method_labels"`
}

// DefaultSettings mirrors the storefront defaults.
func DefaultSettings() Settings {
	return Settings{
		Currency: "USD",
		MethodLabels: map[domain.PaymentVariant]string{
			domain.VariantCard:        "Credit / debit card",
			domain.VariantApplePay:    "Apple Pay",
			domain.VariantGooglePay:   "Google Pay",
			domain.VariantStripeMulti: "Stripe (all methods)",
		},
	}
}

type sessionCall func(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error)

// Orchestrator drives the checkout state machine for every session. Variant
// selection is a pure dispatch-table lookup; there is no fallback chain and
// a failed variant is never retried on another.
type Orchestrator struct {
	settings Settings
	notify   notify.Notifier
	log      *logrus.Logger
	dispatch map[domain.PaymentVariant]sessionCall

	mu       sync.Mutex
	sessions map[string]State
}

func NewOrchestrator(orders remote.OrderClient, settings Settings, notifier notify.Notifier, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		settings: settings,
		notify:   notifier,
		log:      log,
		dispatch: map[domain.PaymentVariant]sessionCall{
			domain.VariantCard:        orders.CreateCardSession,
			domain.VariantApplePay:    orders.CreateApplePaySession,
			domain.VariantGooglePay:   orders.CreateGooglePaySession,
			domain.VariantStripeMulti: orders.CreateStripeSession,
		},
		sessions: make(map[string]State),
	}
}

// Settings exposes the injected payment display configuration.
func (o *Orchestrator) Settings() Settings {
	return o.settings
}

// State returns the session's current checkout state.
func (o *Orchestrator) State(sessionID string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[sessionID]; ok {
		return s
	}
	return StateIdle
}

func (o *Orchestrator) setState(sessionID string, s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s == StateIdle {
		delete(o.sessions, sessionID)
		return
	}
	o.sessions[sessionID] = s
}

// PlaceOrder runs one intent through Validating and Submitting. On success
// the session moves to Redirecting and the result's payment URL must be
// consumed exactly once by a full-page redirect. Validation failures and
// remote errors return the session to Idle so the customer can retry
// without re-entering anything.
func (o *Orchestrator) PlaceOrder(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	o.mu.Lock()
	switch o.sessions[sessionID] {
	case StateValidating, StateSubmitting, StateRedirecting:
		o.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	o.sessions[sessionID] = StateValidating
	o.mu.Unlock()

	if missing := intent.ShippingAddress.MissingFields(); len(missing) > 0 {
		o.setState(sessionID, StateIdle)
		return nil, &domain.ValidationError{Missing: missing}
	}

	call, ok := o.dispatch[intent.Variant]
	if !ok {
		o.setState(sessionID, StateIdle)
		return nil, ErrUnknownVariant
	}

	o.setState(sessionID, StateSubmitting)
	o.log.WithFields(logrus.Fields{
		"session": sessionID,
		"variant": intent.Variant,
		"key":     intent.IdempotencyKey,
	}).Info("creating checkout session")

	result, err := call(ctx, sessionID, intent)
	if err != nil {
		o.setState(sessionID, StateIdle)
		o.notify.Notify(sessionID, notify.LevelError, "We could not start your checkout. Please try again.")
		return nil, &SessionError{Variant: intent.Variant, Err: err}
	}
	if result == nil || result.PaymentURL == "" {
		o.setState(sessionID, StateIdle)
		o.notify.Notify(sessionID, notify.LevelError, "We could not start your checkout. Please try again.")
		return nil, &SessionError{Variant: intent.Variant, Err: ErrNoPaymentURL}
	}

	o.setState(sessionID, StateRedirecting)
	return result, nil
}

// Reset returns a session to Idle. Called when the payment provider
// redirects the customer back into the storefront, or when a completion
// event arrives out-of-band.
func (o *Orchestrator) Reset(sessionID string) {
	o.setState(sessionID, StateIdle)
}
