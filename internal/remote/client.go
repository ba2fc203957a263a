package remote

import (
	"context"
	"errors"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
)

var (
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartUnavailable    = errors.New("cart service unavailable")
	ErrSessionUnavailable = errors.New("order service unavailable")
)

// CartClient is the contract of the remote cart store. The server-held cart
// is the source of truth; every write returns the updated cart.
type CartClient interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// OrderClient creates hosted checkout sessions. The four operations are
// mutually exclusive; all share the same payload shape and each returns a
// payment page URL to redirect the customer to.
type OrderClient interface {
	CreateCardSession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error)
	CreateApplePaySession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error)
	CreateGooglePaySession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error)
	CreateStripeSession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error)
}
