package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const sessionHeader = "X-Session-ID"

// sessionRequestDTO is the shared payload of all four checkout-session
// endpoints.
type sessionRequestDTO struct {
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	Notes           string                 `json:"notes,omitempty"`
	Currency        string                 `json:"currency"`
}

type sessionResponseDTO struct {
	PaymentURL string `json:"payment_url"`
}

type errorResponseDTO struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPClient talks JSON over HTTP to the cart service and the order service.
// Each upstream sits behind its own circuit breaker so a dead order service
// does not take cart reads down with it.
type HTTPClient struct {
	cartBaseURL  string
	orderBaseURL string
	client       *http.Client
	cartBreaker  *gobreaker.CircuitBreaker[[]byte]
	orderBreaker *gobreaker.CircuitBreaker[[]byte]
}

// NewHTTPClient builds a client for both upstreams. Outbound requests are
// traced via otelhttp.
func NewHTTPClient(cartBaseURL, orderBaseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		cartBaseURL:  cartBaseURL,
		orderBaseURL: orderBaseURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		cartBreaker:  newBreaker("cart-service"),
		orderBreaker: newBreaker("order-service"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

func (c *HTTPClient) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return c.cartCall(ctx, sessionID, http.MethodGet, "/api/v1/cart", nil)
}

func (c *HTTPClient) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return c.cartCall(ctx, sessionID, http.MethodPost, "/api/v1/cart/items", body)
}

func (c *HTTPClient) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	body := map[string]any{"quantity": quantity}
	path := fmt.Sprintf("/api/v1/cart/items/%d", productID)
	return c.cartCall(ctx, sessionID, http.MethodPut, path, body)
}

func (c *HTTPClient) RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error) {
	path := fmt.Sprintf("/api/v1/cart/items/%d", productID)
	return c.cartCall(ctx, sessionID, http.MethodDelete, path, nil)
}

func (c *HTTPClient) ClearCart(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, c.cartBreaker, sessionID, http.MethodDelete, c.cartBaseURL+"/api/v1/cart", "", nil)
	if err != nil {
		return fmt.Errorf("clear cart failed: %w", err)
	}
	return nil
}

func (c *HTTPClient) CreateCardSession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return c.sessionCall(ctx, sessionID, "/api/v1/orders/card-session", intent)
}

func (c *HTTPClient) CreateApplePaySession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return c.sessionCall(ctx, sessionID, "/api/v1/orders/applepay-session", intent)
}

func (c *HTTPClient) CreateGooglePaySession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return c.sessionCall(ctx, sessionID, "/api/v1/orders/googlepay-session", intent)
}

func (c *HTTPClient) CreateStripeSession(ctx context.Context, sessionID string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return c.sessionCall(ctx, sessionID, "/api/v1/orders/stripe-session", intent)
}

// cartCall issues one request to the cart service and decodes the updated
// cart from the response.
func (c *HTTPClient) cartCall(ctx context.Context, sessionID, method, path string, body any) (*domain.Cart, error) {
	data, err := c.do(ctx, c.cartBreaker, sessionID, method, c.cartBaseURL+path, "", body)
	if err != nil {
		return nil, err
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

// sessionCall issues one checkout-session creation request. The intent's
// idempotency key travels as a header so a retried request cannot create a
// second session upstream.
func (c *HTTPClient) sessionCall(ctx context.Context, sessionID, path string, intent domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	payload := sessionRequestDTO{
		ShippingAddress: intent.ShippingAddress,
		Notes:           intent.Notes,
		Currency:        intent.Currency,
	}
	data, err := c.do(ctx, c.orderBreaker, sessionID, http.MethodPost, c.orderBaseURL+path, intent.IdempotencyKey, payload)
	if err != nil {
		return nil, err
	}

	var resp sessionResponseDTO
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal session response failed: %w", err)
	}
	return &domain.CheckoutSessionResult{PaymentURL: resp.PaymentURL}, nil
}

func (c *HTTPClient) do(ctx context.Context, breaker *gobreaker.CircuitBreaker[[]byte], sessionID, method, url, idempotencyKey string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	data, err := breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("build request failed: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(sessionHeader, sessionID)
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response failed: %w", err)
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrCartNotFound
		}
		if resp.StatusCode >= 400 {
			var remoteErr errorResponseDTO
			if json.Unmarshal(payload, &remoteErr) == nil && remoteErr.Error != "" {
				return nil, fmt.Errorf("upstream %s: %s", resp.Status, remoteErr.Error)
			}
			return nil, fmt.Errorf("upstream %s", resp.Status)
		}
		return payload, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", upstreamUnavailable(breaker), err)
		}
		return nil, err
	}
	return data, nil
}

func upstreamUnavailable(breaker *gobreaker.CircuitBreaker[[]byte]) error {
	if breaker.Name() == "order-service" {
		return ErrSessionUnavailable
	}
	return ErrCartUnavailable
}
