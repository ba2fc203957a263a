package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/cache"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/cartview"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/checkout"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/reconciler"
	"github.com/sirupsen/logrus"
)

// MockCartClient implements remote.CartClient over a fixed cart.
type MockCartClient struct {
	mu     sync.Mutex
	cart   *domain.Cart
	err    error
	clears int
}

func (m *MockCartClient) snapshot() (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	copied := *m.cart
	return &copied, nil
}

func (m *MockCartClient) GetCart(context.Context, string) (*domain.Cart, error) {
	return m.snapshot()
}

func (m *MockCartClient) AddItem(_ context.Context, _ string, productID int64, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	if m.err == nil {
		m.cart.Lines = append(m.cart.Lines, domain.CartLine{ProductID: productID, UnitPrice: 10, Quantity: quantity})
	}
	m.mu.Unlock()
	return m.snapshot()
}

func (m *MockCartClient) UpdateQuantity(context.Context, string, int64, int) (*domain.Cart, error) {
	return m.snapshot()
}

func (m *MockCartClient) RemoveItem(_ context.Context, _ string, productID int64) (*domain.Cart, error) {
	m.mu.Lock()
	if m.err == nil {
		lines := m.cart.Lines[:0]
		for _, l := range m.cart.Lines {
			if l.ProductID != productID {
				lines = append(lines, l)
			}
		}
		m.cart.Lines = lines
	}
	m.mu.Unlock()
	return m.snapshot()
}

func (m *MockCartClient) ClearCart(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.cart.Lines = nil
	m.cart.Summary = nil
	return m.err
}

// MockOrderClient implements remote.OrderClient.
type MockOrderClient struct {
	mu     sync.Mutex
	calls  map[domain.PaymentVariant]int
	result *domain.CheckoutSessionResult
	err    error
}

func (m *MockOrderClient) create(variant domain.PaymentVariant) (*domain.CheckoutSessionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[domain.PaymentVariant]int)
	}
	m.calls[variant]++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *MockOrderClient) CreateCardSession(context.Context, string, domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return m.create(domain.VariantCard)
}

func (m *MockOrderClient) CreateApplePaySession(context.Context, string, domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return m.create(domain.VariantApplePay)
}

func (m *MockOrderClient) CreateGooglePaySession(context.Context, string, domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return m.create(domain.VariantGooglePay)
}

func (m *MockOrderClient) CreateStripeSession(context.Context, string, domain.CheckoutIntent) (*domain.CheckoutSessionResult, error) {
	return m.create(domain.VariantStripeMulti)
}

func (m *MockOrderClient) Calls(variant domain.PaymentVariant) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[variant]
}

// stubCache always misses so reads hit the mock client directly.
type stubCache struct{}

func (stubCache) Get(context.Context, string) (*domain.Cart, error) {
	return nil, cache.ErrCacheMiss
}
func (stubCache) Set(context.Context, string, *domain.Cart) error { return nil }
func (stubCache) Delete(context.Context, string) error            { return nil }

type testEnv struct {
	router chi.Router
	cart   *MockCartClient
	orders *MockOrderClient
	feed   *notify.Feed
}

func newTestEnv(t *testing.T, cart *domain.Cart) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	cartClient := &MockCartClient{cart: cart}
	orders := &MockOrderClient{result: &domain.CheckoutSessionResult{PaymentURL: "https://pay.example.com/s/abc"}}
	feed := notify.NewFeed(log)

	lines := reconciler.NewManager(cartClient, feed, 40*time.Millisecond)
	t.Cleanup(lines.Close)

	carts := cartview.NewService(cartClient, stubCache{}, lines, log)
	orchestrator := checkout.NewOrchestrator(orders, checkout.DefaultSettings(), feed, log)

	return &testEnv{
		router: NewRouter(carts, orchestrator, feed, 5*time.Second),
		cart:   cartClient,
		orders: orders,
		feed:   feed,
	}
}

// doJSON performs a request against the router with a fixed session cookie.
func (e *testEnv) doJSON(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, target, reader)
	request.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess-test"})
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, request)
	return recorder
}

func pricedCart() *domain.Cart {
	return &domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: 1, UnitPrice: 15, Quantity: 3},
		},
		Summary: &domain.CartSummary{Subtotal: 45, ItemCount: 3},
	}
}

func shippingAddressDTO() domain.ShippingAddress {
	return domain.ShippingAddress{
		Street:     "12 Rose Lane",
		City:       "Dhaka",
		State:      "Dhaka",
		PostalCode: "1207",
		Country:    "BD",
		Phone:      "+8801700000000",
		Email:      "customer@example.com",
	}
}
