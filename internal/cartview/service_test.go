package cartview

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/cache"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/reconciler"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/remote"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCartClient implements remote.CartClient over an in-memory cart.
type MockCartClient struct {
	mu       sync.Mutex
	cart     *domain.Cart
	getCalls int
	clears   int
	getErr   error
}

func (m *MockCartClient) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	copied := *m.cart
	return &copied, nil
}

func (m *MockCartClient) AddItem(_ context.Context, _ string, productID int64, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart.Lines = append(m.cart.Lines, domain.CartLine{ProductID: productID, UnitPrice: 10, Quantity: quantity})
	copied := *m.cart
	return &copied, nil
}

func (m *MockCartClient) UpdateQuantity(_ context.Context, _ string, productID int64, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cart.Lines {
		if m.cart.Lines[i].ProductID == productID {
			m.cart.Lines[i].Quantity = quantity
		}
	}
	copied := *m.cart
	return &copied, nil
}

func (m *MockCartClient) RemoveItem(_ context.Context, _ string, productID int64) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.cart.Lines[:0]
	for _, l := range m.cart.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	m.cart.Lines = lines
	copied := *m.cart
	return &copied, nil
}

func (m *MockCartClient) ClearCart(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.cart.Lines = nil
	m.cart.Summary = nil
	return nil
}

func (m *MockCartClient) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

func (m *MockCartClient) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// stubCache is an in-memory cache.CartCache.
type stubCache struct {
	mu sync.Mutex
	m  map[string]*domain.Cart
}

func newStubCache() *stubCache {
	return &stubCache{m: make(map[string]*domain.Cart)}
}

func (s *stubCache) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.m[sessionID]; ok {
		copied := *cart
		return &copied, nil
	}
	return nil, cache.ErrCacheMiss
}

func (s *stubCache) Set(_ context.Context, sessionID string, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cart
	s.m[sessionID] = &copied
	return nil
}

func (s *stubCache) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionID)
	return nil
}

func (s *stubCache) has(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[sessionID]
	return ok
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, notify.Level, string) {}

func newTestService(t *testing.T, client *MockCartClient) (*Service, *stubCache) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	sc := newStubCache()
	lines := reconciler.NewManager(client, noopNotifier{}, 40*time.Millisecond)
	t.Cleanup(lines.Close)

	return NewService(client, sc, lines, log), sc
}

func twoLineCart() *domain.Cart {
	return &domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: 1, UnitPrice: 15, Quantity: 3},
			{ProductID: 2, UnitPrice: 5, Quantity: 1},
		},
		Summary: &domain.CartSummary{Subtotal: 50, ItemCount: 4},
	}
}

func TestView_PricedCart(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, _ := newTestService(t, client)

	view, err := svc.View(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.False(t, view.Empty)
	require.NotNil(t, view.Totals)
	assert.Equal(t, 50.0, view.Totals.Subtotal)
	assert.Equal(t, 10.0, view.Totals.Shipping)
	assert.Equal(t, 60.0, view.Totals.Total)
}

func TestView_EmptyCartRendersBrowseCTA(t *testing.T) {
	client := &MockCartClient{cart: &domain.Cart{}}
	svc, _ := newTestService(t, client)

	view, err := svc.View(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.True(t, view.Empty)
	assert.Equal(t, BrowseURL, view.BrowseURL)
	assert.Empty(t, view.Lines)
	assert.Nil(t, view.Totals)
}

func TestView_MissingCartTreatedAsEmpty(t *testing.T) {
	client := &MockCartClient{cart: &domain.Cart{}, getErr: remote.ErrCartNotFound}
	svc, _ := newTestService(t, client)

	view, err := svc.View(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, view.Empty)
}

func TestView_SecondReadServedFromCache(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, sc := newTestService(t, client)

	_, err := svc.View(context.Background(), "sess-1")
	require.NoError(t, err)

	// The cache write is asynchronous.
	require.Eventually(t, func() bool {
		return sc.has("sess-1")
	}, time.Second, 10*time.Millisecond)

	_, err = svc.View(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, client.GetCalls())
}

func TestView_OverlaysLocalQuantityEdit(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, _ := newTestService(t, client)

	ctx := context.Background()
	_, err := svc.View(ctx, "sess-1")
	require.NoError(t, err)

	q, err := svc.AdjustQuantity(ctx, "sess-1", 1, +1)
	require.NoError(t, err)
	assert.Equal(t, 4, q)

	view, err := svc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 4, view.Lines[0].Quantity)
	assert.Equal(t, 1, view.Lines[1].Quantity)
}

func TestSetQuantity_UnknownProduct(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, _ := newTestService(t, client)

	_, err := svc.SetQuantity(context.Background(), "sess-1", 99, 5)
	assert.ErrorIs(t, err, remote.ErrCartNotFound)
}

func TestAddItem_InvalidatesCache(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, sc := newTestService(t, client)

	ctx := context.Background()
	_, err := svc.View(ctx, "sess-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return sc.has("sess-1")
	}, time.Second, 10*time.Millisecond)

	view, err := svc.AddItem(ctx, "sess-1", 3, 2)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 3)
	assert.False(t, sc.has("sess-1"))
}

func TestClearCart_RequiresConfirmation(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, _ := newTestService(t, client)

	err := svc.ClearCart(context.Background(), "sess-1", false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, 0, client.Clears())
}

func TestClearCart_Confirmed(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, sc := newTestService(t, client)

	ctx := context.Background()
	require.NoError(t, svc.ClearCart(ctx, "sess-1", true))
	assert.Equal(t, 1, client.Clears())
	assert.False(t, sc.has("sess-1"))

	// No optimistic local clearing: the next read reflects the server.
	view, err := svc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, view.Empty)
}

func TestRemoveItem_DropsLineImmediately(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, _ := newTestService(t, client)

	ctx := context.Background()
	_, err := svc.View(ctx, "sess-1")
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, "sess-1", 1)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, int64(2), view.Lines[0].ProductID)
}

func TestRemoveItem_Error(t *testing.T) {
	client := &MockCartClient{cart: twoLineCart()}
	svc, _ := newTestService(t, client)

	ctx := context.Background()
	_, err := svc.View(ctx, "sess-1")
	require.NoError(t, err)

	client.mu.Lock()
	client.getErr = errors.New("boom")
	client.mu.Unlock()

	// Reads fail but the removal path is unaffected.
	_, err = svc.RemoveItem(ctx, "sess-1", 2)
	require.NoError(t, err)
}
