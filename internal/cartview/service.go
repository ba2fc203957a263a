// Package cartview assembles the priced cart screen: remote lines plus the
// server summary, with locally edited quantities overlaid so the view a
// customer sees never lags their own clicks.
package cartview

import (
	"context"
	"errors"
	"fmt"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/cache"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/reconciler"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/remote"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrConfirmationRequired gates the destructive clear-cart action behind an
// explicit user confirmation.
var ErrConfirmationRequired = errors.New("clearing the cart requires confirmation")

// BrowseURL is the call-to-action target rendered for an empty cart.
const BrowseURL = "/products"

// View is the composed cart screen. When the cart is empty, Lines and Totals
// are omitted in favour of a browse call-to-action.
type View struct {
	Lines     []domain.CartLine `json:"items,omitempty"`
	Totals    *domain.Totals    `json:"totals,omitempty"`
	Empty     bool              `json:"empty"`
	BrowseURL string            `json:"browse_url,omitempty"`
}

type Service struct {
	client remote.CartClient
	cache  cache.CartCache
	lines  *reconciler.Manager
	log    *logrus.Logger
	sfg    singleflight.Group // prevents cache stampede per session
}

func NewService(client remote.CartClient, cartCache cache.CartCache, lines *reconciler.Manager, log *logrus.Logger) *Service {
	return &Service{
		client: client,
		cache:  cartCache,
		lines:  lines,
		log:    log,
	}
}

// View returns the priced cart for a session. The remote read goes through
// the cache with singleflight protection; the fresh server quantities are
// fed through per-line reconciliation before pricing so a pending local
// edit is never clobbered by its own echo.
func (s *Service) View(ctx context.Context, sessionID string) (*View, error) {
	cart, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.compose(sessionID, cart), nil
}

func (s *Service) compose(sessionID string, cart *domain.Cart) *View {
	if cart.IsEmpty() {
		return &View{Empty: true, BrowseURL: BrowseURL}
	}

	overlaid := &domain.Cart{
		SessionID: sessionID,
		Lines:     s.lines.Observe(sessionID, cart.Lines),
		Summary:   cart.Summary,
	}

	totals := overlaid.ComputeTotals()
	return &View{Lines: overlaid.Lines, Totals: &totals}
}

func (s *Service) fetch(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithField("session", sessionID).Warnf("cart cache get: %v", err)
		}

		cart, err = s.client.GetCart(ctx, sessionID)
		if errors.Is(err, remote.ErrCartNotFound) {
			return &domain.Cart{SessionID: sessionID}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read cart failed: %w", err)
		}

		go func() {
			if err := s.cache.Set(context.Background(), sessionID, cart); err != nil {
				s.log.WithField("session", sessionID).Warnf("cart cache set: %v", err)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem creates or grows a line upstream and returns the refreshed view.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*View, error) {
	cart, err := s.client.AddItem(ctx, sessionID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("add item failed: %w", err)
	}
	s.invalidate(ctx, sessionID)
	return s.compose(sessionID, cart), nil
}

// SetQuantity applies a quantity edit locally; the reconciler commits it
// upstream after the quiet period. The returned value is the clamped local
// quantity now on display.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (int, error) {
	r, err := s.line(ctx, sessionID, productID)
	if err != nil {
		return 0, err
	}
	return r.Set(quantity), nil
}

// AdjustQuantity increments (delta > 0) or decrements the local quantity.
func (s *Service) AdjustQuantity(ctx context.Context, sessionID string, productID int64, delta int) (int, error) {
	r, err := s.line(ctx, sessionID, productID)
	if err != nil {
		return 0, err
	}
	if delta >= 0 {
		return r.Increment(), nil
	}
	return r.Decrement(), nil
}

// line resolves the reconciler for a product, fetching the cart to seed it
// when the line has not been seen yet.
func (s *Service) line(ctx context.Context, sessionID string, productID int64) (*reconciler.LineReconciler, error) {
	if r, ok := s.lines.Lookup(sessionID, productID); ok {
		return r, nil
	}

	cart, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, l := range cart.Lines {
		if l.ProductID == productID {
			return s.lines.Line(sessionID, productID, l.Quantity), nil
		}
	}
	return nil, remote.ErrCartNotFound
}

// RemoveItem deletes a line immediately, bypassing the debounce.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID int64) (*View, error) {
	if r, ok := s.lines.Lookup(sessionID, productID); ok {
		if err := r.Remove(ctx); err != nil {
			return nil, err
		}
		s.lines.DropLine(sessionID, productID)
	} else if _, err := s.client.RemoveItem(ctx, sessionID, productID); err != nil {
		return nil, fmt.Errorf("remove item failed: %w", err)
	}

	s.invalidate(ctx, sessionID)
	return s.View(ctx, sessionID)
}

// ClearCart empties the cart upstream. There is no optimistic local clear:
// the next read reflects whatever the server reports.
func (s *Service) ClearCart(ctx context.Context, sessionID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.client.ClearCart(ctx, sessionID); err != nil {
		return err
	}
	s.lines.DropSession(sessionID)
	s.invalidate(ctx, sessionID)
	return nil
}

// Invalidate drops the cached snapshot and local line state for a session.
// Used when an out-of-band event (e.g. a completed checkout) changes the
// cart behind our back.
func (s *Service) Invalidate(ctx context.Context, sessionID string) {
	s.lines.DropSession(sessionID)
	s.invalidate(ctx, sessionID)
}

func (s *Service) invalidate(ctx context.Context, sessionID string) {
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.log.WithField("session", sessionID).Warnf("cart cache invalidate: %v", err)
	}
}
