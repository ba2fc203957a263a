package cache

import (
	"context"
	"errors"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
)

// CartCache is a read-through cache of remote cart snapshots keyed by
// session. It only ever holds server truth; optimistic local quantities are
// overlaid after the read and never written back into the cache.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
