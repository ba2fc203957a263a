package reconciler

import (
	"fmt"
	"sync"
	"time"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/domain"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/remote"
)

// Manager owns one LineReconciler per (session, product) pair. Lines are
// fully independent of each other; each maps to its own remote sub-resource,
// so there is no cross-line locking beyond the lookup map itself.
type Manager struct {
	client   remote.CartClient
	notify   notify.Notifier
	delay    time.Duration
	onCommit func(sessionID string)

	mu    sync.Mutex
	lines map[string]*LineReconciler
}

func NewManager(client remote.CartClient, notifier notify.Notifier, delay time.Duration) *Manager {
	return &Manager{
		client: client,
		notify: notifier,
		delay:  delay,
		lines:  make(map[string]*LineReconciler),
	}
}

// OnCommit registers a hook invoked after every successful quantity commit,
// typically to invalidate a cached cart snapshot that predates the write.
// Must be called before any line is created.
func (m *Manager) OnCommit(fn func(sessionID string)) {
	m.onCommit = fn
}

func lineKey(sessionID string, productID int64) string {
	return fmt.Sprintf("%s:%d", sessionID, productID)
}

// Line returns the reconciler for a cart line, creating one seeded with the
// remote quantity on first sight.
func (m *Manager) Line(sessionID string, productID int64, remoteQuantity int) *LineReconciler {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := lineKey(sessionID, productID)
	if r, ok := m.lines[key]; ok {
		return r
	}
	r := newLineReconciler(sessionID, productID, remoteQuantity, m.client, m.notify, m.delay, m.onCommit)
	m.lines[key] = r
	return r
}

// Lookup returns an existing reconciler without creating one.
func (m *Manager) Lookup(sessionID string, productID int64) (*LineReconciler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.lines[lineKey(sessionID, productID)]
	return r, ok
}

// Observe feeds a fresh remote read through the per-line reconciliation and
// returns the lines with local optimistic quantities applied on top.
func (m *Manager) Observe(sessionID string, lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	for i, line := range lines {
		r := m.Line(sessionID, line.ProductID, line.Quantity)
		r.ObserveRemote(line.Quantity)
		line.Quantity = r.Quantity()
		out[i] = line
	}
	return out
}

// DropLine discards a line's reconciler, cancelling any pending commit.
func (m *Manager) DropLine(sessionID string, productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := lineKey(sessionID, productID)
	if r, ok := m.lines[key]; ok {
		r.Close()
		delete(m.lines, key)
	}
}

// DropSession discards every reconciler belonging to a session, e.g. after
// the cart is cleared or a checkout completes.
func (m *Manager) DropSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := sessionID + ":"
	for key, r := range m.lines {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			r.Close()
			delete(m.lines, key)
		}
	}
}

// Close cancels all pending commits.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, r := range m.lines {
		r.Close()
		delete(m.lines, key)
	}
}
