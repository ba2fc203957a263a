// Package reconciler keeps a locally edited cart-line quantity in sync with
// the remote cart store. Edits apply to the local value immediately and a
// debounced commit pushes the latest value upstream, so the display never
// waits on the network and the store sees at most one write per quiet
// period.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/debounce"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/remote"
)

const commitTimeout = 5 * time.Second

// LineReconciler tracks one cart line. localQuantity is what the customer
// sees; lastKnownRemote is the last value attributed to the server. The two
// converge within one debounce interval of the last edit, barring errors.
type LineReconciler struct {
	sessionID string
	productID int64

	client   remote.CartClient
	notify   notify.Notifier
	deb      *debounce.Debouncer
	onCommit func(sessionID string)

	mu              sync.Mutex
	localQuantity   int
	lastKnownRemote int

	// commitMu serializes upstream writes for this line so a later
	// debounce-committed value can never be overtaken by an earlier one.
	commitMu sync.Mutex
}

func newLineReconciler(sessionID string, productID int64, quantity int, client remote.CartClient, notifier notify.Notifier, delay time.Duration, onCommit func(sessionID string)) *LineReconciler {
	return &LineReconciler{
		sessionID:       sessionID,
		productID:       productID,
		client:          client,
		notify:          notifier,
		deb:             debounce.New(delay),
		onCommit:        onCommit,
		localQuantity:   quantity,
		lastKnownRemote: quantity,
	}
}

// Quantity returns the locally displayed quantity.
func (r *LineReconciler) Quantity() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.localQuantity
}

// Increment bumps the local quantity and schedules a commit.
func (r *LineReconciler) Increment() int {
	return r.apply(func(q int) int { return q + 1 })
}

// Decrement lowers the local quantity, clamped to a minimum of one, and
// schedules a commit.
func (r *LineReconciler) Decrement() int {
	return r.apply(func(q int) int { return q - 1 })
}

// Set replaces the local quantity, clamped to a minimum of one, and
// schedules a commit.
func (r *LineReconciler) Set(quantity int) int {
	return r.apply(func(int) int { return quantity })
}

func (r *LineReconciler) apply(edit func(int) int) int {
	r.mu.Lock()
	q := edit(r.localQuantity)
	if q < 1 {
		q = 1
	}
	r.localQuantity = q
	r.mu.Unlock()

	r.deb.Trigger(r.commit)
	return q
}

// commit fires after the quiet period. The value is re-read at fire time:
// only the latest local quantity is sent, and only when it still differs
// from the last known remote value.
func (r *LineReconciler) commit() {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()

	r.mu.Lock()
	q := r.localQuantity
	dirty := q != r.lastKnownRemote
	r.mu.Unlock()
	if !dirty {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	if _, err := r.client.UpdateQuantity(ctx, r.sessionID, r.productID, q); err != nil {
		// Keep the local value on screen; the next debounce cycle retries
		// with whatever the customer settled on.
		r.notify.Notify(r.sessionID, notify.LevelWarning,
			fmt.Sprintf("could not save quantity for product %d, will retry: %v", r.productID, err))
		return
	}

	r.mu.Lock()
	r.lastKnownRemote = q
	r.mu.Unlock()

	// Any cached snapshot read before this write now carries a stale
	// quantity for this line.
	if r.onCommit != nil {
		r.onCommit(r.sessionID)
	}
}

// ObserveRemote reconciles a quantity reported by the remote store, e.g.
// from a refetch triggered elsewhere. The reported value is adopted into
// both local and remote tracking, but only when it differs from the value
// this line last attributed to the server; an echo of our own committed
// write must not clobber an edit that is mid-flight.
func (r *LineReconciler) ObserveRemote(quantity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quantity == r.lastKnownRemote {
		return
	}
	r.localQuantity = quantity
	r.lastKnownRemote = quantity
}

// Remove deletes the line upstream immediately. Removal is never batched, so
// any pending debounced commit is cancelled first.
func (r *LineReconciler) Remove(ctx context.Context) error {
	r.deb.Stop()
	if _, err := r.client.RemoveItem(ctx, r.sessionID, r.productID); err != nil {
		return fmt.Errorf("remove item failed: %w", err)
	}
	return nil
}

// Close cancels any pending commit.
func (r *LineReconciler) Close() {
	r.deb.Stop()
}
