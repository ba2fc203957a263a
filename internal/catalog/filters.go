// Package catalog keeps product-listing filter state and the page's query
// string in sync. Outbound, filter edits are debounced and serialized into a
// canonical query; inbound, a query read on navigation is parsed back into
// filter state without re-triggering serialization, otherwise the two
// directions would feed each other forever.
package catalog

import (
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/debounce"
)

// FilterState is the transient filter/sort selection of a listing page.
// Zero values mean "not set" and are omitted from the query string.
type FilterState struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Sort     string `json:"sort,omitempty"`
	MinPrice int    `json:"min_price,omitempty"`
	MaxPrice int    `json:"max_price,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// Encode serializes the state into its canonical query string. url.Values
// sorts keys, so equal states always encode identically; the loop guard
// relies on that.
func (f FilterState) Encode() string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Sort != "" {
		v.Set("sort", f.Sort)
	}
	if f.MinPrice > 0 {
		v.Set("min_price", strconv.Itoa(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		v.Set("max_price", strconv.Itoa(f.MaxPrice))
	}
	if f.Page > 1 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v.Encode()
}

// ParseQuery reads filter state from a raw query string. Unknown parameters
// and unparsable numbers are dropped.
func ParseQuery(raw string) FilterState {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return FilterState{}
	}
	f := FilterState{
		Search:   v.Get("search"),
		Category: v.Get("category"),
		Sort:     v.Get("sort"),
	}
	if n, err := strconv.Atoi(v.Get("min_price")); err == nil && n > 0 {
		f.MinPrice = n
	}
	if n, err := strconv.Atoi(v.Get("max_price")); err == nil && n > 0 {
		f.MaxPrice = n
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 1 {
		f.Page = n
	}
	return f
}

// URLSync debounces filter edits and pushes the canonical query string
// through push exactly once per settled state. push is only invoked when
// the encoding actually changed.
type URLSync struct {
	deb  *debounce.Debouncer
	push func(query string)

	mu      sync.Mutex
	state   FilterState
	current string // last pushed or observed query
}

func NewURLSync(delay time.Duration, push func(query string)) *URLSync {
	return &URLSync{
		deb:  debounce.New(delay),
		push: push,
	}
}

// Update records a filter edit and schedules serialization.
func (u *URLSync) Update(f FilterState) {
	u.mu.Lock()
	u.state = f
	u.mu.Unlock()
	u.deb.Trigger(u.commit)
}

func (u *URLSync) commit() {
	u.mu.Lock()
	encoded := u.state.Encode()
	if encoded == u.current {
		u.mu.Unlock()
		return
	}
	u.current = encoded
	push := u.push
	u.mu.Unlock()

	push(encoded)
}

// ApplyQuery adopts a query observed on navigation. Marking its canonical
// encoding as current is the guard: a following commit of the same state is
// a no-op instead of a fresh push.
func (u *URLSync) ApplyQuery(raw string) FilterState {
	f := ParseQuery(raw)
	u.mu.Lock()
	u.state = f
	u.current = f.Encode()
	u.mu.Unlock()
	return f
}

// State returns the current filter selection.
func (u *URLSync) State() FilterState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Close cancels any pending serialization.
func (u *URLSync) Close() {
	u.deb.Stop()
}
