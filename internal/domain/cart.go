package domain

import "time"

// CartLine is one product-and-quantity entry in a cart. The remote cart
// service owns the line; ProductID is a lookup-only reference into the
// catalog.
type CartLine struct {
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"added_at,omitempty"`
}

// CartSummary is computed server-side from the current lines. It is never
// stored on its own; when the remote service omits it the client falls back
// to summing the lines.
type CartSummary struct {
	Subtotal  float64 `json:"subtotal"`
	ItemCount int     `json:"item_count"`
}

// Cart is the server-held source of truth for one shopping session.
type Cart struct {
	SessionID string       `json:"session_id"`
	Lines     []CartLine   `json:"items"`
	Summary   *CartSummary `json:"summary,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

const (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = 50.0

	// FlatShippingRate applies to any non-empty cart at or below the threshold.
	FlatShippingRate = 10.0
)

// Totals is the priced view of a cart: subtotal, the flat-rate shipping
// decision, and the grand total. Discount is carried for the order payload
// shape but there is no promo engine behind it yet, so it stays zero.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Shipping  float64 `json:"shipping"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// Subtotal prefers the server-provided summary; the locally summed value is
// only a fallback for responses that omit the summary.
func (c *Cart) Subtotal() float64 {
	if c.Summary != nil {
		return c.Summary.Subtotal
	}
	var sum float64
	for _, l := range c.Lines {
		sum += l.UnitPrice * float64(l.Quantity)
	}
	return sum
}

// ItemCount mirrors Subtotal: server summary first, local count as fallback.
func (c *Cart) ItemCount() int {
	if c.Summary != nil {
		return c.Summary.ItemCount
	}
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ShippingFor applies the flat threshold rule: free above the threshold,
// flat rate for any other non-empty cart, nothing to ship when empty.
func ShippingFor(subtotal float64) float64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	if subtotal > 0 {
		return FlatShippingRate
	}
	return 0
}

// ComputeTotals derives the priced view from the cart.
func (c *Cart) ComputeTotals() Totals {
	subtotal := c.Subtotal()
	shipping := ShippingFor(subtotal)
	discount := 0.0
	return Totals{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Discount:  discount,
		Total:     subtotal + shipping - discount,
		ItemCount: c.ItemCount(),
	}
}
