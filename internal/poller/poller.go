// Package poller consumes checkout-completed events from the order service.
// Completion is reported out-of-band: once the customer is redirected to the
// hosted payment page this service is no longer in the loop, so the event
// stream is how the storefront learns the cart is gone and the checkout can
// accept a new order.
package poller

import (
	"context"
	"encoding/json"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	Topic         = "checkout-completed"
	consumerGroup = "storefront-consumer"
)

// CartRefresher drops any locally held view of a session's cart.
type CartRefresher interface {
	Invalidate(ctx context.Context, sessionID string)
}

// SessionResetter returns a session's checkout to its idle state.
type SessionResetter interface {
	Reset(sessionID string)
}

type completedEvent struct {
	SessionID  string `json:"session_id"`
	CheckoutID string `json:"checkout_id"`
}

type Poller struct {
	reader   *kafka.Reader
	carts    CartRefresher
	checkout SessionResetter
	notify   notify.Notifier
	log      *logrus.Logger
}

func New(carts CartRefresher, checkout SessionResetter, notifier notify.Notifier, log *logrus.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  consumerGroup,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{
		reader:   reader,
		carts:    carts,
		checkout: checkout,
		notify:   notifier,
		log:      log,
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.log.Warnf("read checkout-completed message: %v", err)
			}
			continue
		}
		p.Handle(ctx, m.Value)
	}
}

// Handle applies one completion event: the cached cart view and local line
// state are dropped, the checkout session returns to idle, and the customer
// gets a confirmation notification.
func (p *Poller) Handle(ctx context.Context, payload []byte) {
	var event completedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		p.log.Warnf("parse checkout-completed event: %v", err)
		return
	}
	if event.SessionID == "" {
		p.log.Warn("checkout-completed event missing session_id")
		return
	}

	p.carts.Invalidate(ctx, event.SessionID)
	p.checkout.Reset(event.SessionID)
	p.notify.Notify(event.SessionID, notify.LevelInfo, "Your order has been placed.")

	p.log.WithFields(logrus.Fields{
		"session":  event.SessionID,
		"checkout": event.CheckoutID,
	}).Info("checkout completed, cart state reset")
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Warnf("close kafka reader: %v", err)
	}
}
