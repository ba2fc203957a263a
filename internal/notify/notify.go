// Package notify holds transient, non-blocking user notifications. Remote
// write failures and checkout errors land here instead of failing the
// request that observed them; the storefront UI drains the feed and shows
// the messages as toasts.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier receives user-facing messages for a session.
type Notifier interface {
	Notify(sessionID string, level Level, message string)
}

// feed bounds per-session backlog; older entries are dropped first.
const maxPerSession = 20

// Feed is an in-memory, per-session notification buffer. Notifications are
// transient: Drain returns and clears them in one step.
type Feed struct {
	mu        sync.Mutex
	bySession map[string][]Notification
	log       *logrus.Logger
}

func NewFeed(log *logrus.Logger) *Feed {
	return &Feed{
		bySession: make(map[string][]Notification),
		log:       log,
	}
}

func (f *Feed) Notify(sessionID string, level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := append(f.bySession[sessionID], Notification{
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if len(queue) > maxPerSession {
		queue = queue[len(queue)-maxPerSession:]
	}
	f.bySession[sessionID] = queue

	if f.log != nil {
		f.log.WithFields(logrus.Fields{
			"session": sessionID,
			"level":   level,
		}).Info(message)
	}
}

// Drain returns the pending notifications for a session and clears them.
func (f *Feed) Drain(sessionID string) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := f.bySession[sessionID]
	delete(f.bySession, sessionID)
	return queue
}
