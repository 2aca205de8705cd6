// Package notify delivers local notifications produced by the rule
// evaluator. Delivery is fire-and-forget: sending with an id that is
// already pending replaces the prior notification instead of stacking.
package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Stable notification ids, fixed per rule so that repeated firings of
// the same rule on different days replace rather than accumulate.
const (
	IDInactivityNudge  = 101
	IDWeatherAlert     = 102
	IDCapacityUpsell   = 103
	IDWateringReminder = 201
)

// Notification is one deliverable message. Activating it opens the app.
type Notification struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier delivers notifications.
type Notifier interface {
	// Send delivers a notification, replacing any pending notification
	// that shares the same id.
	Send(ctx context.Context, id int, title, body string) error
}

// Center is an in-process notification sink: it keeps the latest
// notification per id so clients can poll and dismiss them. It also
// logs each delivery.
type Center struct {
	mu      sync.RWMutex
	pending map[int]*Notification
	now     func() time.Time
}

// NewCenter creates an empty notification center.
func NewCenter() *Center {
	return &Center{
		pending: make(map[int]*Notification),
		now:     time.Now,
	}
}

// Send records the notification, replacing any pending one with the
// same id.
func (c *Center) Send(_ context.Context, id int, title, body string) error {
	c.mu.Lock()
	c.pending[id] = &Notification{
		ID:        id,
		Title:     title,
		Body:      body,
		CreatedAt: c.now(),
	}
	c.mu.Unlock()

	slog.Info("notification sent", "id", id, "title", title)
	return nil
}

// List returns pending notifications ordered by id.
func (c *Center) List() []*Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]*Notification, 0, len(c.pending))
	for _, n := range c.pending {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Dismiss removes a pending notification. Dismissing an unknown id is a
// no-op.
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}
