package store

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChangeEvent signals that the message thread of one order changed.
// It carries no message payload; subscribers re-list the thread.
type ChangeEvent struct {
	OrderID primitive.ObjectID
	Op      string
	At      time.Time
}

// ChangeHub fans change events out to per-order subscribers. Subscriptions
// are explicitly cancellable and a slow subscriber never blocks the
// publisher: each subscriber holds a one-slot buffer, so bursts coalesce
// into a single pending notification.
type ChangeHub struct {
	mu     sync.Mutex
	subs   map[primitive.ObjectID]map[int]chan ChangeEvent
	nextID int
	closed bool
}

func NewChangeHub() *ChangeHub {
	return &ChangeHub{
		subs: make(map[primitive.ObjectID]map[int]chan ChangeEvent),
	}
}

// Subscribe registers a watch on one order's thread. The returned cancel
// func must be called when the viewer stops watching; it is safe to call
// more than once.
func (h *ChangeHub) Subscribe(orderID primitive.ObjectID) (<-chan ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan ChangeEvent, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++

	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[int]chan ChangeEvent)
	}
	h.subs[orderID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[orderID]; ok {
				if c, ok := subs[id]; ok {
					delete(subs, id)
					close(c)
				}
				if len(subs) == 0 {
					delete(h.subs, orderID)
				}
			}
		})
	}

	return ch, cancel
}

// Publish notifies every subscriber of the given order. Subscribers of
// other orders are never woken.
func (h *ChangeHub) Publish(ev ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for _, ch := range h.subs[ev.OrderID] {
		select {
		case ch <- ev:
		default:
			// subscriber already has a pending notification
		}
	}
}

// Close tears down every subscription. Further Publish calls are no-ops
// and further Subscribe calls return an already-closed channel.
func (h *ChangeHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for orderID, subs := range h.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
		delete(h.subs, orderID)
	}
}
