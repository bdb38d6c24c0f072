// Package realtime fans out change events from the store to live subscribers
// (websocket feeds and background watchers).
package realtime

import (
	"log/slog"
	"sync"
	"time"
)

type Kind string

const (
	KindAdded    Kind = "added"
	KindModified Kind = "modified"
	KindRemoved  Kind = "removed"
)

// Topics published by the store.
const (
	TopicProducts = "products"
	TopicUsers    = "users"
	TopicOrders   = "orders"
	TopicUploads  = "uploads"
)

type Event struct {
	Topic string    `json:"topic"`
	Kind  Kind      `json:"type"`
	ID    string    `json:"id"`
	Data  any       `json:"data,omitempty"`
	At    time.Time `json:"at"`
}

const defaultBuffer = 64

// Hub is an in-process publish/subscribe broker keyed by topic.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	log    *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: defaultBuffer,
		log:    logger,
	}
}

// Subscribe registers interest in a topic. The caller owns the subscription
// and must Close it when done.
func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{
		hub:   h,
		topic: topic,
		ch:    make(chan Event, h.buffer),
	}
	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish delivers evt to every subscriber of evt.Topic without blocking.
// A subscriber that cannot keep up is dropped; its channel is closed so the
// owner notices and can resubscribe.
func (h *Hub) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	var lagging []*Subscription

	h.mu.RLock()
	for s := range h.subs[evt.Topic] {
		select {
		case s.ch <- evt:
		default:
			lagging = append(lagging, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range lagging {
		h.log.Warn("dropping slow subscriber", "topic", evt.Topic)
		s.Close()
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.topic)
		}
	}
	close(s.ch)
}

type Subscription struct {
	hub   *Hub
	topic string
	ch    chan Event
	once  sync.Once
}

// Events is closed once the subscription ends.
func (s *Subscription) Events() <-chan Event { return s.ch }

func (s *Subscription) Topic() string { return s.topic }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}
