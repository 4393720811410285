// Package pubsub fans out session events to SSE subscribers. Topics
// are session ids; each canvas revision publishes one event per
// mutation so every subscriber can mirror the session state.
package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrBusClosed is returned by Subscribe after Shutdown
var ErrBusClosed = errors.New("pubsub: bus closed")

// subscriberBuffer bounds each subscription channel. A subscriber that
// falls this far behind starts dropping events; SSE clients recover by
// refetching the project snapshot.
const subscriberBuffer = 100

// Event is one session-scoped notification.
type Event struct {
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
	Revision  uint64 `json:"revision"`
	Payload   any    `json:"payload,omitempty"`
}

// Bus provides publish/subscribe delivery of session events
type Bus struct {
	subscribers map[string]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription represents one subscriber attached to a session topic
type Subscription struct {
	sessionID string
	channel   chan Event
	bus       *Bus
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once // Ensures channel is only closed once
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
}

// Subscribe attaches a subscriber to a session's event stream. The
// subscription ends when ctx is cancelled, Unsubscribe is called, or
// the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, sessionID string) (*Subscription, error) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil, ErrBusClosed
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		sessionID: sessionID,
		channel:   make(chan Event, subscriberBuffer),
		bus:       b,
		ctx:       subCtx,
		cancel:    cancel,
	}

	b.mu.Lock()
	if b.subscribers[sessionID] == nil {
		b.subscribers[sessionID] = make(map[*Subscription]bool)
	}
	b.subscribers[sessionID][sub] = true
	b.mu.Unlock()

	// Monitor context cancellation
	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish sends an event to every subscriber of its session.
// Uses a snapshot copy to avoid holding the lock during potentially
// slow channel sends.
func (b *Bus) Publish(ev Event) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	// Take a snapshot of subscribers under lock to avoid a race during
	// iteration (concurrent Unsubscribe could modify the map)
	b.mu.RLock()
	topicSubs := b.subscribers[ev.SessionID]
	if len(topicSubs) == 0 {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	// Send to all subscribers outside the lock
	for _, sub := range subs {
		select {
		case sub.channel <- ev:
			// Event sent
		default:
			// Channel full, drop (non-blocking)
		}
	}
}

// SubscriberCount returns the number of subscribers for a session
func (b *Bus) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.subscribers[sessionID] == nil {
		return 0
	}

	return len(b.subscribers[sessionID])
}

// Shutdown closes all subscriptions and stops the bus
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for sessionID := range b.subscribers {
		for sub := range b.subscribers[sessionID] {
			sub.close()
		}
		delete(b.subscribers, sessionID)
	}
	b.mu.Unlock()
}

// Events returns the subscription's event channel
func (s *Subscription) Events() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.bus.subscribers[s.sessionID] != nil {
		delete(s.bus.subscribers[s.sessionID], s)
		if len(s.bus.subscribers[s.sessionID]) == 0 {
			delete(s.bus.subscribers, s.sessionID)
		}
	}

	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
