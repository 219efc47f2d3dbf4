package events

import (
	"sync"
	"time"

	"github.com/meetborg/joinbot/pkg/log"
)

// Subscriber receives session events over a buffered channel. Slow consumers
// drop events rather than stalling the monitor loop.
type Subscriber struct {
	ID           string
	Channel      chan *Event
	LastActivity time.Time
	connected    bool
	mutex        sync.Mutex
}

// NewSubscriber creates a subscriber with the given channel buffer size.
func NewSubscriber(id string, bufferSize int) *Subscriber {
	return &Subscriber{
		ID:           id,
		Channel:      make(chan *Event, bufferSize),
		LastActivity: time.Now(),
		connected:    true,
	}
}

// Send delivers an event without blocking. Returns false if the event was
// dropped or the subscriber is closed.
func (s *Subscriber) Send(ev *Event) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connected {
		return false
	}

	select {
	case s.Channel <- ev:
		s.LastActivity = time.Now()
		return true
	default:
		log.Warnf("Dropping event for subscriber %s (channel full)", s.ID)
		return false
	}
}

// Close closes the subscriber channel. Safe to call more than once.
func (s *Subscriber) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.connected {
		s.connected = false
		close(s.Channel)
	}
}

// IsConnected reports whether the subscriber can still receive events.
func (s *Subscriber) IsConnected() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.connected
}

// Bus fans session events out to subscribers. One bus per process; the
// session owns the publishing side, the status server the subscribing side.
type Bus struct {
	subscribers map[string]*Subscriber
	mutex       sync.RWMutex
	dropped     uint64
	published   uint64
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]*Subscriber)}
}

// Subscribe registers a subscriber on the bus.
func (b *Bus) Subscribe(sub *Subscriber) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.subscribers[sub.ID] = sub
	log.Debugf("Added event subscriber: %s (total: %d)", sub.ID, len(b.subscribers))
}

// Unsubscribe removes and closes a subscriber.
func (b *Bus) Unsubscribe(id string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if sub, exists := b.subscribers[id]; exists {
		sub.Close()
		delete(b.subscribers, id)
		log.Debugf("Removed event subscriber: %s (total: %d)", id, len(b.subscribers))
	}
}

// Publish delivers the event to all connected subscribers, dropping for any
// whose buffer is full.
func (b *Bus) Publish(ev *Event) {
	b.mutex.RLock()
	subs := make([]*Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mutex.RUnlock()

	b.mutex.Lock()
	b.published++
	b.mutex.Unlock()

	for _, sub := range subs {
		if !sub.IsConnected() {
			continue
		}
		if !sub.Send(ev) {
			b.mutex.Lock()
			b.dropped++
			b.mutex.Unlock()
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subscribers)
}

// Shutdown closes every subscriber.
func (b *Bus) Shutdown() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for id, sub := range b.subscribers {
		sub.Close()
		log.Debugf("Closed event subscriber: %s", id)
	}
	b.subscribers = make(map[string]*Subscriber)
}
