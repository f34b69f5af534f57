package realtime

import (
	"log"
	"sort"
	"sync"

	"campuslink/internal/domain/entity"
)

// Handlers receives channel events for one subscription. All callbacks are
// invoked while the hub lock is held, so they must not call back into the
// hub; they should only update subscriber-local state.
type Handlers struct {
	OnInsert        func(message *entity.Message)
	OnPresenceSync  func(members []string)
	OnPresenceJoin  func(userID string)
	OnPresenceLeave func(userID string)
	OnSubscribed    func()
}

// Subscription is the handle for one topic. It is exclusively owned by the
// messaging session that opened it.
type Subscription struct {
	topic    string
	handlers Handlers
	hub      *Hub
	closed   bool
	tracked  string
}

func (s *Subscription) Topic() string { return s.topic }

// Hub fans out message-log insert events and presence changes to all open
// subscriptions. Presence is one shared space across topics: every tracked
// user is visible from every channel.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*Subscription
	present map[string]int
}

func NewHub() *Hub {
	return &Hub{
		subs:    make(map[string]*Subscription),
		present: make(map[string]int),
	}
}

// Subscribe opens a topic and registers its handlers. An existing
// subscription on the same topic is replaced; its owner is expected to have
// torn it down already, so replacement is logged.
func (h *Hub) Subscribe(topic string, handlers Handlers) *Subscription {
	sub := &Subscription{topic: topic, handlers: handlers, hub: h}

	h.mu.Lock()
	if old, ok := h.subs[topic]; ok {
		log.Printf("realtime: replacing live subscription on topic %s", topic)
		old.closed = true
		h.dropPresenceLocked(old)
	}
	h.subs[topic] = sub
	h.mu.Unlock()

	if handlers.OnSubscribed != nil {
		handlers.OnSubscribed()
	}
	return sub
}

// PublishInsert delivers a newly stored message to every open subscription.
// Delivery happens under the read lock, so an Unsubscribe that has returned
// is guaranteed to see no further callbacks.
func (h *Hub) PublishInsert(message *entity.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.closed && sub.handlers.OnInsert != nil {
			sub.handlers.OnInsert(message)
		}
	}
}

// Track announces the subscriber's own presence: a join event to every other
// subscription and a sync snapshot to the subscriber itself.
func (s *Subscription) Track(selfID string) {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed || s.tracked != "" {
		return
	}
	s.tracked = selfID
	h.present[selfID]++
	if h.present[selfID] == 1 {
		for _, sub := range h.subs {
			if sub != s && !sub.closed && sub.handlers.OnPresenceJoin != nil {
				sub.handlers.OnPresenceJoin(selfID)
			}
		}
	}
	if s.handlers.OnPresenceSync != nil {
		s.handlers.OnPresenceSync(h.membersLocked())
	}
}

// Unsubscribe closes the topic and withdraws presence. After it returns no
// callback will fire on this subscription.
func (s *Subscription) Unsubscribe() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if h.subs[s.topic] == s {
		delete(h.subs, s.topic)
	}
	h.dropPresenceLocked(s)
}

// Members returns the sorted presence set.
func (h *Hub) Members() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.membersLocked()
}

func (h *Hub) membersLocked() []string {
	members := make([]string, 0, len(h.present))
	for id := range h.present {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

func (h *Hub) dropPresenceLocked(s *Subscription) {
	if s.tracked == "" {
		return
	}
	id := s.tracked
	s.tracked = ""
	h.present[id]--
	if h.present[id] > 0 {
		return
	}
	delete(h.present, id)
	for _, sub := range h.subs {
		if !sub.closed && sub.handlers.OnPresenceLeave != nil {
			sub.handlers.OnPresenceLeave(id)
		}
	}
}
