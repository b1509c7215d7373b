package socket

import (
	"log"
	"sync"

	"pawhome_server/models"
)

// TopicMessages is the global broadcast topic new chat messages fan out
// on. Clients filter for their own conversations; per-conversation topics
// would be a key change here, not a redesign.
const TopicMessages = "messages"

// subscriberBuffer bounds how far a slow client may lag before deliveries
// to it are dropped. Delivery is best-effort; missed messages are
// recovered through the history endpoint.
const subscriberBuffer = 32

// Subscriber is one live subscription on a topic.
type Subscriber struct {
	topic string
	ch    chan models.ChatMessage
}

// Messages is the stream of broadcasts delivered to this subscriber. The
// channel is closed on Unsubscribe.
func (s *Subscriber) Messages() <-chan models.ChatMessage {
	return s.ch
}

// Hub is the publish/subscribe channel between message producers and
// connected clients. It is the only shared mutable state in the realtime
// path: the registry is guarded by mu and never iterated while mutated.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber on the topic.
func (h *Hub) Subscribe(topic string) *Subscriber {
	sub := &Subscriber{
		topic: topic,
		ch:    make(chan models.ChatMessage, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Subscriber]struct{})
	}
	h.topics[topic][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// for an already-removed subscriber; disconnects race with publishes.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
	close(sub.ch)
}

// Publish fans the message out to every subscriber connected right now.
// Sends are non-blocking: a subscriber whose buffer is full misses the
// message rather than stalling the publisher. Zero subscribers is a
// successful no-op.
//
// Fan-out happens under the read lock so a concurrent Unsubscribe cannot
// close a channel mid-send; sends never block, so the lock is held only
// briefly.
func (h *Hub) Publish(topic string, message models.ChatMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- message:
		default:
			log.Printf("Dropping broadcast of message %s to a slow subscriber", message.MessageID)
		}
	}
}

// SubscriberCount reports how many subscribers a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
