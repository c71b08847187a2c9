// Package realtime fans out "records of patient X changed" signals to
// in-process subscribers and, when a broker is configured, to the other
// service instances over RabbitMQ.
package realtime

import (
	"strconv"
	"sync"
)

// PatientTopic is the subscription scope for one patient's intake records.
func PatientTopic(patientID uint) string {
	return "intake_records:patient:" + strconv.FormatUint(uint64(patientID), 10)
}

// Subscription receives a value on C whenever its topic changes. Signals
// coalesce: a burst of changes may arrive as a single value.
type Subscription struct {
	C     <-chan struct{}
	topic string
	ch    chan struct{}
	hub   *Hub
	once  sync.Once
}

func (subscription *Subscription) Close() {
	subscription.once.Do(func() {
		subscription.hub.unsubscribe(subscription)
	})
}

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscription]struct{})}
}

func (hub *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan struct{}, 1)
	subscription := &Subscription{C: ch, topic: topic, ch: ch, hub: hub}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.topics[topic] == nil {
		hub.topics[topic] = make(map[*Subscription]struct{})
	}
	hub.topics[topic][subscription] = struct{}{}
	return subscription
}

// Publish signals every subscriber of topic without blocking.
func (hub *Hub) Publish(topic string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	delivered := 0
	for subscription := range hub.topics[topic] {
		select {
		case subscription.ch <- struct{}{}:
			delivered++
		default:
			// A signal is already pending for this subscriber.
		}
	}
	return delivered
}

func (hub *Hub) SubscriberCount(topic string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.topics[topic])
}

func (hub *Hub) unsubscribe(subscription *Subscription) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	subscribers, ok := hub.topics[subscription.topic]
	if !ok {
		return
	}
	delete(subscribers, subscription)
	if len(subscribers) == 0 {
		delete(hub.topics, subscription.topic)
	}
}
