// Package watch implements the live-query layer of the local store. A
// subscriber receives an initial result snapshot and a fresh one after every
// write that touches its topic, until it cancels. Notifications are
// coalesced: a burst of writes may produce a single re-emission, but the
// final snapshot always reflects the latest data.
package watch

import (
	"sync"

	"finanzas/internal/logger"
)

// Topic identifies a set of live queries invalidated together.
type Topic string

// Categorias is a single global topic: default categories are shared by all
// users, so every category watcher re-runs its own filtered query on any
// category write.
const Categorias Topic = "categorias"

// TransaccionesDe returns the topic for one user's transactions.
func TransaccionesDe(usuarioID string) Topic {
	return Topic("transacciones/" + usuarioID)
}

// AhorrosDe returns the topic for one user's savings goals.
func AhorrosDe(usuarioID string) Topic {
	return Topic("ahorros/" + usuarioID)
}

// Hub routes write notifications to live-query subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[Topic]map[int]chan struct{}
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[int]chan struct{})}
}

// Publish notifies all subscribers of the given topics. It never blocks:
// a subscriber that already has a pending notification is skipped, which
// coalesces bursts of writes into one re-emission.
func (h *Hub) Publish(topics ...Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		for _, ch := range h.subs[topic] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// register adds one notification channel under every given topic and
// returns a function that removes it again.
func (h *Hub) register(topics []Topic, notify chan struct{}) func() {
	h.mu.Lock()
	h.next++
	id := h.next
	for _, topic := range topics {
		if h.subs[topic] == nil {
			h.subs[topic] = make(map[int]chan struct{})
		}
		h.subs[topic][id] = notify
	}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, topic := range topics {
			delete(h.subs[topic], id)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
		}
	}
}

// Observe subscribes to the given topics and returns a channel of query
// snapshots plus a cancel function. The first snapshot is emitted
// immediately; afterwards the query re-runs on every notification. Cancel
// stops emissions promptly and closes the channel. Query errors are logged
// and the previous snapshot stands.
func Observe[T any](h *Hub, topics []Topic, query func() (T, error)) (<-chan T, func()) {
	notify := make(chan struct{}, 1)
	out := make(chan T, 1)
	done := make(chan struct{})

	unregister := h.register(topics, notify)
	log := logger.Named("watch")

	go func() {
		defer close(out)
		emit := func() {
			snap, err := query()
			if err != nil {
				log.Warnw("live query failed", "error", err)
				return
			}
			select {
			case out <- snap:
			case <-done:
			}
		}

		emit()
		for {
			select {
			case <-done:
				return
			case <-notify:
				emit()
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			unregister()
			close(done)
		})
	}
	return out, cancel
}
