// Package notify fans slot changes out to every open view in the process.
package notify

import (
	"sync"
)

// Change names a rewritten slot. Origin identifies the process that wrote
// it.
type Change struct {
	Key    string `json:"key"`
	Value  []byte `json:"-"`
	Origin string `json:"origin"`
}

// Hub is an in-process publish/subscribe bus. Subscribers that fall behind
// lose changes rather than block the publisher.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: map[int]chan Change{}, buffer: buffer}
}

// Subscribe returns a channel of changes and a func that closes it.
func (h *Hub) Subscribe() (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Change, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers c to every subscriber without blocking.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
