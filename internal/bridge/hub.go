// Package bridge implements the view capability interfaces over a
// command stream: every view mutation becomes an event the browser-side
// renderer consumes, and the renderer posts view state back. This is
// what lets the choreography engine run headless while the actual
// mapping engine lives in the page.
package bridge

import (
	"sync"
	"time"

	"github.com/ivlev/storymap/internal/view"
)

// maxBacklog bounds the retained event window for late pollers.
const maxBacklog = 512

// Event is one command emitted toward the renderer.
type Event struct {
	Seq     int64          `json:"seq"`
	Surface view.SurfaceID `json:"surface"`
	Kind    string         `json:"kind"`
	Payload any            `json:"payload,omitempty"`
}

// Hub fans events out to pollers and routes renderer acknowledgements
// back to waiting layers.
type Hub struct {
	mu      sync.Mutex
	seq     int64
	events  []Event
	waiters []chan struct{}
	acks    map[string]chan struct{}
}

func NewHub() *Hub {
	return &Hub{acks: make(map[string]chan struct{})}
}

// Publish appends an event and wakes pollers.
func (h *Hub) Publish(surface view.SurfaceID, kind string, payload any) {
	h.mu.Lock()
	h.seq++
	h.events = append(h.events, Event{Seq: h.seq, Surface: surface, Kind: kind, Payload: payload})
	if len(h.events) > maxBacklog {
		h.events = h.events[len(h.events)-maxBacklog:]
	}
	waiters := h.waiters
	h.waiters = nil
	h.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
}

// Since returns events with a sequence greater than seq, long-polling
// up to wait when none are available yet.
func (h *Hub) Since(seq int64, wait time.Duration) []Event {
	deadline := time.Now().Add(wait)
	for {
		h.mu.Lock()
		var out []Event
		for _, e := range h.events {
			if e.Seq > seq {
				out = append(out, e)
			}
		}
		if len(out) > 0 || time.Now().After(deadline) {
			h.mu.Unlock()
			return out
		}
		w := make(chan struct{})
		h.waiters = append(h.waiters, w)
		h.mu.Unlock()

		select {
		case <-w:
		case <-time.After(time.Until(deadline)):
			return nil
		}
	}
}

// AckLayer signals that the renderer finished loading a layer.
func (h *Hub) AckLayer(title string) {
	h.mu.Lock()
	ch := h.acks[title]
	delete(h.acks, title)
	h.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// layerAck returns the channel the next AckLayer for title will close.
func (h *Hub) layerAck(title string) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.acks[title]
	if !ok {
		ch = make(chan struct{})
		h.acks[title] = ch
	}
	return ch
}
