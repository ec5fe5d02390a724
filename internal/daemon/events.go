package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Event types.
const (
	EventSnapshot = "snapshot"
	EventDelta    = "dashboard_delta"
)

// hub keeps the newest events and fans new ones out to stream subscribers.
type hub struct {
	mu     sync.Mutex
	limit  int
	lastID int64
	ring   []Event
	subs   map[chan Event]struct{}
}

func newHub(limit int) *hub {
	return &hub{limit: limit, subs: make(map[chan Event]struct{})}
}

// publish stamps ev with the next ID, stores it and delivers it to every subscriber.
// A subscriber whose buffer is full misses the event.
func (h *hub) publish(ev Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	ev.ID = h.lastID
	h.ring = append(h.ring, ev)
	if over := len(h.ring) - h.limit; over > 0 {
		h.ring = h.ring[over:]
	}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// since returns the retained events with an ID above id, oldest first.
func (h *hub) since(id int64) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []Event{}
	for _, ev := range h.ring {
		if ev.ID > id {
			out = append(out, ev)
		}
	}
	return out
}

// subscribe registers a buffered channel. The returned func unregisters it.
func (h *hub) subscribe(buf int) (<-chan Event, func()) {
	ch := make(chan Event, buf)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

func (h *hub) counts() (events, subscribers int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ring), len(h.subs)
}

// writeSSE frames ev as a server-sent event. Events without an ID (the greeting
// snapshot) carry no id line so clients keep their resume position.
func writeSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", ev.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
