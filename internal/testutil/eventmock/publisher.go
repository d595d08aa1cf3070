// Package eventmock records published events for assertions.
package eventmock

import (
	"context"
	"sync"

	"loanvault-backend/internal/domain/event"
)

var _ event.Publisher = (*Recorder)(nil)

// Recorder satisfies event.Publisher and keeps everything published.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *Recorder) Publish(ctx context.Context, e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns just the event kinds, in publish order.
func (r *Recorder) Kinds() []event.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
