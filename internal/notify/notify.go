// Package notify bridges capacity events to chat platforms (Slack, Discord).
// Delivery is one-way and best-effort: planning never blocks on chat.
package notify

import (
	"context"
	"log"
)

// Event severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Adapter is the interface platform-specific implementations satisfy.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Send delivers one event to the platform.
	Send(ctx context.Context, evt Event) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// Event is a capacity event formatted for display in chat.
type Event struct {
	Title    string  // headline (e.g. "Q3 over 90% capacity")
	Body     string  // detail text
	Severity string  // "info", "warning", "error"
	Color    string  // sidebar color hint (e.g. "#EF4444")
	Fields   []Field // key-value metadata pairs
}

// Field is a key-value pair displayed alongside an event.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Dispatcher fans an event out to every configured adapter.
type Dispatcher struct {
	adapters []Adapter
}

// NewDispatcher creates a Dispatcher over the given adapters.
func NewDispatcher(adapters ...Adapter) *Dispatcher {
	return &Dispatcher{adapters: adapters}
}

// Enabled reports whether any adapter is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.adapters) > 0
}

// Send delivers evt to every adapter. Failures are logged, not returned:
// a dead webhook must never fail a placement.
func (d *Dispatcher) Send(ctx context.Context, evt Event) {
	if d == nil {
		return
	}
	for _, a := range d.adapters {
		if err := a.Send(ctx, evt); err != nil {
			log.Printf("notify: send %q: %v", evt.Title, err)
		}
	}
}

// Close shuts down every adapter.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	for _, a := range d.adapters {
		if err := a.Close(); err != nil {
			log.Printf("notify: close adapter: %v", err)
		}
	}
}
