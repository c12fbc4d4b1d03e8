// Package progress carries phase progress to passive observers.
//
// Observers are strictly passive: publishing never blocks and nothing
// an observer does can cancel or stall the phase reporting to it. A
// slow observer loses events rather than slowing the pipeline.
package progress

import "sync"

// Event is a single progress report.
type Event struct {
	Percent int    `json:"progress"`
	Message string `json:"message"`
}

// Sink receives progress events.
type Sink interface {
	Publish(event Event)
}

// FuncSink adapts a plain function into a Sink.
type FuncSink func(Event)

// Publish calls the wrapped function.
func (f FuncSink) Publish(event Event) {
	f(event)
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// ChannelSink delivers events over a channel with non-blocking sends.
// When the channel is full the event is dropped; progress is advisory
// and the next event supersedes it anyway.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a sink buffering up to size events.
func NewChannelSink(size int) *ChannelSink {
	if size < 1 {
		size = 1
	}
	return &ChannelSink{ch: make(chan Event, size)}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Publish sends the event if the receiver is keeping up.
func (s *ChannelSink) Publish(event Event) {
	select {
	case s.ch <- event:
	default:
		// Receiver is behind; drop rather than block the phase.
	}
}

// Close closes the event channel. Publish must not be called after
// Close.
func (s *ChannelSink) Close() {
	close(s.ch)
}

// Tracker wraps a sink and normalizes what flows through it: percent is
// clamped into 0..100 and never decreases across the lifetime of the
// tracker.
type Tracker struct {
	mu   sync.Mutex
	sink Sink
	last int
}

// NewTracker creates a tracker over sink. A nil sink discards events.
func NewTracker(sink Sink) *Tracker {
	if sink == nil {
		sink = Discard
	}
	return &Tracker{sink: sink}
}

// Publish reports progress, holding the percent monotonic.
func (t *Tracker) Publish(percent int, message string) {
	t.mu.Lock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent < t.last {
		percent = t.last
	}
	t.last = percent
	t.mu.Unlock()

	t.sink.Publish(Event{Percent: percent, Message: message})
}
