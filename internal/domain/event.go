package domain

import (
	"fmt"
	"time"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventCountdown        EventType = "countdown"
	EventSegmentStart     EventType = "segment-start"
	EventSequenceFinished EventType = "sequence-finished"
)

// Event is a discrete cue emitted by the engine in traversal order.
type Event struct {
	Type EventType `json:"type"`
	// Second is set for countdown events (3, 2 or 1).
	Second int `json:"second,omitempty"`
	// Segment fields describe the segment the event belongs to.
	Index int         `json:"index"`
	Kind  SegmentKind `json:"kind"`
	Label string      `json:"label,omitempty"`
	At    time.Time   `json:"at"`
}

// Name returns the event in the sink vocabulary, e.g. "countdown-3" or
// "segment-start:work".
func (e Event) Name() string {
	switch e.Type {
	case EventCountdown:
		return fmt.Sprintf("countdown-%d", e.Second)
	case EventSegmentStart:
		return "segment-start:" + e.Kind.String()
	default:
		return string(e.Type)
	}
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(event).
func (f NotifierFunc) Notify(event Event) {
	f(event)
}
