package orchestrator

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// emitTimeout is how long Emit waits on a full channel before dropping.
const emitTimeout = 100 * time.Millisecond

// EventEmitter delivers events to a single subscriber over a buffered
// channel. Slow subscribers lose events rather than stall the engine.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
	closeOnce    sync.Once
	closed       atomic.Bool
}

// NewEventEmitter creates a new EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit sends event, waiting briefly if the channel is full before dropping it.
// Emit on a nil or closed emitter is a no-op.
func (e *EventEmitter) Emit(event Event) {
	if e == nil || e.closed.Load() {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
	case <-time.After(emitTimeout):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[orchestrator] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns the channel subscribers read from.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. It must not race with Emit; the engine
// closes only after Run has returned.
func (e *EventEmitter) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.events)
	})
}
