package llm

import (
	"sync/atomic"

	"go.uber.org/zap"
)

type droppedCounter struct {
	n atomic.Int64
}

func (d *droppedCounter) inc()        { d.n.Add(1) }
func (d *droppedCounter) load() int64 { return d.n.Load() }

// EventType tags the shape of an EventRecord.
type EventType string

const (
	EventCallStart    EventType = "call.start"
	EventCallSuccess  EventType = "call.success"
	EventCallError    EventType = "call.error"
	EventCallRetry    EventType = "call.retry"
	EventBreakerOpen  EventType = "breaker.open"
	EventBreakerClose EventType = "breaker.close"
	EventLimiterWait  EventType = "limiter.wait"
)

// EventRecord is the tagged variant every observer receives.
type EventRecord struct {
	Type      EventType
	Binding   string
	RequestID string
	Attempt   int
	WaitMs    int64
	Error     *Error
}

// Observer receives events. Each observer runs on its own goroutine fed by a
// bounded queue, so a slow observer never delays the emitting call; once its
// queue is full, further events for it are dropped.
type Observer func(EventRecord)

// EventBus delivers EventRecords to a fixed set of observers registered at
// construction, best-effort and non-blocking: a slow observer's events are
// dropped rather than stalling the emitting call.
type EventBus struct {
	observers []chan EventRecord
	dropped   *droppedCounter
	logger    *zap.Logger
}

// NewEventBus wires up a bus over the given observers, each serviced by its
// own bounded queue and goroutine. queueSize bounds how far an observer may
// lag before its events start dropping.
func NewEventBus(logger *zap.Logger, queueSize int, observers ...Observer) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	bus := &EventBus{dropped: &droppedCounter{}, logger: logger}
	for _, obs := range observers {
		ch := make(chan EventRecord, queueSize)
		bus.observers = append(bus.observers, ch)
		go func(obs Observer, ch chan EventRecord) {
			for rec := range ch {
				obs(rec)
			}
		}(obs, ch)
	}
	return bus
}

// Emit delivers rec to every observer without blocking the caller; an
// observer whose queue is full has this event dropped and the bus's
// events_dropped counter incremented.
func (b *EventBus) Emit(rec EventRecord) {
	for _, ch := range b.observers {
		select {
		case ch <- rec:
		default:
			b.dropped.inc()
			observeEventsDropped(1)
			b.logger.Debug("event dropped, observer queue full", zap.String("type", string(rec.Type)))
		}
	}
}

// EventsDropped returns the cumulative count of dropped events across all
// observers, for the events_dropped metric.
func (b *EventBus) EventsDropped() int64 {
	return b.dropped.load()
}
