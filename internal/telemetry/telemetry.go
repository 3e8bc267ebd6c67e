// Package telemetry records conversation events off the request path.
package telemetry

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one recorded conversation step.
type Event struct {
	ID             uuid.UUID      `json:"id"`
	Kind           string         `json:"kind"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Role           string         `json:"role,omitempty"`
	Content        string         `json:"content,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Event kinds emitted by the orchestrator.
const (
	KindUserMessage    = "user_message"
	KindAssistantReply = "assistant_reply"
	KindRouting        = "routing_decision"
	KindAgentResult    = "agent_result"
)

// NewEvent stamps an event with an ID and creation time.
func NewEvent(kind string) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// Recorder accepts events. Implementations must not block the caller.
type Recorder interface {
	Record(event Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(Event) {}

// Dispatcher fans events out to a sink on a background goroutine. Record
// never blocks. Events that arrive while the buffer is full are dropped.
type Dispatcher struct {
	events chan Event
	done   chan struct{}
	logger *zap.Logger
	sink   Recorder
}

// NewDispatcher starts the background worker. Close must be called to drain.
func NewDispatcher(sink Recorder, buffer int, log *zap.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		logger: log,
		sink:   sink,
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.events {
		d.sink.Record(event)
	}
}

// Record enqueues the event, dropping it when the buffer is full.
func (d *Dispatcher) Record(event Event) {
	select {
	case d.events <- event:
	default:
		d.logger.Warn("telemetry buffer full, dropping event", zap.String("kind", event.Kind))
	}
}

// Close stops accepting events and waits for the worker to drain the buffer.
func (d *Dispatcher) Close() {
	close(d.events)
	<-d.done
}

// ZapSink writes events to structured logs.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a log-backed event sink.
func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{logger: log}
}

func (s *ZapSink) Record(event Event) {
	fields := []zap.Field{
		zap.String("event_id", event.ID.String()),
		zap.String("kind", event.Kind),
		zap.Time("created_at", event.CreatedAt),
	}
	if event.ConversationID != "" {
		fields = append(fields, zap.String("conversation_id", event.ConversationID))
	}
	if event.Role != "" {
		fields = append(fields, zap.String("role", event.Role))
	}
	if event.Content != "" {
		fields = append(fields, zap.String("content", event.Content))
	}
	if len(event.Extra) > 0 {
		fields = append(fields, zap.Any("extra", event.Extra))
	}
	s.logger.Info("conversation event", fields...)
}
