package engine

import (
	"context"
	"log/slog"
	"time"
)

// EventKind identifies a trace event.
type EventKind string

const (
	EventStageStart EventKind = "stage_start"
	EventStageEnd   EventKind = "stage_end"
	EventNewBest    EventKind = "new_best"
	EventTruncated  EventKind = "truncated"
	EventClosedForm EventKind = "closed_form"
	EventShrink     EventKind = "shrink_retry"
	EventExpansion  EventKind = "edge_expansion"
	EventSkip       EventKind = "skip"
)

// Event is a structured trace record emitted by the optimizer. Fields
// that do not apply to a kind are left zero.
type Event struct {
	Kind       EventKind
	Stage      string
	Angle      float64
	Area       float64
	Candidates int
	Angles     int
	Elapsed    time.Duration
	Message    string
}

// Tracer observes the search. Implementations must not block; the
// optimizer calls Trace synchronously from its search loops.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(Event)

func (f TracerFunc) Trace(e Event) { f(e) }

type nopTracer struct{}

func (nopTracer) Trace(Event) {}

// slogTracer writes events to a slog.Logger. Per-angle chatter goes to
// Debug, stage results go to Info.
type slogTracer struct {
	logger *slog.Logger
}

// NewSlogTracer returns a Tracer that logs every event to l.
func NewSlogTracer(l *slog.Logger) Tracer {
	if l == nil {
		l = Logger()
	}
	return slogTracer{logger: l}
}

func (t slogTracer) Trace(e Event) {
	level := slog.LevelDebug
	switch e.Kind {
	case EventStageEnd, EventClosedForm, EventTruncated:
		level = slog.LevelInfo
	}
	attrs := []slog.Attr{
		slog.String("kind", string(e.Kind)),
		slog.String("stage", e.Stage),
	}
	if e.Angle != 0 {
		attrs = append(attrs, slog.Float64("angle", e.Angle))
	}
	if e.Area != 0 {
		attrs = append(attrs, slog.Float64("area", e.Area))
	}
	if e.Candidates != 0 {
		attrs = append(attrs, slog.Int("candidates", e.Candidates))
	}
	if e.Angles != 0 {
		attrs = append(attrs, slog.Int("angles", e.Angles))
	}
	if e.Elapsed != 0 {
		attrs = append(attrs, slog.Duration("elapsed", e.Elapsed))
	}
	msg := e.Message
	if msg == "" {
		msg = "rectfit " + string(e.Kind)
	}
	t.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
