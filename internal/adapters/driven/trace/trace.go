// Package trace provides trace sink adapters. The default sink records
// span boundaries to the verbose log with correlation ids; a no-op
// sink is available when tracing is disabled.
package trace

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// Ensure implementations satisfy the interface.
var (
	_ driven.TraceSink = (*LogSink)(nil)
	_ driven.TraceSink = (*NopSink)(nil)
)

// LogSink writes span start/end lines to the verbose log, with the
// trace id correlating all spans of one run.
type LogSink struct {
	mu    sync.Mutex
	start map[string]time.Time
}

// NewLogSink creates a logging trace sink.
func NewLogSink() *LogSink {
	return &LogSink{start: make(map[string]time.Time)}
}

// StartSpan opens a span under the given trace correlation id.
func (s *LogSink) StartSpan(traceID, name string) driven.SpanHandle {
	handle := driven.SpanHandle{
		TraceID: traceID,
		SpanID:  uuid.NewString(),
		Name:    name,
	}

	s.mu.Lock()
	s.start[handle.SpanID] = time.Now()
	s.mu.Unlock()

	logger.Debug("Span start: trace=%s span=%s name=%s", traceID, handle.SpanID, name)
	return handle
}

// EndSpan closes a previously started span, logging its duration.
func (s *LogSink) EndSpan(handle driven.SpanHandle) {
	s.mu.Lock()
	started, ok := s.start[handle.SpanID]
	delete(s.start, handle.SpanID)
	s.mu.Unlock()

	if !ok {
		logger.Debug("Span end (unmatched): trace=%s span=%s name=%s",
			handle.TraceID, handle.SpanID, handle.Name)
		return
	}
	logger.Debug("Span end: trace=%s span=%s name=%s elapsed=%s",
		handle.TraceID, handle.SpanID, handle.Name, time.Since(started))
}

// NopSink discards all spans.
type NopSink struct{}

// StartSpan returns a handle without recording anything.
func (NopSink) StartSpan(traceID, name string) driven.SpanHandle {
	return driven.SpanHandle{TraceID: traceID, Name: name}
}

// EndSpan does nothing.
func (NopSink) EndSpan(driven.SpanHandle) {}
