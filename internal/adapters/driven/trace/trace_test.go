package trace

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/descry-cli/internal/logger"
)

func TestLogSink_SpanLifecycle(t *testing.T) {
	defer func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)

	sink := NewLogSink()
	handle := sink.StartSpan("trace-1", "completion.search_plan")

	assert.Equal(t, "trace-1", handle.TraceID)
	assert.NotEmpty(t, handle.SpanID)
	assert.Equal(t, "completion.search_plan", handle.Name)

	sink.EndSpan(handle)

	out := buf.String()
	assert.Contains(t, out, "Span start: trace=trace-1")
	assert.Contains(t, out, "Span end: trace=trace-1")
	assert.Contains(t, out, "elapsed=")

	// Span bookkeeping is released on end.
	assert.Empty(t, sink.start)
}

func TestLogSink_UnmatchedEnd(t *testing.T) {
	defer func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)

	sink := NewLogSink()
	sink.EndSpan(NopSink{}.StartSpan("trace-1", "orphan"))

	assert.Contains(t, buf.String(), "unmatched")
}

func TestNopSink(t *testing.T) {
	sink := NopSink{}
	handle := sink.StartSpan("trace-1", "anything")
	assert.Empty(t, handle.SpanID)
	assert.NotPanics(t, func() { sink.EndSpan(handle) })
}
