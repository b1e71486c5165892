package driven

// SpanHandle identifies an open span returned by a TraceSink.
type SpanHandle struct {
	// TraceID correlates all spans belonging to one run.
	TraceID string

	// SpanID identifies this span within the trace.
	SpanID string

	// Name is the operation the span covers.
	Name string
}

// TraceSink records spans correlating all work belonging to one run.
// The trace identifier is passed explicitly rather than carried in
// ambient state.
type TraceSink interface {
	// StartSpan opens a span under the given trace correlation id.
	StartSpan(traceID, name string) SpanHandle

	// EndSpan closes a previously started span.
	EndSpan(handle SpanHandle)
}
