package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

// eventStream is the ordered progress feed for one run. Indices are
// assigned at emission under the stream's lock, so they are strictly
// increasing and contiguous no matter how fan-out tasks interleave.
//
// The stream is finite: a run emits a bounded number of events (a few
// per stage plus one per search task), so the channel buffer is sized
// to hold a whole run and emitters never block on a slow consumer.
type eventStream struct {
	mu     sync.Mutex
	ch     chan domain.ProgressEvent
	next   int
	closed bool
}

// streamCapacity returns a buffer size that holds every event a run
// with the given search count can emit.
func streamCapacity(searchCount int) int {
	return 32 + 2*searchCount
}

func newEventStream(searchCount int) *eventStream {
	return &eventStream{
		ch: make(chan domain.ProgressEvent, streamCapacity(searchCount)),
	}
}

// events returns the receive side handed to callers.
func (s *eventStream) events() <-chan domain.ProgressEvent {
	return s.ch
}

// emit publishes one event, assigning the next order index.
// Emitting on a closed stream is a no-op.
func (s *eventStream) emit(event domain.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	event.Index = s.next
	event.Timestamp = time.Now()
	s.next++

	select {
	case s.ch <- event:
	default:
		// The buffer is sized for a full run; reaching this means an
		// emitter bug, not consumer pressure. Drop rather than deadlock.
	}
}

// close terminates the stream. Idempotent.
func (s *eventStream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
