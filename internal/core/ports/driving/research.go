package driving

import (
	"context"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

// RunHandle is returned by ResearchService.Start. It identifies the run
// and carries its event stream: a lazy, finite, non-restartable sequence
// of progress events, closed when the run reaches a terminal stage.
type RunHandle struct {
	// ID is the run's unique identifier.
	ID string

	// Events receives every progress event emitted by the run, in
	// strict emission order. The channel is closed after the terminal
	// event (done, failed or cancelled).
	Events <-chan domain.ProgressEvent
}

// RunOptions configures a single research run.
type RunOptions struct {
	// QuestionCount is the number of clarifying questions to produce.
	// Zero selects the default (3).
	QuestionCount int

	// SearchCount is the number of planned searches.
	// Zero selects the default (5).
	SearchCount int

	// Deliver requests delivery of the finished report via the
	// configured notifier.
	Deliver bool
}

// ResearchService drives end-to-end research runs. A run advances
// through its stages strictly forward, suspends once for clarifying
// answers, and terminates in done, failed or cancelled.
type ResearchService interface {
	// Start begins a run for the given topic and returns its handle.
	// The pipeline runs asynchronously; progress is observed through
	// the handle's event stream. The context governs the entire run:
	// cancelling it cancels the run.
	Start(ctx context.Context, rawQuery string, opts RunOptions) (*RunHandle, error)

	// SupplyAnswers resumes a run suspended at the clarification stage.
	// Returns domain.ErrInvalidTransition if the run is not awaiting
	// answers, or domain.ErrAnswerMismatch if the answer set does not
	// match the pending questions one-to-one.
	SupplyAnswers(runID string, answers []domain.Answer) error

	// Cancel requests best-effort cancellation of a run. In-flight
	// search tasks are abandoned; already-settled outcomes are kept.
	// Cancelling a finished run is a no-op.
	Cancel(runID string) error

	// CurrentState returns a read-only snapshot of the run's state.
	CurrentState(runID string) (domain.RunState, error)
}
