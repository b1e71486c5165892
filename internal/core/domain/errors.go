package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProvider indicates an external provider call failed
	// (timeout, malformed response, rate limit, network). Recoverable
	// inside the search fan-out; fatal for the single-shot stages.
	ErrProvider = errors.New("provider error")

	// ErrDelivery indicates the notifier failed to deliver the report.
	// Always non-fatal; surfaced as a warning event.
	ErrDelivery = errors.New("delivery failed")

	// ErrInvalidTransition indicates an operation that is not valid for
	// the run's current stage (e.g. supplying answers twice).
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAnswerMismatch indicates the supplied answers do not correspond
	// one-to-one with the pending clarifying questions.
	ErrAnswerMismatch = errors.New("answers do not match pending questions")

	// ErrRunNotFound indicates no run exists for the given handle.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunCancelled indicates the run was cancelled by the caller.
	// Terminal, but a distinct outcome from failure.
	ErrRunCancelled = errors.New("run cancelled")

	// ErrMalformedCompletion indicates a completion provider returned
	// output that does not conform to the requested shape.
	ErrMalformedCompletion = errors.New("malformed completion output")
)

// StageError reports which pipeline stage failed and why. It is the
// error carried by a run that ends in StageFailed.
type StageError struct {
	// Stage is the pipeline stage that failed.
	Stage Stage

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}
