package domain

import "time"

// Stage identifies a state of the research pipeline.
// Stages only ever move forward within a run; none is revisited.
type Stage int

const (
	// StageStart is the initial state of a new run.
	StageStart Stage = iota
	// StageOptimized means the raw query has been refined.
	StageOptimized
	// StageQuestionsReady means clarifying questions have been produced
	// and the run is suspended waiting for the caller's answers.
	StageQuestionsReady
	// StageEnriched means the answers have been composed into the
	// enriched query.
	StageEnriched
	// StagePlanned means the search plan has been produced.
	StagePlanned
	// StageSearched means all search tasks have settled.
	StageSearched
	// StageWritten means the report has been synthesised.
	StageWritten
	// StageDelivered means the report was handed to the notifier.
	StageDelivered
	// StageDone is the successful terminal state.
	StageDone
	// StageFailed is the terminal state after an unrecoverable stage failure.
	StageFailed
	// StageCancelled is the terminal state after caller cancellation.
	StageCancelled
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageOptimized:
		return "optimized"
	case StageQuestionsReady:
		return "questions_ready"
	case StageEnriched:
		return "enriched"
	case StagePlanned:
		return "planned"
	case StageSearched:
		return "searched"
	case StageWritten:
		return "written"
	case StageDelivered:
		return "delivered"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	case StageCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the stage ends a run.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed || s == StageCancelled
}

// RunState is a snapshot of a run's progress. The orchestrator is the
// only writer; snapshots handed out to callers are deep copies and
// never mutated afterwards.
type RunState struct {
	// RunID uniquely identifies the run.
	RunID string

	// Stage is the run's current pipeline stage.
	Stage Stage

	// Query is the user's initial topic.
	Query RawQuery

	// Optimized is set once StageOptimized is reached.
	Optimized OptimizedQuery

	// Questions is set once StageQuestionsReady is reached.
	Questions []ClarifyingQuestion

	// Answers is set once the caller resumes the run.
	Answers []Answer

	// Enriched is set once StageEnriched is reached.
	Enriched EnrichedQuery

	// Plan is set once StagePlanned is reached.
	Plan []SearchPlanItem

	// Results is populated during the search phase.
	Results SearchResultSet

	// Report is set once StageWritten is reached.
	Report *Report

	// FailedStage records which stage failed. Only meaningful when
	// Stage is StageFailed.
	FailedStage Stage

	// FailureCause records the underlying error text. Only meaningful
	// when Stage is StageFailed.
	FailureCause string
}

// Clone returns a deep copy of the state, safe to hand to callers while
// the run keeps progressing.
func (r RunState) Clone() RunState {
	out := r
	out.Questions = append([]ClarifyingQuestion(nil), r.Questions...)
	out.Answers = append([]Answer(nil), r.Answers...)
	out.Plan = append([]SearchPlanItem(nil), r.Plan...)
	out.Results = SearchResultSet{
		Outcomes: append([]SearchOutcome(nil), r.Results.Outcomes...),
	}
	if r.Report != nil {
		rep := *r.Report
		out.Report = &rep
	}
	return out
}

// EventLevel is the severity of a progress event.
type EventLevel int

const (
	// LevelInfo is a normal progress notification.
	LevelInfo EventLevel = iota
	// LevelWarn flags a non-fatal problem (failed search, failed delivery).
	LevelWarn
)

// String returns the level name.
func (l EventLevel) String() string {
	if l == LevelWarn {
		return "warn"
	}
	return "info"
}

// ProgressEvent is one observable status update emitted by the
// orchestrator. Indices are strictly increasing and contiguous per run.
type ProgressEvent struct {
	// Index is the emission order of the event within its run,
	// starting at 0.
	Index int

	// Stage is the pipeline stage the event belongs to.
	Stage Stage

	// Level is the event severity.
	Level EventLevel

	// Message is a human-readable description.
	Message string

	// Questions carries the clarifying questions on the event emitted
	// when the run suspends. Nil otherwise.
	Questions []ClarifyingQuestion

	// Outcome carries the settled outcome on per-search events.
	// Nil otherwise.
	Outcome *SearchOutcome

	// Timestamp is when the event was emitted.
	Timestamp time.Time
}
