package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// Default counts used when RunOptions leaves them zero.
const (
	DefaultQuestionCount = 3
	DefaultSearchCount   = 5
)

// ResearchOrchestrator drives research runs through their stages. Each
// run executes on its own goroutine; the orchestrator only coordinates
// suspension, resumption, cancellation and state snapshots.
type ResearchOrchestrator struct {
	gateway  *CompletionGateway
	searcher driven.SearchProvider
	notifier driven.Notifier
	trace    driven.TraceSink
	reports  driven.ReportStore

	mu   sync.RWMutex
	runs map[string]*run
}

var _ driving.ResearchService = (*ResearchOrchestrator)(nil)

// run is the orchestrator's bookkeeping for one research run.
type run struct {
	mu      sync.Mutex
	state   domain.RunState
	stream  *eventStream
	cancel  context.CancelFunc
	traceID string

	// answers carries the caller's clarification answers to the parked
	// run goroutine. Capacity 1 so SupplyAnswers never blocks.
	answers chan []domain.Answer
	resumed bool
}

// NewResearchOrchestrator creates the orchestrator. Gateway and searcher
// are required; notifier, report store and trace sink may be nil.
func NewResearchOrchestrator(
	gateway *CompletionGateway,
	searcher driven.SearchProvider,
	notifier driven.Notifier,
	reports driven.ReportStore,
	trace driven.TraceSink,
) *ResearchOrchestrator {
	return &ResearchOrchestrator{
		gateway:  gateway,
		searcher: searcher,
		notifier: notifier,
		reports:  reports,
		trace:    trace,
		runs:     make(map[string]*run),
	}
}

// Start begins a research run and returns its handle. The pipeline
// executes asynchronously on its own goroutine.
func (o *ResearchOrchestrator) Start(
	ctx context.Context, rawQuery string, opts driving.RunOptions,
) (*driving.RunHandle, error) {
	query, err := domain.NewRawQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("start research: %w", err)
	}

	if opts.QuestionCount <= 0 {
		opts.QuestionCount = DefaultQuestionCount
	}
	if opts.SearchCount <= 0 {
		opts.SearchCount = DefaultSearchCount
	}

	runCtx, cancel := context.WithCancel(ctx)

	r := &run{
		state: domain.RunState{
			RunID: uuid.NewString(),
			Stage: domain.StageStart,
			Query: query,
		},
		stream:  newEventStream(opts.SearchCount),
		cancel:  cancel,
		traceID: uuid.NewString(),
		answers: make(chan []domain.Answer, 1),
	}

	o.mu.Lock()
	o.runs[r.state.RunID] = r
	o.mu.Unlock()

	logger.Info("Research run started: id=%s trace=%s", r.state.RunID, r.traceID)

	go o.execute(runCtx, r, opts)

	return &driving.RunHandle{ID: r.state.RunID, Events: r.stream.events()}, nil
}

// SupplyAnswers resumes a run suspended at the clarification stage.
func (o *ResearchOrchestrator) SupplyAnswers(runID string, answers []domain.Answer) error {
	r, err := o.lookup(runID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Stage != domain.StageQuestionsReady || r.resumed {
		return fmt.Errorf("%w: run %s is not awaiting answers (stage %s)",
			domain.ErrInvalidTransition, runID, r.state.Stage)
	}

	if err := matchAnswers(r.state.Questions, answers); err != nil {
		return err
	}

	r.resumed = true
	r.state.Answers = append([]domain.Answer(nil), answers...)
	r.answers <- r.state.Answers

	return nil
}

// Cancel requests cancellation of a run. Cancelling a finished run is
// a no-op.
func (o *ResearchOrchestrator) Cancel(runID string) error {
	r, err := o.lookup(runID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	terminal := r.state.Stage.Terminal()
	r.mu.Unlock()

	if terminal {
		return nil
	}

	logger.Info("Cancelling run: id=%s", runID)
	r.cancel()
	return nil
}

// CurrentState returns a snapshot of the run's state.
func (o *ResearchOrchestrator) CurrentState(runID string) (domain.RunState, error) {
	r, err := o.lookup(runID)
	if err != nil {
		return domain.RunState{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone(), nil
}

func (o *ResearchOrchestrator) lookup(runID string) (*run, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	r, ok := o.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
	}
	return r, nil
}

// matchAnswers checks that answers correspond one-to-one with questions.
func matchAnswers(questions []domain.ClarifyingQuestion, answers []domain.Answer) error {
	if len(answers) != len(questions) {
		return fmt.Errorf("%w: got %d answers for %d questions",
			domain.ErrAnswerMismatch, len(answers), len(questions))
	}

	pending := make(map[string]bool, len(questions))
	for _, q := range questions {
		pending[q.ID] = true
	}
	for _, a := range answers {
		if !pending[a.QuestionID] {
			return fmt.Errorf("%w: unknown or duplicate question id %q",
				domain.ErrAnswerMismatch, a.QuestionID)
		}
		delete(pending, a.QuestionID)
	}

	return nil
}

// execute runs the whole pipeline for one run. It is the only writer of
// the run's state and the only closer of its event stream.
func (o *ResearchOrchestrator) execute(ctx context.Context, r *run, opts driving.RunOptions) {
	defer r.cancel()

	if o.trace != nil {
		span := o.trace.StartSpan(r.traceID, "research.run")
		defer o.trace.EndSpan(span)
	}

	// Optimize.
	query := o.snapshot(r).Query
	optimized, err := o.gateway.OptimizeQuery(ctx, r.traceID, query)
	if o.settleError(ctx, r, domain.StageOptimized, err) {
		return
	}
	o.advance(r, domain.StageOptimized, func(s *domain.RunState) {
		s.Optimized = optimized
	}, "Query optimized: %s", optimized.Text)

	// Clarify: produce questions, then suspend for answers.
	questions, err := o.gateway.GenerateQuestions(ctx, r.traceID, optimized, opts.QuestionCount)
	if o.settleError(ctx, r, domain.StageQuestionsReady, err) {
		return
	}
	o.advanceQuestions(r, questions)

	answers, ok := o.awaitAnswers(ctx, r)
	if !ok {
		return
	}

	// Enrich.
	enriched := domain.ComposeEnrichedQuery(optimized, questions, answers)
	o.advance(r, domain.StageEnriched, func(s *domain.RunState) {
		s.Enriched = enriched
	}, "Query enriched with %d clarifications", len(answers))

	// Plan.
	plan, err := o.gateway.PlanSearches(ctx, r.traceID, enriched, opts.SearchCount)
	if o.settleError(ctx, r, domain.StagePlanned, err) {
		return
	}
	o.advance(r, domain.StagePlanned, func(s *domain.RunState) {
		s.Plan = append([]domain.SearchPlanItem(nil), plan...)
	}, "Planned %d searches", len(plan))

	// Search fan-out.
	results := o.runSearches(ctx, r, plan)
	if ctx.Err() != nil {
		o.settleCancelled(r)
		return
	}
	message := fmt.Sprintf("Searches settled: %d succeeded, %d failed",
		len(results.Successes()), results.FailureCount())
	o.advance(r, domain.StageSearched, func(s *domain.RunState) {
		s.Results = results
	}, "%s", message)
	if results.AllFailed() {
		o.emit(r, domain.StageSearched, domain.LevelWarn,
			"All searches failed; report will note the lack of findings")
	}

	// Write report.
	var summaries []string
	for _, outcome := range results.Successes() {
		summaries = append(summaries, outcome.Summary)
	}
	body, err := o.gateway.WriteReport(ctx, r.traceID, enriched.Text, summaries)
	if o.settleError(ctx, r, domain.StageWritten, err) {
		return
	}
	report := &domain.Report{
		ID:        uuid.NewString(),
		Query:     optimized.Text,
		Body:      body,
		CreatedAt: time.Now(),
	}
	o.advance(r, domain.StageWritten, func(s *domain.RunState) {
		s.Report = report
	}, "Report written (%d findings)", len(summaries))

	o.archive(ctx, r, *report)

	// Deliver (optional, never fatal).
	if opts.Deliver {
		o.deliver(ctx, r, report)
	}

	o.settleDone(r)
}

// runSearches executes the plan and streams one event per settled task.
func (o *ResearchOrchestrator) runSearches(
	ctx context.Context, r *run, plan []domain.SearchPlanItem,
) domain.SearchResultSet {
	fanout := newSearchFanout(o.searcher, o.gateway)

	return fanout.run(ctx, r.traceID, plan, func(outcome domain.SearchOutcome) {
		r.mu.Lock()
		r.state.Results.Outcomes = append(r.state.Results.Outcomes, outcome)
		r.mu.Unlock()

		settled := outcome
		level := domain.LevelInfo
		message := fmt.Sprintf("Search done: %q", settled.Item.Term)
		if !settled.Succeeded {
			level = domain.LevelWarn
			message = fmt.Sprintf("Search failed: %q: %s", settled.Item.Term, settled.Failure)
		}
		r.stream.emit(domain.ProgressEvent{
			Stage:   domain.StageSearched,
			Level:   level,
			Message: message,
			Outcome: &settled,
		})
	})
}

// awaitAnswers parks the run goroutine until the caller supplies
// answers or the run is cancelled.
func (o *ResearchOrchestrator) awaitAnswers(ctx context.Context, r *run) ([]domain.Answer, bool) {
	select {
	case answers := <-r.answers:
		return answers, true
	case <-ctx.Done():
		o.settleCancelled(r)
		return nil, false
	}
}

// archive persists the report best-effort; archive failure never fails
// the run.
func (o *ResearchOrchestrator) archive(ctx context.Context, r *run, report domain.Report) {
	if o.reports == nil {
		return
	}
	if err := o.reports.Save(ctx, report); err != nil {
		logger.Warn("Failed to archive report %s: %v", report.ID, err)
		o.emit(r, domain.StageWritten, domain.LevelWarn,
			fmt.Sprintf("Report archive failed: %v", err))
	}
}

// deliver hands the report to the notifier. Delivery failure is a
// warning, not a run failure.
func (o *ResearchOrchestrator) deliver(ctx context.Context, r *run, report *domain.Report) {
	if o.notifier == nil {
		o.emit(r, domain.StageWritten, domain.LevelWarn,
			"Delivery requested but no notifier is configured")
		return
	}

	subject := fmt.Sprintf("Research report: %s", report.Query)
	if err := o.notifier.Deliver(ctx, subject, report.Body); err != nil {
		logger.Warn("Report delivery failed: %v", err)
		o.emit(r, domain.StageWritten, domain.LevelWarn,
			fmt.Sprintf("Report delivery failed: %v", err))
		return
	}

	o.advance(r, domain.StageDelivered, nil, "Report delivered")
}

// snapshot returns a copy of the run's state.
func (o *ResearchOrchestrator) snapshot(r *run) domain.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// advance moves the run to the given stage, applies the state mutation
// and emits the stage's progress event.
func (o *ResearchOrchestrator) advance(
	r *run, stage domain.Stage, mutate func(*domain.RunState), format string, args ...any,
) {
	r.mu.Lock()
	r.state.Stage = stage
	if mutate != nil {
		mutate(&r.state)
	}
	r.mu.Unlock()

	logger.Debug("Run %s: stage=%s", r.state.RunID, stage)
	o.emit(r, stage, domain.LevelInfo, fmt.Sprintf(format, args...))
}

// advanceQuestions suspends the run at the clarification stage. The
// emitted event carries the questions so callers can prompt the user.
func (o *ResearchOrchestrator) advanceQuestions(r *run, questions []domain.ClarifyingQuestion) {
	r.mu.Lock()
	r.state.Stage = domain.StageQuestionsReady
	r.state.Questions = append([]domain.ClarifyingQuestion(nil), questions...)
	r.mu.Unlock()

	r.stream.emit(domain.ProgressEvent{
		Stage:     domain.StageQuestionsReady,
		Level:     domain.LevelInfo,
		Message:   fmt.Sprintf("Awaiting answers to %d clarifying questions", len(questions)),
		Questions: append([]domain.ClarifyingQuestion(nil), questions...),
	})
}

func (o *ResearchOrchestrator) emit(
	r *run, stage domain.Stage, level domain.EventLevel, message string,
) {
	r.stream.emit(domain.ProgressEvent{Stage: stage, Level: level, Message: message})
}

// settleError terminates the run if err is non-nil. Cancellation
// observed through the context settles as cancelled, everything else
// as a stage failure. Reports whether the run terminated.
func (o *ResearchOrchestrator) settleError(
	ctx context.Context, r *run, stage domain.Stage, err error,
) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil {
		o.settleCancelled(r)
		return true
	}

	stageErr := &domain.StageError{Stage: stage, Err: err}
	logger.Warn("Run %s failed: %v", r.state.RunID, stageErr)

	r.mu.Lock()
	r.state.Stage = domain.StageFailed
	r.state.FailedStage = stage
	r.state.FailureCause = err.Error()
	r.mu.Unlock()

	o.emit(r, domain.StageFailed, domain.LevelWarn, stageErr.Error())
	r.stream.close()
	return true
}

func (o *ResearchOrchestrator) settleCancelled(r *run) {
	logger.Info("Run %s cancelled", r.state.RunID)

	r.mu.Lock()
	r.state.Stage = domain.StageCancelled
	r.state.FailureCause = domain.ErrRunCancelled.Error()
	r.mu.Unlock()

	o.emit(r, domain.StageCancelled, domain.LevelInfo, "Run cancelled")
	r.stream.close()
}

func (o *ResearchOrchestrator) settleDone(r *run) {
	r.mu.Lock()
	r.state.Stage = domain.StageDone
	r.mu.Unlock()

	logger.Info("Run %s done", r.state.RunID)
	o.emit(r, domain.StageDone, domain.LevelInfo, "Research complete")
	r.stream.close()
}
