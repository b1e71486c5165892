package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// mockResearchService is a scripted implementation of
// driving.ResearchService. Start emits progress events up to the
// clarification suspension; SupplyAnswers emits the remainder and
// closes the stream.
type mockResearchService struct {
	startErr  error
	supplyErr error
	cancelErr error
	stateErr  error

	// questions are attached to the suspension event. Empty means
	// Start closes the stream without suspending (early failure).
	questions []domain.ClarifyingQuestion

	// state is returned by CurrentState.
	state domain.RunState

	events chan domain.ProgressEvent

	startedTopic string
	startedOpts  driving.RunOptions
	supplied     []domain.Answer
	cancelled    []string
}

func (m *mockResearchService) Start(
	_ context.Context,
	rawQuery string,
	opts driving.RunOptions,
) (*driving.RunHandle, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.startedTopic = rawQuery
	m.startedOpts = opts

	m.events = make(chan domain.ProgressEvent, 16)
	if len(m.questions) == 0 {
		close(m.events)
	} else {
		m.events <- domain.ProgressEvent{
			Index:   0,
			Stage:   domain.StageOptimized,
			Message: "Query optimized",
		}
		m.events <- domain.ProgressEvent{
			Index:     1,
			Stage:     domain.StageQuestionsReady,
			Message:   "Awaiting answers",
			Questions: m.questions,
		}
	}

	return &driving.RunHandle{ID: m.state.RunID, Events: m.events}, nil
}

func (m *mockResearchService) SupplyAnswers(_ string, answers []domain.Answer) error {
	if m.supplyErr != nil {
		return m.supplyErr
	}
	m.supplied = answers
	m.events <- domain.ProgressEvent{
		Index:   2,
		Stage:   domain.StageDone,
		Message: "Research complete",
	}
	close(m.events)
	return nil
}

func (m *mockResearchService) Cancel(runID string) error {
	m.cancelled = append(m.cancelled, runID)
	return m.cancelErr
}

func (m *mockResearchService) CurrentState(runID string) (domain.RunState, error) {
	if m.stateErr != nil {
		return domain.RunState{}, m.stateErr
	}
	if runID != m.state.RunID {
		return domain.RunState{}, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
	}
	return m.state, nil
}

// mockReportStore is an in-memory implementation of driven.ReportStore.
type mockReportStore struct {
	reports []domain.Report
	getErr  error
	listErr error
}

func (m *mockReportStore) Save(_ context.Context, report domain.Report) error {
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockReportStore) Get(_ context.Context, id string) (*domain.Report, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.reports {
		if m.reports[i].ID == id {
			return &m.reports[i], nil
		}
	}
	return nil, fmt.Errorf("%w: report %s", domain.ErrNotFound, id)
}

func (m *mockReportStore) List(_ context.Context) ([]domain.Report, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.reports, nil
}

func (m *mockReportStore) Delete(_ context.Context, id string) error {
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: report %s", domain.ErrNotFound, id)
}

func (m *mockReportStore) Close() error { return nil }
