package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

type mockResearchService struct {
	startErr  error
	supplyErr error
	state     domain.RunState

	events       chan domain.ProgressEvent
	startedTopic string
	startedOpts  driving.RunOptions
	supplied     []domain.Answer
	cancelled    []string
}

func (m *mockResearchService) Start(_ context.Context, rawQuery string, opts driving.RunOptions) (*driving.RunHandle, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.startedTopic = rawQuery
	m.startedOpts = opts
	m.events = make(chan domain.ProgressEvent, 16)

	m.events <- domain.ProgressEvent{
		Index: 0, Stage: domain.StageOptimized,
		Level: domain.LevelInfo, Message: "query optimized", Timestamp: time.Now(),
	}
	m.events <- domain.ProgressEvent{
		Index: 1, Stage: domain.StageQuestionsReady,
		Level: domain.LevelInfo, Message: "clarifying questions ready",
		Questions: []domain.ClarifyingQuestion{
			{ID: "q1", Text: "What time period matters?"},
			{ID: "q2", Text: "Which region?"},
		},
		Timestamp: time.Now(),
	}

	return &driving.RunHandle{ID: "run-1", Events: m.events}, nil
}

func (m *mockResearchService) SupplyAnswers(_ string, answers []domain.Answer) error {
	if m.supplyErr != nil {
		return m.supplyErr
	}
	m.supplied = answers

	m.events <- domain.ProgressEvent{
		Index: 2, Stage: domain.StageSearched,
		Level: domain.LevelWarn, Message: "1 of 3 searches failed", Timestamp: time.Now(),
	}
	m.events <- domain.ProgressEvent{
		Index: 3, Stage: domain.StageDone,
		Level: domain.LevelInfo, Message: "research complete", Timestamp: time.Now(),
	}
	close(m.events)
	return nil
}

func (m *mockResearchService) Cancel(runID string) error {
	m.cancelled = append(m.cancelled, runID)
	return nil
}

func (m *mockResearchService) CurrentState(_ string) (domain.RunState, error) {
	return m.state, nil
}

func doneState() domain.RunState {
	return domain.RunState{
		RunID: "run-1",
		Stage: domain.StageDone,
		Report: &domain.Report{
			ID:        "rep-1",
			Query:     "quantum computing",
			Body:      "# Findings\n\nQubits are promising.",
			CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		Results: domain.SearchResultSet{
			Outcomes: []domain.SearchOutcome{
				{Succeeded: true},
				{Succeeded: true},
				{Succeeded: false, Failure: "timeout"},
			},
		},
	}
}

func executeResearch(t *testing.T, svc *mockResearchService, stdin string, args ...string) (string, string, error) {
	t.Helper()

	oldService := researchService
	researchService = svc
	defer func() { researchService = oldService }()

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"research"}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		researchQuestions = 0
		researchSearches = 0
		researchDeliver = false
		researchJSON = false
	}()

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestResearchCmd_FullRun(t *testing.T) {
	svc := &mockResearchService{state: doneState()}

	out, errOut, err := executeResearch(t, svc, "last decade\nEurope\n", "quantum computing")

	require.NoError(t, err)
	assert.Equal(t, "quantum computing", svc.startedTopic)

	// Answers collected from stdin in question order
	require.Len(t, svc.supplied, 2)
	assert.Equal(t, "q1", svc.supplied[0].QuestionID)
	assert.Equal(t, "last decade", svc.supplied[0].Text)
	assert.Equal(t, "Europe", svc.supplied[1].Text)

	// Report body on stdout, progress on stderr
	assert.Contains(t, out, "Qubits are promising.")
	assert.Contains(t, out, "What time period matters?")
	assert.Contains(t, errOut, "query optimized")
	assert.Contains(t, errOut, "1 of 3 searches failed")
	assert.Contains(t, errOut, "1 of 3 searches failed; the report covers the remainder")
}

func TestResearchCmd_OptionsPassthrough(t *testing.T) {
	svc := &mockResearchService{state: doneState()}

	_, _, err := executeResearch(t, svc, "\n\n", "topic",
		"--questions", "2", "--searches", "7", "--deliver")

	require.NoError(t, err)
	assert.Equal(t, 2, svc.startedOpts.QuestionCount)
	assert.Equal(t, 7, svc.startedOpts.SearchCount)
	assert.True(t, svc.startedOpts.Deliver)
}

func TestResearchCmd_JSONOutput(t *testing.T) {
	svc := &mockResearchService{state: doneState()}

	out, _, err := executeResearch(t, svc, "\n\n", "topic", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "rep-1"`)
	assert.Contains(t, out, `"search_count": 3`)
	assert.Contains(t, out, `"failed_count": 1`)
}

func TestResearchCmd_StartFailure(t *testing.T) {
	svc := &mockResearchService{startErr: assert.AnError}

	_, _, err := executeResearch(t, svc, "", "topic")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting research")
}

func TestResearchCmd_RunFailure(t *testing.T) {
	svc := &mockResearchService{
		supplyErr: nil,
		state: domain.RunState{
			RunID:        "run-1",
			Stage:        domain.StageFailed,
			FailedStage:  domain.StagePlanned,
			FailureCause: "provider unreachable",
		},
	}

	_, _, err := executeResearch(t, svc, "\n\n", "topic")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "planned")
	assert.Contains(t, err.Error(), "provider unreachable")
}

func TestResearchCmd_NoService(t *testing.T) {
	oldService := researchService
	researchService = nil
	defer func() { researchService = oldService }()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"research", "topic"})
	defer func() { rootCmd.SetArgs(nil) }()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
