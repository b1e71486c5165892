package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// TestViewType_String tests all ViewType string representations
func TestViewType_String(t *testing.T) {
	tests := []struct {
		name     string
		view     ViewType
		expected string
	}{
		{"ViewMenu", ViewMenu, "menu"},
		{"ViewResearch", ViewResearch, "research"},
		{"ViewReports", ViewReports, "reports"},
		{"ViewReportContent", ViewReportContent, "report_content"},
		{"ViewHelp", ViewHelp, "help"},
		{"UnknownView", ViewType(99), "unknown"},
		{"NegativeView", ViewType(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

// TestViewChanged tests the ViewChanged message type
func TestViewChanged(t *testing.T) {
	t.Run("to research view", func(t *testing.T) {
		msg := ViewChanged{View: ViewResearch}
		assert.Equal(t, ViewResearch, msg.View)
	})

	t.Run("to reports view", func(t *testing.T) {
		msg := ViewChanged{View: ViewReports}
		assert.Equal(t, ViewReports, msg.View)
	})

	t.Run("to help view", func(t *testing.T) {
		msg := ViewChanged{View: ViewHelp}
		assert.Equal(t, ViewHelp, msg.View)
	})
}

// TestRunStarted tests the RunStarted message type
func TestRunStarted(t *testing.T) {
	t.Run("with handle", func(t *testing.T) {
		handle := &driving.RunHandle{ID: "run-1"}
		msg := RunStarted{Handle: handle}

		require.NotNil(t, msg.Handle)
		assert.Equal(t, "run-1", msg.Handle.ID)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		err := errors.New("start failed")
		msg := RunStarted{Handle: nil, Err: err}

		assert.Nil(t, msg.Handle)
		assert.Error(t, msg.Err)
	})
}

// TestRunProgress tests the RunProgress message type
func TestRunProgress(t *testing.T) {
	event := domain.ProgressEvent{
		Index:   3,
		Stage:   domain.StagePlanned,
		Message: "Search plan ready",
	}
	msg := RunProgress{RunID: "run-1", Event: event}

	assert.Equal(t, "run-1", msg.RunID)
	assert.Equal(t, 3, msg.Event.Index)
	assert.Equal(t, domain.StagePlanned, msg.Event.Stage)
}

// TestRunFinished tests the RunFinished message type
func TestRunFinished(t *testing.T) {
	t.Run("successful run", func(t *testing.T) {
		state := domain.RunState{
			RunID:  "run-1",
			Stage:  domain.StageDone,
			Report: &domain.Report{ID: "rep-1", Body: "# Findings"},
		}
		msg := RunFinished{RunID: "run-1", State: state}

		assert.Equal(t, domain.StageDone, msg.State.Stage)
		require.NotNil(t, msg.State.Report)
		assert.NoError(t, msg.Err)
	})

	t.Run("failed run", func(t *testing.T) {
		state := domain.RunState{
			RunID:        "run-2",
			Stage:        domain.StageFailed,
			FailedStage:  domain.StageOptimized,
			FailureCause: "provider unreachable",
		}
		msg := RunFinished{RunID: "run-2", State: state}

		assert.Equal(t, domain.StageFailed, msg.State.Stage)
		assert.Equal(t, "provider unreachable", msg.State.FailureCause)
	})
}

// TestAnswersSubmitted tests the AnswersSubmitted message type
func TestAnswersSubmitted(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		msg := AnswersSubmitted{RunID: "run-1"}
		assert.NoError(t, msg.Err)
	})

	t.Run("rejected", func(t *testing.T) {
		msg := AnswersSubmitted{RunID: "run-1", Err: domain.ErrAnswerMismatch}
		assert.ErrorIs(t, msg.Err, domain.ErrAnswerMismatch)
	})
}

// TestRunCancelled tests the RunCancelled message type
func TestRunCancelled(t *testing.T) {
	t.Run("successful cancel", func(t *testing.T) {
		msg := RunCancelled{RunID: "run-1"}
		assert.Equal(t, "run-1", msg.RunID)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := RunCancelled{RunID: "run-1", Err: domain.ErrRunNotFound}
		assert.ErrorIs(t, msg.Err, domain.ErrRunNotFound)
	})
}

// TestReportsLoaded tests the ReportsLoaded message type
func TestReportsLoaded(t *testing.T) {
	t.Run("with reports", func(t *testing.T) {
		reports := []domain.Report{
			{ID: "rep-1", Query: "quantum batteries"},
			{ID: "rep-2", Query: "solar sails"},
		}
		msg := ReportsLoaded{Reports: reports}

		require.Len(t, msg.Reports, 2)
		assert.Equal(t, "rep-1", msg.Reports[0].ID)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		err := errors.New("archive unavailable")
		msg := ReportsLoaded{Reports: nil, Err: err}

		assert.Nil(t, msg.Reports)
		assert.Error(t, msg.Err)
	})

	t.Run("with empty list", func(t *testing.T) {
		msg := ReportsLoaded{Reports: []domain.Report{}}
		assert.NotNil(t, msg.Reports)
		assert.Empty(t, msg.Reports)
	})
}

// TestReportSelected tests the ReportSelected message type
func TestReportSelected(t *testing.T) {
	report := domain.Report{ID: "rep-1", Query: "quantum batteries", Body: "# Findings"}
	msg := ReportSelected{Report: report}

	assert.Equal(t, "rep-1", msg.Report.ID)
	assert.Equal(t, "quantum batteries", msg.Report.Query)
}

// TestReportDeleted tests the ReportDeleted message type
func TestReportDeleted(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		msg := ReportDeleted{ID: "rep-1"}
		assert.Equal(t, "rep-1", msg.ID)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := ReportDeleted{ID: "rep-2", Err: domain.ErrNotFound}
		assert.ErrorIs(t, msg.Err, domain.ErrNotFound)
	})
}

// TestErrorOccurred tests the ErrorOccurred message type
func TestErrorOccurred(t *testing.T) {
	t.Run("with standard error", func(t *testing.T) {
		err := errors.New("something went wrong")
		msg := ErrorOccurred{Err: err}

		assert.Error(t, msg.Err)
		assert.Equal(t, "something went wrong", msg.Err.Error())
	})

	t.Run("with nil error", func(t *testing.T) {
		msg := ErrorOccurred{Err: nil}
		assert.Nil(t, msg.Err)
	})
}

// TestQuit tests the Quit message type
func TestQuit(t *testing.T) {
	msg := Quit{}
	// Quit is an empty struct, just verify it can be created
	assert.NotNil(t, msg)
}
