// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewResearch is the research run view.
	ViewResearch
	// ViewReports is the archived reports list.
	ViewReports
	// ViewReportContent shows a single archived report.
	ViewReportContent
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewResearch:
		return "research"
	case ViewReports:
		return "reports"
	case ViewReportContent:
		return "report_content"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// RunStarted carries the handle of a freshly started research run.
type RunStarted struct {
	Handle *driving.RunHandle
	Err    error
}

// RunProgress carries one progress event from a run's event stream.
type RunProgress struct {
	RunID string
	Event domain.ProgressEvent
}

// RunFinished signals that a run's event stream has closed. State is
// the run's terminal snapshot.
type RunFinished struct {
	RunID string
	State domain.RunState
	Err   error
}

// AnswersSubmitted signals the result of resuming a suspended run.
type AnswersSubmitted struct {
	RunID string
	Err   error
}

// RunCancelled signals the result of a cancellation request.
type RunCancelled struct {
	RunID string
	Err   error
}

// ReportsLoaded carries the archived reports from the store.
type ReportsLoaded struct {
	Reports []domain.Report
	Err     error
}

// ReportSelected signals a report was selected for display.
type ReportSelected struct {
	Report domain.Report
}

// ReportDeleted signals a report was removed from the archive.
type ReportDeleted struct {
	ID  string
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
