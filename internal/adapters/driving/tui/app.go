package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/views/reports"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/views/reportview"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/views/research"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// menuView is the main navigation menu.
	menuView *menu.View

	// researchView runs the interactive research flow.
	researchView *research.View

	// reportsView lists the saved reports.
	reportsView *reports.View

	// reportContentView displays a saved report body.
	reportContentView *reportview.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:             ports,
		ctx:               context.Background(),
		styles:            s,
		menuView:          menu.NewView(s),
		researchView:      research.NewView(s, nil, ports.Research),
		reportsView:       reports.NewView(s, ports.Reports),
		reportContentView: reportview.NewView(s),
		currentView:       messages.ViewMenu, // Start with menu
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.researchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("descry - Deep Research"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Forward to all views for proper sizing
		a.menuView.SetDimensions(msg.Width, msg.Height)
		a.researchView.SetDimensions(msg.Width, msg.Height)
		a.reportsView.SetDimensions(msg.Width, msg.Height)
		a.reportContentView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Forward key messages to active view
		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
			return a, cmd

		case messages.ViewResearch:
			a.researchView, cmd = a.researchView.Update(msg)
			a.err = a.researchView.Err()
			return a, cmd

		case messages.ViewReports:
			a.reportsView, cmd = a.reportsView.Update(msg)
			return a, cmd

		case messages.ViewReportContent:
			a.reportContentView, cmd = a.reportContentView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			// Esc from help goes to menu
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
				return a, nil
			}
			return a, nil
		}
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		// Initialise views when switching to them
		switch msg.View {
		case messages.ViewResearch:
			a.researchView.Reset()
			return a, a.researchView.Init()
		case messages.ViewReports:
			return a, a.reportsView.Init()
		case messages.ViewMenu, messages.ViewReportContent, messages.ViewHelp:
			// Other views don't need special initialisation
		}
		return a, nil

	case messages.RunStarted, messages.RunProgress, messages.RunFinished,
		messages.AnswersSubmitted, messages.RunCancelled:
		// Run lifecycle messages always belong to the research view, even
		// when the user has navigated away while the run keeps going.
		a.researchView, cmd = a.researchView.Update(msg)
		a.err = a.researchView.Err()
		return a, cmd

	case messages.ReportsLoaded, messages.ReportDeleted:
		a.reportsView, cmd = a.reportsView.Update(msg)
		return a, cmd

	case messages.ReportSelected:
		a.reportContentView.SetReport(msg.Report)
		a.currentView = messages.ViewReportContent
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		// Forward to current view
		switch a.currentView {
		case messages.ViewResearch:
			a.researchView, cmd = a.researchView.Update(msg)
		case messages.ViewReports:
			a.reportsView, cmd = a.reportsView.Update(msg)
		case messages.ViewMenu, messages.ViewReportContent, messages.ViewHelp:
			// Other views don't handle error messages
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewResearch:
		a.researchView, cmd = a.researchView.Update(msg)
	case messages.ViewReports:
		a.reportsView, cmd = a.reportsView.Update(msg)
	case messages.ViewReportContent:
		a.reportContentView, cmd = a.reportContentView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewResearch:
		return a.researchView.View()
	case messages.ViewReports:
		return a.reportsView.View()
	case messages.ViewReportContent:
		return a.reportContentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Research:
  (type)      Enter a research topic
  enter       Start research / submit an answer
  ctrl+x      Cancel the running research
  esc         Back to Menu

Reports:
  j/k, ↑/↓    Navigate reports
  enter       Open report
  x           Delete report
  esc         Back to Menu

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// ResearchPhase returns the research view's flow phase.
func (a *App) ResearchPhase() research.Phase {
	return a.researchView.Phase()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.researchView.SetDimensions(width, height)
	a.reportsView.SetDimensions(width, height)
	a.reportContentView.SetDimensions(width, height)
}
