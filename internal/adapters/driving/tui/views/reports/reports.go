// Package reports provides the saved reports list view for the TUI.
package reports

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

// View is the saved reports list view.
type View struct {
	styles *styles.Styles
	store  driven.ReportStore
	list   *list.ReportList

	width   int
	height  int
	ready   bool
	loading bool
	err     error
}

// NewView creates a new reports view.
func NewView(s *styles.Styles, store driven.ReportStore) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		store:  store,
		list:   list.NewReportList(s),
	}
}

// Init loads the saved reports.
func (v *View) Init() tea.Cmd {
	return v.loadReports()
}

// loadReports returns a command that lists the saved reports.
func (v *View) loadReports() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.store == nil {
			return messages.ReportsLoaded{Err: fmt.Errorf("report store not available")}
		}

		reports, err := v.store.List(context.Background())
		return messages.ReportsLoaded{Reports: reports, Err: err}
	}
}

// deleteReport returns a command that deletes a saved report.
func (v *View) deleteReport(id string) tea.Cmd {
	return func() tea.Msg {
		if v.store == nil {
			return messages.ReportDeleted{ID: id, Err: fmt.Errorf("report store not available")}
		}

		err := v.store.Delete(context.Background(), id)
		return messages.ReportDeleted{ID: id, Err: err}
	}
}

// Update handles messages for the reports view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ReportsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.list.SetReports(msg.Reports)
			v.err = nil
		}
		return v, nil

	case messages.ReportDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadReports()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses on the report list.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	case "enter":
		if report := v.list.SelectedReport(); report != nil {
			selected := *report
			return v, func() tea.Msg {
				return messages.ReportSelected{Report: selected}
			}
		}
	case "x":
		if report := v.list.SelectedReport(); report != nil {
			return v, v.deleteReport(report.ID)
		}
	case "r":
		return v, v.loadReports()
	case "n":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewResearch}
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// View renders the reports view.
func (v *View) View() string {
	var b strings.Builder

	if v.loading {
		b.WriteString(v.styles.Title.Render("Reports"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("Loading reports..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Title.Render("Reports"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.list.View())
	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] open  [x] delete  [r] reload  [n] new research  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-4)
}

// Reports returns the currently listed reports.
func (v *View) Reports() []domain.Report {
	return v.list.Reports()
}

// SelectedReport returns the currently selected report.
func (v *View) SelectedReport() *domain.Report {
	return v.list.SelectedReport()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
