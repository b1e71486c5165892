// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

// ReportList displays archived reports in a navigable list.
type ReportList struct {
	reports  []domain.Report
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewReportList creates a new report list component.
func NewReportList(s *styles.Styles) *ReportList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ReportList{
		reports:  nil,
		selected: 0,
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Init initialises the report list.
func (r *ReportList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ReportList) Update(msg tea.Msg) (*ReportList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			r.MoveUp()
		case tea.KeyDown:
			r.MoveDown()
		default:
			// Handle other keys
		}
		switch msg.String() {
		case "k":
			r.MoveUp()
		case "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the report list.
func (r *ReportList) View() string {
	if len(r.reports) == 0 {
		return r.styles.Muted.Render("No archived reports")
	}

	lines := make([]string, 0, len(r.reports)*2+2)

	// Header
	header := r.styles.Subtitle.Render(fmt.Sprintf("Reports (%d)", len(r.reports)))
	lines = append(lines, header, "")

	// Each report takes 2 lines (query + date line)
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.reports) {
		end = len(r.reports)
	}

	for i := start; i < end; i++ {
		line := r.renderReport(i, &r.reports[i])
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// renderReport formats a single report entry.
func (r *ReportList) renderReport(index int, report *domain.Report) string {
	// Indicator for selected item
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	query := report.Query
	if query == "" {
		query = "(untitled)"
	}

	// Truncate query if too long
	maxQueryLen := r.width - 8
	if maxQueryLen < 10 {
		maxQueryLen = 10
	}
	if len(query) > maxQueryLen {
		query = query[:maxQueryLen-3] + "..."
	}

	var queryLine string
	if index == r.selected {
		queryLine = r.styles.Selected.Render(indicator + query)
	} else {
		queryLine = r.styles.Normal.Render(indicator + query)
	}

	dateLine := r.styles.Muted.Render("    " + report.CreatedAt.Format("2006-01-02 15:04"))

	return queryLine + "\n" + dateLine
}

// SetReports updates the report list.
func (r *ReportList) SetReports(reports []domain.Report) {
	r.reports = reports
	if r.selected >= len(reports) {
		r.selected = 0
	}
}

// Reports returns the current reports.
func (r *ReportList) Reports() []domain.Report {
	return r.reports
}

// Selected returns the index of the selected report.
func (r *ReportList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ReportList) SetSelected(index int) {
	if index >= 0 && index < len(r.reports) {
		r.selected = index
	}
}

// SelectedReport returns the currently selected report, or nil if none.
func (r *ReportList) SelectedReport() *domain.Report {
	if len(r.reports) == 0 || r.selected < 0 || r.selected >= len(r.reports) {
		return nil
	}
	return &r.reports[r.selected]
}

// MoveUp moves selection up.
func (r *ReportList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ReportList) MoveDown() {
	if r.selected < len(r.reports)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ReportList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ReportList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ReportList) Height() int {
	return r.height
}

// Count returns the number of reports.
func (r *ReportList) Count() int {
	return len(r.reports)
}

// IsEmpty returns whether the list is empty.
func (r *ReportList) IsEmpty() bool {
	return len(r.reports) == 0
}
