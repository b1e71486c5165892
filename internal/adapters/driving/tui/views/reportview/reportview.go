// Package reportview provides the saved report content view for the TUI.
package reportview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

// View displays the body of a saved report with scrolling.
type View struct {
	styles *styles.Styles

	report       *domain.Report
	lines        []string
	scrollOffset int

	width  int
	height int
	ready  bool
}

// NewView creates a new report content view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// SetReport sets the report to display.
func (v *View) SetReport(report domain.Report) {
	v.report = &report
	v.scrollOffset = 0
	v.wrapBody()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the report content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ReportSelected:
		v.SetReport(msg.Report)
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset -= v.visibleLines()
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	case "pgdown", "ctrl+d":
		v.scrollOffset += v.visibleLines()
		if v.scrollOffset > v.maxScrollOffset() {
			v.scrollOffset = v.maxScrollOffset()
		}
	case "g", "home":
		v.scrollOffset = 0
	case "G", "end":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewReports}
		}
	}

	return v, nil
}

// wrapBody wraps the report body to the view width.
func (v *View) wrapBody() {
	if v.report == nil {
		v.lines = nil
		return
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	rawLines := strings.Split(v.report.Body, "\n")
	v.lines = make([]string, 0, len(rawLines))

	for _, line := range rawLines {
		if len(line) <= contentWidth {
			v.lines = append(v.lines, line)
			continue
		}
		for len(line) > contentWidth {
			v.lines = append(v.lines, line[:contentWidth])
			line = line[contentWidth:]
		}
		if line != "" {
			v.lines = append(v.lines, line)
		}
	}
}

// visibleLines returns the number of content lines that fit on screen.
func (v *View) visibleLines() int {
	reserved := 7
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	maxOffset := len(v.lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// View renders the report content view.
func (v *View) View() string {
	var b strings.Builder

	if v.report == nil {
		b.WriteString(v.styles.Title.Render("Report"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("No report selected."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.styles.Title.Render(v.report.Query))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.report.CreatedAt.Format("2006-01-02 15:04")))
	b.WriteString("\n\n")

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		percentage := 100
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %d%% [%d-%d of %d]",
			percentage,
			v.scrollOffset+1,
			minInt(v.scrollOffset+visible, len(v.lines)),
			len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrapBody()
}

// Report returns the displayed report.
func (v *View) Report() *domain.Report {
	return v.report
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
