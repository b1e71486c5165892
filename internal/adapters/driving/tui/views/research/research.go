// Package research provides the research run view for the TUI. It walks
// the user through the full pipeline: topic entry, clarifying questions,
// live progress and the finished report.
package research

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/components/feed"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// Phase identifies where the view is within the research flow.
type Phase int

const (
	// PhaseTopic is the initial topic prompt.
	PhaseTopic Phase = iota
	// PhaseQuestions collects answers to the clarifying questions.
	PhaseQuestions
	// PhaseRunning streams progress while the pipeline works.
	PhaseRunning
	// PhaseReport shows the finished report.
	PhaseReport
	// PhaseFailed shows a terminal failure.
	PhaseFailed
)

// View represents the research view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.PromptInput
	feed      *feed.EventFeed
	statusbar *status.Bar

	research driving.ResearchService
	ctx      context.Context

	phase       Phase
	handle      *driving.RunHandle
	questions   []domain.ClarifyingQuestion
	answers     []domain.Answer
	questionIdx int
	state       domain.RunState

	reportLines  []string
	scrollOffset int

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new research view.
func NewView(s *styles.Styles, km *keymap.KeyMap, research driving.ResearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewPromptInput(s, "Topic", "What should I research?"),
		feed:      feed.NewEventFeed(s),
		statusbar: status.NewBar(s, km),
		research:  research,
		ctx:       context.Background(),
		phase:     PhaseTopic,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the research view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RunStarted:
		return v.handleRunStarted(msg)

	case messages.RunProgress:
		return v.handleRunProgress(msg)

	case messages.RunFinished:
		v.handleRunFinished(msg)
		return v, nil

	case messages.AnswersSubmitted:
		return v.handleAnswersSubmitted(msg)

	case messages.RunCancelled:
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	// Forward to input component
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input per phase.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch v.phase {
	case PhaseTopic:
		return v.handleTopicKey(msg)
	case PhaseQuestions:
		return v.handleQuestionKey(msg)
	case PhaseRunning:
		return v.handleRunningKey(msg)
	case PhaseReport, PhaseFailed:
		return v.handleReportKey(msg)
	}
	return v, nil
}

// handleTopicKey handles keys on the topic prompt.
func (v *View) handleTopicKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, backToMenu()
	}

	if msg.Type == tea.KeyEnter {
		topic := strings.TrimSpace(v.input.Value())
		if topic == "" {
			return v, nil
		}
		v.err = nil
		v.feed.Clear()
		v.statusbar.SetState(status.StateRunning)
		v.statusbar.SetStage("")
		v.input.Blur()
		return v, v.startRun(topic)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleQuestionKey handles keys while answering clarifying questions.
func (v *View) handleQuestionKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, tea.Batch(v.cancelRun(), backToMenu())
	}

	if msg.Type == tea.KeyEnter {
		// Empty answers are allowed.
		v.answers = append(v.answers, domain.Answer{
			QuestionID: v.questions[v.questionIdx].ID,
			Text:       strings.TrimSpace(v.input.Value()),
		})
		v.questionIdx++

		if v.questionIdx < len(v.questions) {
			v.prepareQuestionInput()
			return v, nil
		}

		// All questions answered, resume the run.
		v.phase = PhaseRunning
		v.input.Blur()
		v.statusbar.SetState(status.StateRunning)
		return v, v.submitAnswers()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleRunningKey handles keys while the pipeline is working.
func (v *View) handleRunningKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc || msg.String() == "ctrl+x" {
		return v, tea.Batch(v.cancelRun(), backToMenu())
	}
	return v, nil
}

// handleReportKey handles keys on the finished report or failure screen.
func (v *View) handleReportKey(msg tea.KeyMsg) (*View, tea.Cmd) {
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
	case "n":
		v.Reset()
		return v, v.input.Focus()
	case "esc":
		return v, backToMenu()
	}
	return v, nil
}

// startRun begins a research run for the topic.
func (v *View) startRun(topic string) tea.Cmd {
	return func() tea.Msg {
		handle, err := v.research.Start(v.ctx, topic, driving.RunOptions{})
		return messages.RunStarted{Handle: handle, Err: err}
	}
}

// waitForEvent reads the next progress event off the run's stream.
func (v *View) waitForEvent() tea.Cmd {
	handle := v.handle
	return func() tea.Msg {
		event, ok := <-handle.Events
		if !ok {
			state, err := v.research.CurrentState(handle.ID)
			return messages.RunFinished{RunID: handle.ID, State: state, Err: err}
		}
		return messages.RunProgress{RunID: handle.ID, Event: event}
	}
}

// submitAnswers resumes the suspended run with the collected answers.
func (v *View) submitAnswers() tea.Cmd {
	runID := v.handle.ID
	answers := v.answers
	return func() tea.Msg {
		err := v.research.SupplyAnswers(runID, answers)
		return messages.AnswersSubmitted{RunID: runID, Err: err}
	}
}

// cancelRun requests cancellation of the current run.
func (v *View) cancelRun() tea.Cmd {
	if v.handle == nil {
		return nil
	}
	runID := v.handle.ID
	return func() tea.Msg {
		err := v.research.Cancel(runID)
		return messages.RunCancelled{RunID: runID, Err: err}
	}
}

// backToMenu returns a command that navigates to the main menu.
func backToMenu() tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: messages.ViewMenu}
	}
}

// handleRunStarted registers the run handle and starts event streaming.
func (v *View) handleRunStarted(msg messages.RunStarted) (*View, tea.Cmd) {
	if msg.Err != nil {
		v.err = msg.Err
		v.phase = PhaseTopic
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, v.input.Focus()
	}

	v.handle = msg.Handle
	v.phase = PhaseRunning
	return v, v.waitForEvent()
}

// handleRunProgress records one event and keeps listening.
func (v *View) handleRunProgress(msg messages.RunProgress) (*View, tea.Cmd) {
	v.feed.Append(msg.Event)
	v.statusbar.SetStage(msg.Event.Stage.String())

	if msg.Event.Stage == domain.StageQuestionsReady && len(msg.Event.Questions) > 0 {
		v.phase = PhaseQuestions
		v.questions = msg.Event.Questions
		v.answers = nil
		v.questionIdx = 0
		v.statusbar.SetState(status.StateSuspended)
		v.prepareQuestionInput()
		return v, tea.Batch(v.input.Focus(), v.waitForEvent())
	}

	return v, v.waitForEvent()
}

// handleRunFinished records the terminal snapshot.
func (v *View) handleRunFinished(msg messages.RunFinished) {
	v.state = msg.State
	v.handle = nil

	if msg.Err != nil {
		v.err = msg.Err
		v.phase = PhaseFailed
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	if msg.State.Report != nil {
		v.phase = PhaseReport
		v.scrollOffset = 0
		v.wrapReport(msg.State.Report.Body)
		v.statusbar.SetState(status.StateDone)
		return
	}

	v.phase = PhaseFailed
	v.statusbar.SetState(status.StateError)
	switch msg.State.Stage {
	case domain.StageCancelled:
		v.statusbar.SetMessage("Research cancelled")
	default:
		v.statusbar.SetMessage(fmt.Sprintf("%s stage failed: %s",
			msg.State.FailedStage, msg.State.FailureCause))
	}
}

// handleAnswersSubmitted reacts to the run accepting or rejecting answers.
func (v *View) handleAnswersSubmitted(msg messages.AnswersSubmitted) (*View, tea.Cmd) {
	if msg.Err != nil {
		// Rejected answer sets restart the question flow.
		v.err = msg.Err
		v.phase = PhaseQuestions
		v.answers = nil
		v.questionIdx = 0
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.prepareQuestionInput()
		return v, v.input.Focus()
	}

	v.err = nil
	v.statusbar.SetState(status.StateRunning)
	return v, nil
}

// prepareQuestionInput points the input at the current question.
func (v *View) prepareQuestionInput() {
	v.input.Reset()
	v.input.SetLabel(fmt.Sprintf("A%d", v.questionIdx+1))
	v.input.SetPlaceholder("Your answer (enter to skip)")
}

// wrapReport wraps the report body to fit the view width.
func (v *View) wrapReport(body string) {
	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	rawLines := strings.Split(body, "\n")
	v.reportLines = make([]string, 0, len(rawLines))

	for _, line := range rawLines {
		if len(line) <= contentWidth {
			v.reportLines = append(v.reportLines, line)
			continue
		}
		for len(line) > contentWidth {
			v.reportLines = append(v.reportLines, line[:contentWidth])
			line = line[contentWidth:]
		}
		if line != "" {
			v.reportLines = append(v.reportLines, line)
		}
	}
}

// visibleLines returns the number of report lines that fit on screen.
func (v *View) visibleLines() int {
	reserved := 8
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// maxScrollOffset returns the maximum scroll offset for the report.
func (v *View) maxScrollOffset() int {
	maxOffset := len(v.reportLines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// View renders the research view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Descry"))
	b.WriteString("\n\n")

	switch v.phase {
	case PhaseTopic:
		b.WriteString(v.input.View())
		b.WriteString("\n")
		if v.err != nil {
			b.WriteString("\n")
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] start research  [esc] back"))

	case PhaseQuestions:
		b.WriteString(v.renderQuestions())

	case PhaseRunning:
		b.WriteString(v.styles.Subtitle.Render("Progress"))
		b.WriteString("\n\n")
		b.WriteString(v.feed.View())

	case PhaseReport:
		b.WriteString(v.renderReport())

	case PhaseFailed:
		b.WriteString(v.styles.Error.Render("Research did not complete"))
		b.WriteString("\n\n")
		b.WriteString(v.feed.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[n] new research  [esc] back"))
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())

	return b.String()
}

// renderQuestions renders the clarifying question form.
func (v *View) renderQuestions() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render(
		fmt.Sprintf("Clarifying questions (%d/%d)", v.questionIdx+1, len(v.questions))))
	b.WriteString("\n\n")

	// Answered questions so far.
	for i, q := range v.questions {
		if i >= v.questionIdx {
			break
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Q%d: %s", i+1, q.Text)))
		b.WriteString("\n")
		answer := v.answers[i].Text
		if answer == "" {
			answer = "(skipped)"
		}
		b.WriteString(v.styles.Muted.Render("    " + answer))
		b.WriteString("\n")
	}
	if v.questionIdx > 0 {
		b.WriteString("\n")
	}

	// Current question.
	current := v.questions[v.questionIdx]
	b.WriteString(v.styles.Normal.Render(
		fmt.Sprintf("Q%d: %s", v.questionIdx+1, current.Text)))
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] answer  [esc] cancel run"))

	return b.String()
}

// renderReport renders the finished report with scroll state.
func (v *View) renderReport() string {
	var b strings.Builder

	title := "Research Report"
	if v.state.Report != nil && v.state.Report.Query != "" {
		title = v.state.Report.Query
	}
	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n")

	failures := v.state.Results.FailureCount()
	summary := fmt.Sprintf("%d searches, %d failed", len(v.state.Results.Outcomes), failures)
	if failures > 0 {
		b.WriteString(v.styles.Warning.Render(summary))
	} else {
		b.WriteString(v.styles.Muted.Render(summary))
	}
	b.WriteString("\n\n")

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.reportLines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.styles.Normal.Render(v.reportLines[i]))
		b.WriteString("\n")
	}

	if len(v.reportLines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
			v.scrollOffset+1,
			minInt(v.scrollOffset+visible, len(v.reportLines)),
			len(v.reportLines))))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [n] new research  [esc] back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.feed.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
	if v.state.Report != nil {
		v.wrapReport(v.state.Report.Body)
	}
}

// Reset returns the view to the topic prompt.
func (v *View) Reset() {
	v.phase = PhaseTopic
	v.handle = nil
	v.questions = nil
	v.answers = nil
	v.questionIdx = 0
	v.state = domain.RunState{}
	v.reportLines = nil
	v.scrollOffset = 0
	v.err = nil
	v.feed.Clear()
	v.input.Reset()
	v.input.SetLabel("Topic")
	v.input.SetPlaceholder("What should I research?")
	v.input.Focus()
	v.statusbar.Clear()
}

// Phase returns the current flow phase.
func (v *View) Phase() Phase {
	return v.phase
}

// Questions returns the pending clarifying questions.
func (v *View) Questions() []domain.ClarifyingQuestion {
	return v.questions
}

// Answers returns the answers collected so far.
func (v *View) Answers() []domain.Answer {
	return v.answers
}

// State returns the run's terminal snapshot.
func (v *View) State() domain.RunState {
	return v.state
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
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
