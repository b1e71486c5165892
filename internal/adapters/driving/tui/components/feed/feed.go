// Package feed provides the progress event feed component for the TUI.
package feed

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

// EventFeed renders a run's progress events as a scrolling log. It
// keeps the full history but only shows the most recent lines that fit.
type EventFeed struct {
	events []domain.ProgressEvent
	styles *styles.Styles
	width  int
	height int
}

// NewEventFeed creates a new event feed component.
func NewEventFeed(s *styles.Styles) *EventFeed {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &EventFeed{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Append adds an event to the feed.
func (f *EventFeed) Append(event domain.ProgressEvent) {
	f.events = append(f.events, event)
}

// Events returns all recorded events.
func (f *EventFeed) Events() []domain.ProgressEvent {
	return f.events
}

// Count returns the number of recorded events.
func (f *EventFeed) Count() int {
	return len(f.events)
}

// Clear drops all recorded events.
func (f *EventFeed) Clear() {
	f.events = nil
}

// View renders the most recent events that fit the feed height.
func (f *EventFeed) View() string {
	if len(f.events) == 0 {
		return f.styles.Muted.Render("Waiting for progress...")
	}

	visible := f.height
	if visible < 1 {
		visible = 1
	}

	start := 0
	if len(f.events) > visible {
		start = len(f.events) - visible
	}

	lines := make([]string, 0, visible)
	for _, event := range f.events[start:] {
		lines = append(lines, f.renderEvent(event))
	}

	return strings.Join(lines, "\n")
}

// renderEvent formats a single progress event line.
func (f *EventFeed) renderEvent(event domain.ProgressEvent) string {
	timestamp := event.Timestamp.Format("15:04:05")
	line := fmt.Sprintf("%s  %s", timestamp, f.truncate(event.Message))

	if event.Level == domain.LevelWarn {
		return f.styles.Warning.Render(line)
	}
	if event.Stage.Terminal() {
		return f.styles.Success.Render(line)
	}
	return f.styles.Normal.Render(line)
}

// truncate fits a message to the feed width.
func (f *EventFeed) truncate(message string) string {
	maxLen := f.width - 12
	if maxLen < 20 {
		maxLen = 20
	}
	if len(message) > maxLen {
		return message[:maxLen-3] + "..."
	}
	return message
}

// SetDimensions sets the component dimensions.
func (f *EventFeed) SetDimensions(width, height int) {
	f.width = width
	f.height = height
}

// Width returns the current width.
func (f *EventFeed) Width() int {
	return f.width
}

// Height returns the current height.
func (f *EventFeed) Height() int {
	return f.height
}
