package list

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

func sampleReports(n int) []domain.Report {
	reports := make([]domain.Report, n)
	for i := range reports {
		reports[i] = domain.Report{
			ID:        fmt.Sprintf("rep-%d", i+1),
			Query:     fmt.Sprintf("topic %d", i+1),
			Body:      "# Findings",
			CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		}
	}
	return reports
}

func TestNewReportList(t *testing.T) {
	list := NewReportList(nil)

	require.NotNil(t, list)
	assert.True(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected())
}

func TestReportList_SetReports(t *testing.T) {
	list := NewReportList(nil)

	list.SetReports(sampleReports(3))

	assert.Equal(t, 3, list.Count())
	assert.False(t, list.IsEmpty())
}

func TestReportList_SetReports_ResetsOutOfRangeSelection(t *testing.T) {
	list := NewReportList(nil)
	list.SetReports(sampleReports(5))
	list.SetSelected(4)

	list.SetReports(sampleReports(2))

	assert.Equal(t, 0, list.Selected())
}

func TestReportList_Navigation(t *testing.T) {
	list := NewReportList(nil)
	list.SetReports(sampleReports(3))

	list.MoveDown()
	assert.Equal(t, 1, list.Selected())

	list.MoveDown()
	list.MoveDown() // at end, stays
	assert.Equal(t, 2, list.Selected())

	list.MoveUp()
	assert.Equal(t, 1, list.Selected())

	list.MoveUp()
	list.MoveUp() // at start, stays
	assert.Equal(t, 0, list.Selected())
}

func TestReportList_Update_KeyNavigation(t *testing.T) {
	list := NewReportList(nil)
	list.SetReports(sampleReports(3))

	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, list.Selected())
}

func TestReportList_SelectedReport(t *testing.T) {
	list := NewReportList(nil)

	assert.Nil(t, list.SelectedReport())

	list.SetReports(sampleReports(2))
	list.MoveDown()

	selected := list.SelectedReport()
	require.NotNil(t, selected)
	assert.Equal(t, "rep-2", selected.ID)
}

func TestReportList_View_Empty(t *testing.T) {
	list := NewReportList(nil)

	view := list.View()

	assert.Contains(t, view, "No archived reports")
}

func TestReportList_View_WithReports(t *testing.T) {
	list := NewReportList(nil)
	list.SetDimensions(80, 20)
	list.SetReports(sampleReports(2))

	view := list.View()

	assert.Contains(t, view, "Reports (2)")
	assert.Contains(t, view, "topic 1")
	assert.Contains(t, view, "2026-08-01")
}

func TestReportList_View_TruncatesLongQuery(t *testing.T) {
	list := NewReportList(nil)
	list.SetDimensions(30, 20)
	long := domain.Report{
		ID:        "rep-long",
		Query:     "an exceedingly long research topic that cannot possibly fit",
		CreatedAt: time.Now(),
	}
	list.SetReports([]domain.Report{long})

	view := list.View()

	assert.Contains(t, view, "...")
	assert.NotContains(t, view, "possibly fit")
}

func TestReportList_SetDimensions(t *testing.T) {
	list := NewReportList(nil)

	list.SetDimensions(100, 30)

	assert.Equal(t, 100, list.Width())
	assert.Equal(t, 30, list.Height())
}
