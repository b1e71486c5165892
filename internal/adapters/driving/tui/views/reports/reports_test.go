package reports

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/descry-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

type mockReportStore struct {
	reports   []domain.Report
	listErr   error
	deleteErr error
	deleted   []string
}

func (m *mockReportStore) Save(_ context.Context, _ domain.Report) error {
	return nil
}

func (m *mockReportStore) Get(_ context.Context, id string) (*domain.Report, error) {
	for i := range m.reports {
		if m.reports[i].ID == id {
			return &m.reports[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockReportStore) List(_ context.Context) ([]domain.Report, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.reports, nil
}

func (m *mockReportStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockReportStore) Close() error {
	return nil
}

func sampleReports() []domain.Report {
	return []domain.Report{
		{ID: "rep-1", Query: "quantum computing", Body: "body 1", CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "rep-2", Query: "fusion power", Body: "body 2", CreatedAt: time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)},
	}
}

func loadedView(t *testing.T, store *mockReportStore) *View {
	t.Helper()
	var view *View
	if store == nil {
		view = NewView(nil, nil)
	} else {
		view = NewView(nil, store)
	}
	view.SetDimensions(80, 24)

	cmd := view.Init()
	require.NotNil(t, cmd)
	view, _ = view.Update(cmd())
	return view
}

func TestView_Init_LoadsReports(t *testing.T) {
	t.Run("lists saved reports", func(t *testing.T) {
		view := loadedView(t, &mockReportStore{reports: sampleReports()})

		assert.Len(t, view.Reports(), 2)
		assert.NoError(t, view.Err())
		assert.Contains(t, view.View(), "quantum computing")
	})

	t.Run("list failure is surfaced", func(t *testing.T) {
		view := loadedView(t, &mockReportStore{listErr: assert.AnError})

		assert.Error(t, view.Err())
		assert.Contains(t, view.View(), "Error:")
	})

	t.Run("nil store reports an error", func(t *testing.T) {
		view := loadedView(t, nil)

		assert.Error(t, view.Err())
	})
}

func TestView_Navigation(t *testing.T) {
	view := loadedView(t, &mockReportStore{reports: sampleReports()})

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.NotNil(t, view.SelectedReport())
	assert.Equal(t, "rep-2", view.SelectedReport().ID)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "rep-1", view.SelectedReport().ID)
}

func TestView_SelectReport(t *testing.T) {
	view := loadedView(t, &mockReportStore{reports: sampleReports()})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	selected, ok := msg.(messages.ReportSelected)
	require.True(t, ok)
	assert.Equal(t, "rep-1", selected.Report.ID)
}

func TestView_DeleteReport(t *testing.T) {
	t.Run("delete reloads the list", func(t *testing.T) {
		store := &mockReportStore{reports: sampleReports()}
		view := loadedView(t, store)

		view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
		require.NotNil(t, cmd)

		view, reload := view.Update(cmd())
		assert.Equal(t, []string{"rep-1"}, store.deleted)
		require.NotNil(t, reload)

		store.reports = store.reports[1:]
		view, _ = view.Update(reload())
		assert.Len(t, view.Reports(), 1)
	})

	t.Run("delete failure is surfaced", func(t *testing.T) {
		store := &mockReportStore{reports: sampleReports(), deleteErr: assert.AnError}
		view := loadedView(t, store)

		view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
		require.NotNil(t, cmd)

		view, _ = view.Update(cmd())
		assert.Error(t, view.Err())
	})
}

func TestView_EscReturnsToMenu(t *testing.T) {
	view := loadedView(t, &mockReportStore{reports: sampleReports()})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	msg := cmd()
	changed, ok := msg.(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_NewResearchShortcut(t *testing.T) {
	view := loadedView(t, &mockReportStore{reports: sampleReports()})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	require.NotNil(t, cmd)

	msg := cmd()
	changed, ok := msg.(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewResearch, changed.View)
}
