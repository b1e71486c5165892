package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockCompletionService implements driven.CompletionService. Responses
// are scripted per shape name; unscripted shapes fail the call.
type mockCompletionService struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func newMockCompletion() *mockCompletionService {
	return &mockCompletionService{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

// script registers the JSON returned for the given shape name.
func (m *mockCompletionService) script(shape, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[shape] = response
}

// fail makes calls for the given shape return err.
func (m *mockCompletionService) fail(shape string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[shape] = err
}

func (m *mockCompletionService) Invoke(
	ctx context.Context, _, _ string, shape driven.ShapeDescriptor,
) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, shape.Name)
	if err := m.errs[shape.Name]; err != nil {
		return nil, err
	}
	resp, ok := m.responses[shape.Name]
	if !ok {
		return nil, fmt.Errorf("%w: no scripted response for shape %s", domain.ErrProvider, shape.Name)
	}
	return json.RawMessage(resp), nil
}

func (m *mockCompletionService) callCount(shape string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c == shape {
			n++
		}
	}
	return n
}

func (m *mockCompletionService) ModelName() string { return "mock-model" }

func (m *mockCompletionService) Ping(_ context.Context) error { return nil }

func (m *mockCompletionService) Close() error { return nil }

// mockSearchProvider implements driven.SearchProvider. Results are
// scripted per term; terms listed in failTerms error, panicTerms panic.
type mockSearchProvider struct {
	mu         sync.Mutex
	results    map[string]string
	failTerms  map[string]error
	panicTerms map[string]bool
	searched   []string
}

func newMockSearch() *mockSearchProvider {
	return &mockSearchProvider{
		results:    make(map[string]string),
		failTerms:  make(map[string]error),
		panicTerms: make(map[string]bool),
	}
}

func (m *mockSearchProvider) Search(ctx context.Context, term string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	m.mu.Lock()
	m.searched = append(m.searched, term)
	panicking := m.panicTerms[term]
	err := m.failTerms[term]
	result, ok := m.results[term]
	m.mu.Unlock()

	if panicking {
		panic("mock search panic: " + term)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "results for " + term, nil
	}
	return result, nil
}

func (m *mockSearchProvider) Name() string { return "mock-search" }

// mockNotifier implements driven.Notifier.
type mockNotifier struct {
	mu         sync.Mutex
	deliverErr error
	delivered  []string
}

func (m *mockNotifier) Deliver(_ context.Context, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deliverErr != nil {
		return m.deliverErr
	}
	m.delivered = append(m.delivered, subject)
	return nil
}

// mockTraceSink implements driven.TraceSink, recording span names.
type mockTraceSink struct {
	mu      sync.Mutex
	started []string
	ended   []string
}

func (m *mockTraceSink) StartSpan(traceID, name string) driven.SpanHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, name)
	return driven.SpanHandle{TraceID: traceID, SpanID: fmt.Sprintf("span-%d", len(m.started)), Name: name}
}

func (m *mockTraceSink) EndSpan(handle driven.SpanHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = append(m.ended, handle.Name)
}

// mockReportStore implements driven.ReportStore in memory.
type mockReportStore struct {
	mu      sync.Mutex
	saveErr error
	saved   []domain.Report
}

func (m *mockReportStore) Save(_ context.Context, report domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, report)
	return nil
}

func (m *mockReportStore) Get(_ context.Context, id string) (*domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.saved {
		if m.saved[i].ID == id {
			report := m.saved[i]
			return &report, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockReportStore) List(_ context.Context) ([]domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Report(nil), m.saved...), nil
}

func (m *mockReportStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.saved {
		if m.saved[i].ID == id {
			m.saved = append(m.saved[:i], m.saved[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockReportStore) Close() error { return nil }

// scriptHappyPath fills the completion mock with responses for every
// pipeline stage of a default five-search run.
func scriptHappyPath(llm *mockCompletionService) {
	llm.script("optimized_query", `{"query": "optimized topic"}`)
	llm.script("clarifying_questions", `{"questions": ["Q one?", "Q two?", "Q three?"]}`)
	llm.script("search_plan", `{"searches": [
		{"term": "term-1", "rationale": "r1"},
		{"term": "term-2", "rationale": "r2"},
		{"term": "term-3", "rationale": "r3"},
		{"term": "term-4", "rationale": "r4"},
		{"term": "term-5", "rationale": "r5"}
	]}`)
	llm.script("search_summary", `{"summary": "a summary of findings"}`)
	llm.script("research_report", `{"report": "# Report\n\nFindings."}`)
}
