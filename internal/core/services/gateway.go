package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// CompletionGateway is the uniform call contract to the completion
// provider. Every pipeline stage that needs model reasoning goes through
// it. The gateway validates that provider output conforms to the
// requested shape; it performs no retries - retry policy belongs to the
// calling stage. It is stateless between calls and safe for concurrent
// use.
type CompletionGateway struct {
	llm     driven.CompletionService
	trace   driven.TraceSink
	prompts driven.PromptStore
}

// NewCompletionGateway creates a gateway over the given completion
// service. The trace sink is optional (can be nil).
func NewCompletionGateway(llm driven.CompletionService, trace driven.TraceSink) *CompletionGateway {
	return &CompletionGateway{
		llm:   llm,
		trace: trace,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the gateway uses hardcoded default prompts.
func (g *CompletionGateway) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// invoke performs one traced call against the provider and decodes the
// raw JSON into out.
func (g *CompletionGateway) invoke(
	ctx context.Context, traceID, promptName, input string, shape driven.ShapeDescriptor, out any,
) error {
	if g.llm == nil {
		return fmt.Errorf("%w: completion service not configured", domain.ErrProvider)
	}

	if g.trace != nil {
		span := g.trace.StartSpan(traceID, "completion."+shape.Name)
		defer g.trace.EndSpan(span)
	}

	instructions := loadInstructions(g.prompts, promptName)

	logger.Debug("Completion call: shape=%s model=%s", shape.Name, g.llm.ModelName())

	raw, err := g.llm.Invoke(ctx, instructions, input, shape)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", shape.Name, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w: decode %s: %v",
			domain.ErrProvider, domain.ErrMalformedCompletion, shape.Name, err)
	}

	return nil
}

// OptimizeQuery refines the raw query into a sharper research query.
func (g *CompletionGateway) OptimizeQuery(
	ctx context.Context, traceID string, query domain.RawQuery,
) (domain.OptimizedQuery, error) {
	shape := driven.ShapeDescriptor{
		Name: "optimized_query",
		Fields: []driven.ShapeField{
			{Name: "query", Type: driven.FieldText, Description: "the refined research query"},
		},
	}

	var out struct {
		Query string `json:"query"`
	}
	if err := g.invoke(ctx, traceID, driven.PromptOptimize, query.Text, shape, &out); err != nil {
		return domain.OptimizedQuery{}, fmt.Errorf("optimize query: %w", err)
	}

	optimized := strings.TrimSpace(out.Query)
	if optimized == "" {
		return domain.OptimizedQuery{}, fmt.Errorf(
			"optimize query: %w: %w: empty query", domain.ErrProvider, domain.ErrMalformedCompletion)
	}

	return domain.OptimizedQuery{Text: optimized}, nil
}

// GenerateQuestions produces exactly n clarifying questions for the
// optimised query. Fails if the provider returns fewer than n.
func (g *CompletionGateway) GenerateQuestions(
	ctx context.Context, traceID string, query domain.OptimizedQuery, n int,
) ([]domain.ClarifyingQuestion, error) {
	shape := driven.ShapeDescriptor{
		Name: "clarifying_questions",
		Fields: []driven.ShapeField{
			{
				Name:        "questions",
				Type:        driven.FieldTextArray,
				Description: fmt.Sprintf("exactly %d meaningful questions whose answers will help the research", n),
			},
		},
	}

	input := fmt.Sprintf("Write exactly %d clarifying questions for this research query:\n%s", n, query.Text)

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := g.invoke(ctx, traceID, driven.PromptQuestions, input, shape, &out); err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions := make([]domain.ClarifyingQuestion, 0, n)
	for _, text := range out.Questions {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		questions = append(questions, domain.ClarifyingQuestion{
			ID:   fmt.Sprintf("q%d", len(questions)+1),
			Text: text,
		})
	}

	if len(questions) < n {
		return nil, fmt.Errorf("generate questions: %w: %w: got %d questions, want %d",
			domain.ErrProvider, domain.ErrMalformedCompletion, len(questions), n)
	}

	return questions[:n], nil
}

// PlanSearches produces up to m search plan items from the enriched
// query. Fails on an empty plan; a surplus is truncated to m.
func (g *CompletionGateway) PlanSearches(
	ctx context.Context, traceID string, enriched domain.EnrichedQuery, m int,
) ([]domain.SearchPlanItem, error) {
	shape := driven.ShapeDescriptor{
		Name: "search_plan",
		Fields: []driven.ShapeField{
			{
				Name:        "searches",
				Type:        driven.FieldObjectArray,
				Description: fmt.Sprintf("exactly %d planned web searches", m),
				Items: []driven.ShapeField{
					{Name: "term", Type: driven.FieldText, Description: "the exact term to search for"},
					{Name: "rationale", Type: driven.FieldText, Description: "why this search helps answer the brief"},
				},
			},
		},
	}

	input := fmt.Sprintf("Plan exactly %d web searches for this research brief:\n%s", m, enriched.Text)

	var out struct {
		Searches []struct {
			Term      string `json:"term"`
			Rationale string `json:"rationale"`
		} `json:"searches"`
	}
	if err := g.invoke(ctx, traceID, driven.PromptPlan, input, shape, &out); err != nil {
		return nil, fmt.Errorf("plan searches: %w", err)
	}

	plan := make([]domain.SearchPlanItem, 0, m)
	for _, s := range out.Searches {
		term := strings.TrimSpace(s.Term)
		if term == "" {
			continue
		}
		plan = append(plan, domain.SearchPlanItem{Term: term, Rationale: strings.TrimSpace(s.Rationale)})
		if len(plan) == m {
			break
		}
	}

	if len(plan) == 0 {
		return nil, fmt.Errorf("plan searches: %w: %w: empty plan",
			domain.ErrProvider, domain.ErrMalformedCompletion)
	}

	if len(plan) < m {
		logger.Warn("Plan has %d searches, wanted %d", len(plan), m)
	}

	return plan, nil
}

// SummarizeSearch condenses the raw results of one executed search term.
func (g *CompletionGateway) SummarizeSearch(
	ctx context.Context, traceID, term, rawResults string,
) (string, error) {
	shape := driven.ShapeDescriptor{
		Name: "search_summary",
		Fields: []driven.ShapeField{
			{Name: "summary", Type: driven.FieldText, Description: "2-3 paragraph summary of the results, under 300 words"},
		},
	}

	input := fmt.Sprintf("Search term: %s\n\nSearch results:\n%s", term, rawResults)

	var out struct {
		Summary string `json:"summary"`
	}
	if err := g.invoke(ctx, traceID, driven.PromptSummarize, input, shape, &out); err != nil {
		return "", fmt.Errorf("summarize search: %w", err)
	}

	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return "", fmt.Errorf("summarize search: %w: %w: empty summary",
			domain.ErrProvider, domain.ErrMalformedCompletion)
	}

	return summary, nil
}

// WriteReport synthesises the final markdown report from the successful
// search summaries. An empty summary list is allowed; the provider is
// told the research produced no findings.
func (g *CompletionGateway) WriteReport(
	ctx context.Context, traceID, query string, summaries []string,
) (string, error) {
	shape := driven.ShapeDescriptor{
		Name: "research_report",
		Fields: []driven.ShapeField{
			{Name: "report", Type: driven.FieldText, Description: "the full research report in markdown"},
		},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Research query:\n%s\n\nFindings:\n", query)
	if len(summaries) == 0 {
		b.WriteString("(no findings - all searches failed; write a short report explaining that no results were gathered)\n")
	}
	for i, s := range summaries {
		fmt.Fprintf(&b, "--- Finding %d ---\n%s\n", i+1, s)
	}

	var out struct {
		Report string `json:"report"`
	}
	if err := g.invoke(ctx, traceID, driven.PromptReport, b.String(), shape, &out); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	body := strings.TrimSpace(out.Report)
	if body == "" {
		return "", fmt.Errorf("write report: %w: %w: empty report",
			domain.ErrProvider, domain.ErrMalformedCompletion)
	}

	return body, nil
}
