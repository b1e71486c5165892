package domain

import (
	"fmt"
	"strings"
	"time"
)

// RawQuery is the user's initial research topic, exactly as entered.
type RawQuery struct {
	// Text is the topic to research. Never empty.
	Text string
}

// NewRawQuery validates and creates a RawQuery.
// Returns ErrInvalidInput if the text is empty or whitespace.
func NewRawQuery(text string) (RawQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return RawQuery{}, fmt.Errorf("%w: query text is empty", ErrInvalidInput)
	}
	return RawQuery{Text: text}, nil
}

// OptimizedQuery is the refined research topic produced by the
// optimisation stage. Derived from exactly one RawQuery.
type OptimizedQuery struct {
	// Text is the refined query.
	Text string
}

// ClarifyingQuestion is a single question shown to the user before
// the research plan is produced.
type ClarifyingQuestion struct {
	// ID uniquely identifies the question within its run.
	ID string

	// Text is the question itself.
	Text string
}

// Answer is the user's response to one ClarifyingQuestion.
type Answer struct {
	// QuestionID references the ClarifyingQuestion being answered.
	QuestionID string

	// Text is the user's answer. May be empty if the user has
	// nothing to add for that question.
	Text string
}

// EnrichedQuery is the optimised query composed with the clarification
// Q&A pairs. It is the input to the planning stage.
type EnrichedQuery struct {
	// Text is the composed query.
	Text string
}

// ComposeEnrichedQuery deterministically builds an EnrichedQuery from the
// optimised query and the answered questions. Answers are matched to
// questions by ID; question order is preserved.
func ComposeEnrichedQuery(
	optimized OptimizedQuery,
	questions []ClarifyingQuestion,
	answers []Answer,
) EnrichedQuery {
	byID := make(map[string]string, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a.Text
	}

	var b strings.Builder
	b.WriteString("Main Topic:\n")
	b.WriteString(optimized.Text)
	b.WriteString("\n\nClarifications:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "Q%d: %s\n", i+1, q.Text)
		fmt.Fprintf(&b, "A%d: %s\n", i+1, byID[q.ID])
	}

	return EnrichedQuery{Text: b.String()}
}

// SearchPlanItem is one planned web search.
type SearchPlanItem struct {
	// Term is the search term to execute. Never empty.
	Term string

	// Rationale explains why this search contributes to the research.
	Rationale string
}

// SearchOutcome is the settled result of executing one SearchPlanItem.
// Outcomes are immutable once created.
type SearchOutcome struct {
	// Item is the plan item this outcome settles.
	Item SearchPlanItem

	// Summary is the summarised search result.
	// Empty whenever Succeeded is false.
	Summary string

	// Succeeded reports whether the search and its summarisation
	// completed without error.
	Succeeded bool

	// Failure describes why the task failed. Empty when Succeeded.
	Failure string
}

// SearchResultSet aggregates the outcomes of a run's search phase,
// ordered by task completion (not plan order).
type SearchResultSet struct {
	// Outcomes holds one entry per settled search task.
	Outcomes []SearchOutcome
}

// Successes returns only the outcomes that succeeded.
func (s SearchResultSet) Successes() []SearchOutcome {
	var ok []SearchOutcome
	for _, o := range s.Outcomes {
		if o.Succeeded {
			ok = append(ok, o)
		}
	}
	return ok
}

// FailureCount returns the number of failed outcomes.
func (s SearchResultSet) FailureCount() int {
	n := 0
	for _, o := range s.Outcomes {
		if !o.Succeeded {
			n++
		}
	}
	return n
}

// AllFailed reports whether every outcome in a non-empty set failed.
func (s SearchResultSet) AllFailed() bool {
	return len(s.Outcomes) > 0 && s.FailureCount() == len(s.Outcomes)
}

// Report is the synthesised markdown research report.
type Report struct {
	// ID uniquely identifies the report.
	ID string

	// Query is the raw query the report answers.
	Query string

	// Body is the report content in markdown.
	Body string

	// CreatedAt is when the report was produced.
	CreatedAt time.Time
}
