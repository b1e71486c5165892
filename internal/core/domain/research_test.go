package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawQuery(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"valid query", "impact of remote work on urban housing", "impact of remote work on urban housing", false},
		{"trims whitespace", "  quantum computing  ", "quantum computing", false},
		{"empty", "", "", true},
		{"whitespace only", "  \t\n ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewRawQuery(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Text)
		})
	}
}

func TestComposeEnrichedQuery(t *testing.T) {
	optimized := OptimizedQuery{Text: "remote work effects on city housing markets"}
	questions := []ClarifyingQuestion{
		{ID: "q1", Text: "Which region?"},
		{ID: "q2", Text: "What timeframe?"},
		{ID: "q3", Text: "Rental or purchase market?"},
	}
	answers := []Answer{
		{QuestionID: "q2", Text: "2020 to today"},
		{QuestionID: "q1", Text: "North America"},
		{QuestionID: "q3", Text: "Both"},
	}

	enriched := ComposeEnrichedQuery(optimized, questions, answers)

	assert.Contains(t, enriched.Text, "Main Topic:")
	assert.Contains(t, enriched.Text, optimized.Text)
	assert.Contains(t, enriched.Text, "Clarifications:")
	// Answers are matched by ID, not by slice order.
	assert.Contains(t, enriched.Text, "Q1: Which region?\nA1: North America")
	assert.Contains(t, enriched.Text, "Q2: What timeframe?\nA2: 2020 to today")
	assert.Contains(t, enriched.Text, "Q3: Rental or purchase market?\nA3: Both")
}

func TestComposeEnrichedQuery_Deterministic(t *testing.T) {
	optimized := OptimizedQuery{Text: "topic"}
	questions := []ClarifyingQuestion{{ID: "a", Text: "A?"}, {ID: "b", Text: "B?"}}
	answers := []Answer{{QuestionID: "a", Text: "1"}, {QuestionID: "b", Text: "2"}}

	first := ComposeEnrichedQuery(optimized, questions, answers)
	second := ComposeEnrichedQuery(optimized, questions, answers)

	assert.Equal(t, first, second)
}

func TestComposeEnrichedQuery_MissingAnswer(t *testing.T) {
	optimized := OptimizedQuery{Text: "topic"}
	questions := []ClarifyingQuestion{{ID: "a", Text: "A?"}}

	enriched := ComposeEnrichedQuery(optimized, questions, nil)

	// Unanswered questions render with an empty answer rather than panicking.
	assert.Contains(t, enriched.Text, "Q1: A?\nA1: \n")
}

func TestSearchResultSet_Successes(t *testing.T) {
	set := SearchResultSet{Outcomes: []SearchOutcome{
		{Item: SearchPlanItem{Term: "one"}, Succeeded: true, Summary: "s1"},
		{Item: SearchPlanItem{Term: "two"}, Succeeded: false, Failure: "timeout"},
		{Item: SearchPlanItem{Term: "three"}, Succeeded: true, Summary: "s3"},
	}}

	successes := set.Successes()

	require.Len(t, successes, 2)
	assert.Equal(t, "one", successes[0].Item.Term)
	assert.Equal(t, "three", successes[1].Item.Term)
	assert.Equal(t, 1, set.FailureCount())
	assert.False(t, set.AllFailed())
}

func TestSearchResultSet_AllFailed(t *testing.T) {
	empty := SearchResultSet{}
	assert.False(t, empty.AllFailed(), "empty set is not 'all failed'")

	failed := SearchResultSet{Outcomes: []SearchOutcome{
		{Succeeded: false, Failure: "boom"},
		{Succeeded: false, Failure: "boom"},
	}}
	assert.True(t, failed.AllFailed())
}
