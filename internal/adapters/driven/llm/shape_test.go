package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

func TestRenderShapeInstructions(t *testing.T) {
	shape := driven.ShapeDescriptor{
		Name: "search_plan",
		Fields: []driven.ShapeField{
			{
				Name:        "searches",
				Type:        driven.FieldObjectArray,
				Description: "planned searches.",
				Items: []driven.ShapeField{
					{Name: "term", Type: driven.FieldText, Description: "the term."},
					{Name: "rationale", Type: driven.FieldText, Description: "why."},
				},
			},
		},
	}

	got := RenderShapeInstructions(shape)

	assert.Contains(t, got, `"searches": array of objects`)
	assert.Contains(t, got, `"term": string`)
	assert.Contains(t, got, `"rationale": string`)
	assert.Contains(t, got, "single JSON object")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			reply: `{"query": "x"}`,
			want:  `{"query": "x"}`,
		},
		{
			name:  "fenced object",
			reply: "```json\n{\"query\": \"x\"}\n```",
			want:  `{"query": "x"}`,
		},
		{
			name:  "object with surrounding prose",
			reply: "Here you go:\n{\"query\": \"x\"}\nHope that helps!",
			want:  `{"query": "x"}`,
		},
		{
			name:    "no object",
			reply:   "I cannot answer that.",
			wantErr: true,
		},
		{
			name:    "invalid json",
			reply:   `{"query": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.reply)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrMalformedCompletion)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
