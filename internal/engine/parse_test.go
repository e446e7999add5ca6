package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlpeval/w5h-judge/internal/testutils"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "bare object",
			response: `{"a":1}`,
			want:     `{"a":1}`,
		},
		{
			name:     "json code fence",
			response: "```json\n{\"a\":1}\n```",
			want:     `{"a":1}`,
		},
		{
			name:     "generic code fence",
			response: "```\n{\"a\":1}\n```",
			want:     `{"a":1}`,
		},
		{
			name:     "prose around the object",
			response: `Here you go: {"a":{"b":2}} — done.`,
			want:     `{"a":{"b":2}}`,
		},
		{
			name:     "braces inside string literals",
			response: `{"text":"a } inside","n":1}`,
			want:     `{"text":"a } inside","n":1}`,
		},
		{
			name:     "escaped quotes inside strings",
			response: `{"text":"she said \"}\"","n":1}`,
			want:     `{"text":"she said \"}\"","n":1}`,
		},
		{
			name:     "no object at all",
			response: "I cannot produce an evaluation.",
			want:     "",
		},
		{
			name:     "unbalanced braces",
			response: `{"a":1`,
			want:     "",
		},
		{
			name:     "empty input",
			response: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.response))
		})
	}
}

func TestDecodeFromRawTextRepairsNearJSON(t *testing.T) {
	evaluator := newTestEvaluator(t, testutils.NewMockStructuredClient("mock-model"))

	t.Run("trailing comma is repaired", func(t *testing.T) {
		raw := `{"scores":{"factual_accuracy":4,"completeness":4,"relevance_and_conciseness":4,` +
			`"clarity_and_readability":4,"source_faithfulness":4,"overall_coherence":4,},` +
			`"justifications":{"factual_accuracy":"ok","completeness":"ok","relevance_and_conciseness":"ok",` +
			`"clarity_and_readability":"ok","source_faithfulness":"ok","overall_coherence":"ok"},` +
			`"confidence_level":{"score":4,"justification":"ok"}}`

		eval, err := evaluator.decodeFromRawText(raw)
		assert.NoError(t, err)
		assert.NotNil(t, eval)
	})

	t.Run("irreparable garbage still fails", func(t *testing.T) {
		_, err := evaluator.decodeFromRawText("no json here")
		assert.Error(t, err)
	})
}
