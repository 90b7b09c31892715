package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		metric    string
		query     string
		output    string
		context   []string
		wantScore *float64
		wantValue *float64
	}{
		{name: "relevant", metric: AnswerRelevancy, query: "Login works", output: "TC-001: valid LOGIN -> dashboard", wantScore: f(0.95)},
		{name: "unrelated", metric: AnswerRelevancy, query: "checkout", output: "login page", wantScore: f(0.5)},
		{name: "faithful", metric: Faithfulness, output: "token is validated", context: []string{"must validate token"}, wantScore: f(0.9)},
		{name: "unfaithful without context", metric: Faithfulness, output: "anything", wantScore: f(0.3)},
		{name: "grounded", metric: Hallucination, output: "validate", context: []string{"Validate token"}, wantValue: f(0)},
		{name: "hallucinated", metric: Hallucination, output: "purple", context: []string{"green"}, wantValue: f(0.8)},
		{name: "unknown", metric: "toxicity", wantScore: f(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.metric, tt.query, tt.output, tt.context)
			assert.NotEmpty(t, got.Explanation)
			if tt.wantScore != nil {
				require.NotNil(t, got.Score)
				assert.InDelta(t, *tt.wantScore, *got.Score, 1e-9)
				assert.Nil(t, got.Value)
			}
			if tt.wantValue != nil {
				require.NotNil(t, got.Value)
				assert.InDelta(t, *tt.wantValue, *got.Value, 1e-9)
				assert.Nil(t, got.Score)
			}
		})
	}
}

func TestEvaluateAll(t *testing.T) {
	out := EvaluateAll(Request{Query: "login", Output: "login ok"})
	require.Contains(t, out, AnswerRelevancy)
	assert.Len(t, out, 1)

	out = EvaluateAll(Request{Output: "x", Metrics: []string{Faithfulness, Hallucination}})
	assert.Len(t, out, 2)
	assert.NotNil(t, out[Hallucination].Value)
}

func f(v float64) *float64 { return &v }
