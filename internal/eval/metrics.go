// Package eval scores generated output against a query and context with
// simple keyword overlap checks.
package eval

import (
	"strings"
)

// Metric names
const (
	AnswerRelevancy = "answer_relevancy"
	Faithfulness    = "faithfulness"
	Hallucination   = "hallucination"
)

// Result is the outcome of one metric. Hallucination reports Value (lower is
// better); the other metrics report Score.
type Result struct {
	Score       *float64 `json:"score,omitempty"`
	Value       *float64 `json:"value,omitempty"`
	Explanation string   `json:"explanation"`
}

// Request is the input of an evaluation
type Request struct {
	Query   string   `json:"query,omitempty"`
	Output  string   `json:"output,omitempty"`
	Context []string `json:"context,omitempty"`
	Metrics []string `json:"-"`
}

func score(v float64, explanation string) Result {
	return Result{Score: &v, Explanation: explanation}
}

func value(v float64, explanation string) Result {
	return Result{Value: &v, Explanation: explanation}
}

// Evaluate runs a single metric
func Evaluate(metric, query, output string, context []string) Result {
	q := strings.ToLower(query)
	o := strings.ToLower(output)
	ctx := strings.ToLower(strings.Join(context, " "))

	switch metric {
	case AnswerRelevancy:
		if anyToken(q, func(tok string) bool { return strings.Contains(o, tok) }) {
			return score(0.95, "Answer appears relevant to the query")
		}
		return score(0.5, "Answer may be unrelated")
	case Faithfulness:
		if groundedIn(o, ctx) {
			return score(0.9, "Output matches provided context")
		}
		return score(0.3, "Output not grounded in context")
	case Hallucination:
		if groundedIn(o, ctx) {
			return value(0.0, "No obvious hallucination relative to context")
		}
		return value(0.8, "Potential hallucination: no supporting context found")
	default:
		return score(0.5, "Neutral / unknown metric")
	}
}

// EvaluateAll runs every requested metric, defaulting to answer relevancy
func EvaluateAll(req Request) map[string]Result {
	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = []string{AnswerRelevancy}
	}
	out := make(map[string]Result, len(metrics))
	for _, m := range metrics {
		out[m] = Evaluate(m, req.Query, req.Output, req.Context)
	}
	return out
}

func groundedIn(output, context string) bool {
	if context == "" {
		return false
	}
	return anyToken(output, func(tok string) bool { return strings.Contains(context, tok) })
}

func anyToken(s string, match func(string) bool) bool {
	for _, tok := range strings.Fields(s) {
		if match(tok) {
			return true
		}
	}
	return false
}
