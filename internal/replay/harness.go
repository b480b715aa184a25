// Package replay re-runs recorded CA runs through the analysis pipeline and
// checks them against their expected classification.
package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region types

// Result is the outcome of replaying one case.
type Result struct {
	Name       string           `json:"name"`
	Passed     bool             `json:"passed"`
	Reason     string           `json:"reason"`
	Expected   wolfram.Class    `json:"expected"`
	Class      wolfram.Class    `json:"class"`
	Confidence float64          `json:"confidence"`
	Report     *analysis.Report `json:"report,omitempty"`
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total   int            `json:"total"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Errored int            `json:"errored"`
	ByClass map[string]int `json:"by_class"`
}

// #endregion types

// #region replay

// Replay analyzes every case in order. An analysis error fails that case
// and replay continues; only context cancellation stops the run.
func Replay(ctx context.Context, a *analysis.Analyzer, cases []FixtureCase) ([]Result, error) {
	results := make([]Result, 0, len(cases))
	for i := range cases {
		c := &cases[i]
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := Result{Name: c.Name, Expected: c.Expected.Class}
		rep, err := a.Analyze(ctx, c.ToInput())
		if err != nil {
			res.Reason = fmt.Sprintf("analysis error: %v", err)
			results = append(results, res)
			continue
		}
		res.Report = rep
		res.Class = rep.Classification.Class
		res.Confidence = rep.Classification.Confidence
		res.Passed, res.Reason = check(c.Expected, rep)
		results = append(results, res)
	}
	return results, nil
}

// check compares a report with the expectations, reporting the first miss.
func check(exp FixtureExpected, rep *analysis.Report) (bool, string) {
	got := rep.Classification
	if got.Class != exp.Class {
		return false, fmt.Sprintf("class %s, want %s (%s)", got.Class, exp.Class, got.Reasoning)
	}
	if got.Confidence < exp.MinConfidence {
		return false, fmt.Sprintf("confidence %.3f below %.3f", got.Confidence, exp.MinConfidence)
	}
	if exp.Periodic != nil && rep.Bands.Periodicity.Periodic != *exp.Periodic {
		return false, fmt.Sprintf("periodic=%t, want %t", rep.Bands.Periodicity.Periodic, *exp.Periodic)
	}
	if exp.RuleHint != nil {
		if rep.RuleHint == nil {
			return false, "rule hint missing"
		}
		if rep.RuleHint.Hint.Class != *exp.RuleHint {
			return false, fmt.Sprintf("rule hint %s, want %s", rep.RuleHint.Hint.Class, *exp.RuleHint)
		}
	}
	return true, got.Reasoning
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), ByClass: map[string]int{}}
	for _, r := range results {
		switch {
		case r.Passed:
			s.Passed++
		case r.Report == nil:
			s.Errored++
		default:
			s.Failed++
		}
		if r.Report != nil {
			s.ByClass[r.Class.String()]++
		}
	}
	return s
}

// #endregion replay
