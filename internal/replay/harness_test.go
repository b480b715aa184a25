package replay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region helpers

func frozenCase(t *testing.T, name string, want wolfram.Class) FixtureCase {
	t.Helper()
	lines := make([]string, 8)
	for i := range lines {
		lines[i] = "00000000"
	}
	h, err := history.FromStrings(lines)
	if err != nil {
		t.Fatalf("FromStrings: %v", err)
	}
	return FixtureCase{Name: name, Genotype: h, Expected: FixtureExpected{Class: want, MinConfidence: 0.5}}
}

func classPtr(c wolfram.Class) *wolfram.Class { return &c }

func boolPtr(b bool) *bool { return &b }

// #endregion helpers

// #region harness-tests

func TestReplay_PassAndFail(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig(), nil)
	cases := []FixtureCase{
		frozenCase(t, "frozen-ok", wolfram.ClassI),
		frozenCase(t, "frozen-wrong", wolfram.ClassIII),
	}

	results, err := Replay(context.Background(), a, cases)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Passed {
		t.Errorf("frozen-ok failed: %s", results[0].Reason)
	}
	if results[1].Passed {
		t.Error("frozen-wrong should fail")
	}
	if !strings.Contains(results[1].Reason, "want III") {
		t.Errorf("reason = %q", results[1].Reason)
	}
	if results[1].Class != wolfram.ClassI || results[1].Report == nil {
		t.Errorf("failed case should still carry its report, got class %s", results[1].Class)
	}
}

func TestReplay_AnalysisErrorContinues(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.DefaultConfig(), nil)
	cases := []FixtureCase{
		{Name: "empty", Expected: FixtureExpected{Class: wolfram.ClassI}},
		frozenCase(t, "after", wolfram.ClassI),
	}

	results, err := Replay(context.Background(), a, cases)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if results[0].Passed || results[0].Report != nil {
		t.Errorf("empty case should error, got %+v", results[0])
	}
	if !strings.HasPrefix(results[0].Reason, "analysis error") {
		t.Errorf("reason = %q", results[0].Reason)
	}
	if !results[1].Passed {
		t.Errorf("replay should continue after an error: %s", results[1].Reason)
	}

	s := Summarize(results)
	if s.Total != 2 || s.Passed != 1 || s.Errored != 1 || s.Failed != 0 {
		t.Errorf("summary = %+v", s)
	}
	if s.ByClass["I"] != 1 {
		t.Errorf("by class = %v", s.ByClass)
	}
}

func TestReplay_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := analysis.NewAnalyzer(analysis.DefaultConfig(), nil)

	results, err := Replay(ctx, a, []FixtureCase{frozenCase(t, "x", wolfram.ClassI)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestCheck(t *testing.T) {
	rep := &analysis.Report{}
	rep.Classification = wolfram.Result{Class: wolfram.ClassII, Confidence: 0.9, Reasoning: "periodic"}
	rep.Bands.Periodicity.Periodic = true

	tests := []struct {
		name   string
		exp    FixtureExpected
		pass   bool
		reason string
	}{
		{"match", FixtureExpected{Class: wolfram.ClassII, MinConfidence: 0.8}, true, "periodic"},
		{"wrong class", FixtureExpected{Class: wolfram.ClassIV}, false, "class II, want IV"},
		{"low confidence", FixtureExpected{Class: wolfram.ClassII, MinConfidence: 0.95}, false, "below"},
		{"periodicity", FixtureExpected{Class: wolfram.ClassII, Periodic: boolPtr(false)}, false, "periodic=true"},
		{"hint missing", FixtureExpected{Class: wolfram.ClassII, RuleHint: classPtr(wolfram.ClassII)}, false, "rule hint missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, reason := check(tt.exp, rep)
			if pass != tt.pass {
				t.Errorf("pass = %t, want %t (%s)", pass, tt.pass, reason)
			}
			if !strings.Contains(reason, tt.reason) {
				t.Errorf("reason = %q, want it to contain %q", reason, tt.reason)
			}
		})
	}
}

// #endregion harness-tests
