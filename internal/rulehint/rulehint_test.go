package rulehint

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustRule(t *testing.T, rule int) TruthTable {
	t.Helper()
	tt, err := FromRule(rule)
	if err != nil {
		t.Fatalf("FromRule(%d): %v", rule, err)
	}
	return tt
}

// #region truth-table-tests

func TestFromRuleWolframOrder(t *testing.T) {
	tt := mustRule(t, 110)
	want := TruthTable{0, 1, 1, 0, 1, 1, 1, 0}
	if tt != want {
		t.Fatalf("got %v, want %v", tt, want)
	}
	if tt.Apply(Neighborhood{1, 1, 1}) != 0 || tt.Apply(Neighborhood{0, 0, 1}) != 1 {
		t.Fatal("Apply does not follow Wolfram order")
	}
}

func TestRuleRoundTrip(t *testing.T) {
	for r := 0; r < 256; r++ {
		if got := mustRule(t, r).Rule(); got != r {
			t.Fatalf("rule %d round-tripped to %d", r, got)
		}
	}
}

func TestFromRuleRange(t *testing.T) {
	for _, r := range []int{-1, 256} {
		if _, err := FromRule(r); !errors.Is(err, ErrRuleRange) {
			t.Errorf("rule %d: expected ErrRuleRange, got %v", r, err)
		}
	}
}

// #endregion truth-table-tests

// #region property-tests

func TestAffine(t *testing.T) {
	linear := map[int]bool{0: true, 60: true, 90: true, 102: true, 150: true, 170: true, 204: true, 240: true}
	for r := 0; r < 256; r++ {
		ok, detail := mustRule(t, r).Affine()
		if ok != linear[r] {
			t.Errorf("rule %d: affine=%v (%s)", r, ok, detail)
		}
	}
	_, detail := mustRule(t, 30).Affine()
	if detail == "" {
		t.Fatal("expected counterexample for rule 30")
	}
}

func TestSurjective(t *testing.T) {
	if ok, _ := mustRule(t, 0).Surjective(); ok {
		t.Error("rule 0 is constant")
	}
	if ok, _ := mustRule(t, 255).Surjective(); ok {
		t.Error("rule 255 is constant")
	}
	if ok, _ := mustRule(t, 1).Surjective(); !ok {
		t.Error("rule 1 has both outputs")
	}
}

func TestSensitivity(t *testing.T) {
	tests := []struct {
		rule     int
		mean     float64
		min, max float64
	}{
		{0, 0, 0, 0},
		{150, 1, 1, 1},
		{204, 1.0 / 3, 1.0 / 3, 1.0 / 3},
		{16, 0.25, 0, 1},
		{30, 2.0 / 3, 1.0 / 3, 1},
	}
	for _, tt := range tests {
		s := mustRule(t, tt.rule).Sensitivity()
		if !approx(s.Mean, tt.mean) || !approx(s.Min, tt.min) || !approx(s.Max, tt.max) {
			t.Errorf("rule %d: got mean=%f min=%f max=%f", tt.rule, s.Mean, s.Min, s.Max)
		}
	}
	// rule 16 fires only on 100
	s := mustRule(t, 16).Sensitivity()
	if s.PerInput[4] != 1 || s.PerInput[7] != 0 {
		t.Errorf("rule 16 per-input %v", s.PerInput)
	}
}

// #endregion property-tests

// #region hint-tests

func TestAnalyzeRuleHints(t *testing.T) {
	tests := []struct {
		rule       int
		class      wolfram.Class
		confidence float64
		known      bool
	}{
		{110, wolfram.ClassIV, 0.95, true},
		{30, wolfram.ClassIII, 0.95, true},
		{0, wolfram.ClassI, 0.95, true},
		{102, wolfram.ClassIII, 0.7, false}, // affine, sensitivity 2/3
		{240, wolfram.ClassII, 0.6, false},  // affine, sensitivity 1/3
		{97, wolfram.ClassIV, 0.5, false},   // nonlinear, sensitivity 0.75
		{17, wolfram.ClassII, 0.5, false},   // nonlinear, sensitivity 1/3
		{16, wolfram.ClassI, 0.6, false},    // nonlinear, sensitivity exactly 0.25
	}
	for _, tt := range tests {
		r, err := AnalyzeRule(tt.rule)
		if err != nil {
			t.Fatal(err)
		}
		if r.Hint.Class != tt.class || r.Hint.Confidence != tt.confidence || r.Hint.Known != tt.known {
			t.Errorf("rule %d: got %s/%.2f known=%v (%s)", tt.rule, r.Hint.Class, r.Hint.Confidence, r.Hint.Known, r.Hint.Reasoning)
		}
		if r.Rule != tt.rule {
			t.Errorf("rule %d: report carries %d", tt.rule, r.Rule)
		}
	}
}

func TestGuessConstantUnknownRule(t *testing.T) {
	h := Guess(-1, false, false, Sensitivity{})
	if h.Class != wolfram.ClassI || h.Confidence != 0.9 {
		t.Fatalf("got %+v", h)
	}
}

func TestKnownClass(t *testing.T) {
	if c, ok := KnownClass(54); !ok || c != wolfram.ClassIV {
		t.Fatalf("rule 54: %s %v", c, ok)
	}
	if _, ok := KnownClass(16); ok {
		t.Fatal("rule 16 is not tabulated")
	}
}

// #endregion hint-tests
