package bands

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/cadynamics/internal/history"
)

// #region helpers

func mustStrings(t *testing.T, lines []string) history.History {
	t.Helper()
	h, err := history.FromStrings(lines)
	if err != nil {
		t.Fatalf("FromStrings: %v", err)
	}
	return h
}

// repeatBlock repeats block until total rows have been emitted.
func repeatBlock(block []string, total int) []string {
	out := make([]string, total)
	for i := range out {
		out[i] = block[i%len(block)]
	}
	return out
}

// #endregion helpers

// #region column-tests

func TestChangeRate(t *testing.T) {
	tests := []struct {
		name string
		col  []int
		want float64
	}{
		{"empty", nil, 0},
		{"single", []int{1}, 0},
		{"constant", []int{1, 1, 1}, 0},
		{"alternating", []int{0, 1, 0, 1, 0}, 1},
		{"one-change", []int{0, 0, 1, 1, 1}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChangeRate(tt.col); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRunLengths(t *testing.T) {
	mean, longest := RunLengths([]int{0, 0, 0, 1, 1, 0})
	if mean != 2 || longest != 3 {
		t.Fatalf("got mean=%f max=%d, want 2, 3", mean, longest)
	}
	mean, longest = RunLengths(nil)
	if mean != 0 || longest != 0 {
		t.Fatalf("empty column: got %f, %d", mean, longest)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		rate float64
		want Activity
	}{
		{0, ActivityFrozen},
		{0.049, ActivityFrozen},
		{0.05, ActivityLow},
		{0.15, ActivityLow},
		{0.16, ActivityModerate},
		{0.44, ActivityModerate},
		{0.45, ActivityLow},
		{0.46, ActivityChaotic},
		{1, ActivityChaotic},
	}
	for _, tt := range tests {
		if got := Classify(tt.rate); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

// #endregion column-tests

// #region summary-tests

func TestSummarizeRatiosSumToOne(t *testing.T) {
	cols := []ColumnAnalysis{
		{Activity: ActivityFrozen},
		{Activity: ActivityLow},
		{Activity: ActivityModerate},
		{Activity: ActivityModerate},
		{Activity: ActivityChaotic},
		{Activity: ActivityFrozen},
		{Activity: ActivityLow},
	}
	for n := 1; n <= len(cols); n++ {
		s := Summarize(cols[:n])
		sum := s.FrozenRatio + s.LowActivityRatio + s.ModerateRatio + s.ChaoticRatio
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("n=%d: ratios sum to %f", n, sum)
		}
		if s.BandScore != s.ModerateRatio {
			t.Errorf("n=%d: band score %f != moderate ratio %f", n, s.BandScore, s.ModerateRatio)
		}
	}
}

func TestSummarizeInterpretation(t *testing.T) {
	mk := func(acts ...Activity) []ColumnAnalysis {
		out := make([]ColumnAnalysis, len(acts))
		for i, a := range acts {
			out[i] = ColumnAnalysis{Index: i, Activity: a}
		}
		return out
	}
	tests := []struct {
		name string
		cols []ColumnAnalysis
		want Interpretation
	}{
		{"empty", nil, SparseActivity},
		{"frozen", mk(ActivityFrozen, ActivityFrozen, ActivityFrozen, ActivityFrozen), MostlyFrozen},
		{"chaotic", mk(ActivityChaotic, ActivityChaotic, ActivityFrozen), MostlyChaotic},
		{"bands", mk(ActivityModerate, ActivityFrozen, ActivityLow), HasActiveBands},
		{"sparse", mk(ActivityLow, ActivityLow, ActivityFrozen, ActivityModerate), SparseActivity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.cols).Interpretation; got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFindActiveBands(t *testing.T) {
	acts := []Activity{
		ActivityModerate, ActivityModerate, ActivityFrozen,
		ActivityModerate, ActivityChaotic, ActivityModerate, ActivityModerate, ActivityModerate,
	}
	cols := make([]ColumnAnalysis, len(acts))
	for i, a := range acts {
		cols[i] = ColumnAnalysis{Index: i, Activity: a}
	}
	got := FindActiveBands(cols)
	want := []Band{{0, 2}, {3, 4}, {5, 8}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("band %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if FindActiveBands(nil) != nil {
		t.Error("expected no bands for empty input")
	}
}

// #endregion summary-tests

// #region periodicity-tests

func TestRowPeriodicityRepeatedBlock(t *testing.T) {
	for _, period := range []int{2, 5, 13, 20} {
		t.Run(fmt.Sprintf("P=%d", period), func(t *testing.T) {
			// one-hot rows are pairwise distinct, so no shorter period matches
			block := make([]string, period)
			for i := range block {
				block[i] = strings.Repeat("0", i) + "1" + strings.Repeat("0", period-i-1)
			}
			h := mustStrings(t, repeatBlock(block, 40))
			p := RowPeriodicity(h, DefaultPeriodicityConfig())
			if !p.Periodic || p.Period != period || p.Strength != 1.0 {
				t.Fatalf("got %+v, want periodic P=%d strength 1", p, period)
			}
		})
	}
}

func TestRowPeriodicityTooShort(t *testing.T) {
	block := []string{"10", "01"}
	h := mustStrings(t, repeatBlock(block, 39))
	if p := RowPeriodicity(h, DefaultPeriodicityConfig()); p.Periodic {
		t.Fatalf("expected aperiodic for n < 2*max_period, got %+v", p)
	}
}

func TestRowPeriodicityAperiodic(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		// binary counter rows never repeat within 40 generations
		b := make([]byte, 6)
		for j := range b {
			b[j] = byte('0' + (i>>j)&1)
		}
		lines[i] = string(b)
	}
	h := mustStrings(t, lines)
	if p := RowPeriodicity(h, DefaultPeriodicityConfig()); p.Periodic {
		t.Fatalf("expected aperiodic, got %+v", p)
	}
}

// #endregion periodicity-tests

// #region analyze-history-tests

func TestAnalyzeHistory(t *testing.T) {
	// column 0 frozen, columns 1-2 moderate (period-8 square wave), column 3 chaotic
	wave := []int{0, 0, 0, 0, 1, 1, 1, 1}
	rows := make([][]int, 48)
	for i := range rows {
		rows[i] = []int{0, wave[i%8], wave[(i+2)%8], i % 2}
	}
	h, err := history.FromInts(rows)
	if err != nil {
		t.Fatal(err)
	}

	rep, err := AnalyzeHistory(h, DefaultPeriodicityConfig())
	if err != nil {
		t.Fatalf("AnalyzeHistory: %v", err)
	}
	if rep.Generations != 48 || len(rep.Columns) != 4 {
		t.Fatalf("unexpected shape: %d generations, %d columns", rep.Generations, len(rep.Columns))
	}
	wantActs := []Activity{ActivityFrozen, ActivityModerate, ActivityModerate, ActivityChaotic}
	for i, want := range wantActs {
		if rep.Columns[i].Activity != want {
			t.Errorf("column %d: got %s, want %s", i, rep.Columns[i].Activity, want)
		}
	}
	if rep.BandCount != 1 || rep.WidestBand == nil || *rep.WidestBand != (Band{1, 3}) {
		t.Errorf("unexpected bands: %+v widest=%v", rep.ActiveBands, rep.WidestBand)
	}
	if len(rep.BandWidths) != 1 || rep.BandWidths[0] != 2 {
		t.Errorf("band widths %v", rep.BandWidths)
	}
	if !rep.Periodicity.Periodic || rep.Periodicity.Period != 8 {
		t.Errorf("expected period 8, got %+v", rep.Periodicity)
	}
	if rep.Features()["row_periodic"] != 1 {
		t.Error("features should flag row periodicity")
	}
}

func TestAnalyzeHistoryEmpty(t *testing.T) {
	if _, err := AnalyzeHistory(history.History{}, DefaultPeriodicityConfig()); err == nil {
		t.Fatal("expected error for empty history")
	}
}

// #endregion analyze-history-tests
