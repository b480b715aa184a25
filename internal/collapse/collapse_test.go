package collapse

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/danielpatrickdp/cadynamics/internal/history"
)

// #region helpers

var healthy = Summary{AvgEntropyN: 0.9, AvgChange: 0.3, AvgUnique: 0.8, TemporalAutocorr: 0.1, CompositeScore: 0.8}

var degenerate = Summary{AvgEntropyN: 0, AvgChange: 0, AvgUnique: 0.05, TemporalAutocorr: 1, CompositeScore: 0.8}

// byValue summarizes a series by the value of its first cell.
func byValue(table map[int]Summary) Summarizer {
	return SummarizerFunc(func(h history.History) (Summary, bool) {
		if h.Len() == 0 {
			return Summary{}, false
		}
		s, ok := table[h.At(0, 0)]
		return s, ok
	})
}

// series builds a one-column history whose value at t is values[t].
func series(t *testing.T, values ...int) history.History {
	t.Helper()
	rows := make([][]int, len(values))
	for i, v := range values {
		rows[i] = []int{v}
	}
	h, err := history.FromInts(rows)
	if err != nil {
		t.Fatalf("FromInts: %v", err)
	}
	return h
}

func constant(t *testing.T, v, n int) history.History {
	t.Helper()
	values := make([]int, n)
	for i := range values {
		values[i] = v
	}
	return series(t, values...)
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// #endregion helpers

// #region epoch-tests

func TestEpochsPartitionAtTicks(t *testing.T) {
	got := Epochs(20, []int{5, 12})
	want := []Epoch{{0, 5}, {5, 12}, {12, 20}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEpochsNormalizesTicks(t *testing.T) {
	ticks := []int{12, 5, 5, -3, 25, 20, 0}
	if got := NormalizeTicks(20, ticks); !reflect.DeepEqual(got, []int{5, 12}) {
		t.Fatalf("NormalizeTicks = %v", got)
	}
	got := Epochs(20, ticks)
	covered := 0
	for i, ep := range got {
		if i > 0 && ep.Start != got[i-1].End {
			t.Fatalf("gap or overlap between %v and %v", got[i-1], ep)
		}
		covered += ep.Len()
	}
	if covered != 20 || got[0].Start != 0 || got[len(got)-1].End != 20 {
		t.Fatalf("epochs %v do not cover [0,20)", got)
	}
	if ticks[0] != 12 {
		t.Fatal("input ticks were modified")
	}
}

func TestEpochsWithoutTicks(t *testing.T) {
	if got := Epochs(7, nil); !reflect.DeepEqual(got, []Epoch{{0, 7}}) {
		t.Fatalf("got %v", got)
	}
	if got := Epochs(0, []int{1}); got != nil {
		t.Fatalf("expected no epochs for empty run, got %v", got)
	}
}

// #endregion epoch-tests

// #region epoch-score-tests

func TestScoreEpochHealthy(t *testing.T) {
	s := NewScorer(DefaultThresholds(), byValue(map[int]Summary{0: healthy}))
	run := Run{Genotype: constant(t, 0, 10)}

	res := s.ScoreEpoch(run, Epoch{0, 10})

	if res.Early.End != 5 || res.Late.Start != 5 {
		t.Fatalf("halves split at %d/%d, want 5", res.Early.End, res.Late.Start)
	}
	if res.Early.Collapsed || res.Late.Collapsed {
		t.Fatalf("unexpected collapse: %+v / %+v", res.Early.Reasons, res.Late.Reasons)
	}
	if !approx(res.Score, 0.8) {
		t.Fatalf("expected score 0.8, got %f", res.Score)
	}
	if res.Early.Phenotype != nil {
		t.Fatal("phenotype summary should be absent for empty phenotype")
	}
}

func TestScoreEpochOddLengthEarlyHalfIsFloor(t *testing.T) {
	s := NewScorer(DefaultThresholds(), byValue(map[int]Summary{0: healthy}))
	res := s.ScoreEpoch(Run{Genotype: constant(t, 0, 20)}, Epoch{5, 12})
	if res.Early.Start != 5 || res.Early.End != 8 || res.Late.End != 12 {
		t.Fatalf("got early [%d,%d) late [%d,%d)", res.Early.Start, res.Early.End, res.Late.Start, res.Late.End)
	}
}

func TestScoreEpochRecordsEveryReason(t *testing.T) {
	s := NewScorer(DefaultThresholds(), byValue(map[int]Summary{0: degenerate}))
	run := Run{Genotype: constant(t, 0, 4), Phenotype: constant(t, 0, 4)}

	res := s.ScoreEpoch(run, Epoch{0, 4})

	if !res.Early.Collapsed {
		t.Fatal("early half should collapse")
	}
	if len(res.Early.Reasons) != 8 {
		t.Fatalf("expected 4 reasons per series, got %d: %+v", len(res.Early.Reasons), res.Early.Reasons)
	}
	kinds := map[ReasonKind]int{}
	perSeries := map[Series]int{}
	for _, r := range res.Early.Reasons {
		kinds[r.Kind]++
		perSeries[r.Series]++
	}
	for _, k := range []ReasonKind{ReasonLowEntropy, ReasonLowChange, ReasonLowUnique, ReasonHighAutocorr} {
		if kinds[k] != 2 {
			t.Errorf("reason %s recorded %d times, want 2", k, kinds[k])
		}
	}
	if perSeries[SeriesGenotype] != 4 || perSeries[SeriesPhenotype] != 4 {
		t.Errorf("reasons per series: %v", perSeries)
	}
}

func TestScoreEpochPenaltiesCompound(t *testing.T) {
	th := DefaultThresholds()
	s := NewScorer(th, byValue(map[int]Summary{0: degenerate}))

	res := s.ScoreEpoch(Run{Genotype: constant(t, 0, 6)}, Epoch{0, 6})

	want := 0.8 * th.EarlyPenalty * th.LatePenalty
	if !approx(res.Score, want) {
		t.Fatalf("expected %f, got %f", want, res.Score)
	}
}

func TestScoreEpochEarlyPenaltyOnly(t *testing.T) {
	th := DefaultThresholds()
	s := NewScorer(th, byValue(map[int]Summary{0: degenerate, 1: healthy}))

	res := s.ScoreEpoch(Run{Genotype: series(t, 0, 0, 0, 1, 1, 1)}, Epoch{0, 6})

	if !res.Early.Collapsed || res.Late.Collapsed {
		t.Fatalf("expected only early collapse, got early=%v late=%v", res.Early.Collapsed, res.Late.Collapsed)
	}
	if want := 0.8 * th.EarlyPenalty; !approx(res.Score, want) {
		t.Fatalf("expected %f, got %f", want, res.Score)
	}
}

func TestHalfScoreAveragesAvailableSeries(t *testing.T) {
	geno := healthy
	geno.CompositeScore = 0.4
	s := NewScorer(DefaultThresholds(), byValue(map[int]Summary{0: geno, 1: healthy}))
	run := Run{Genotype: constant(t, 0, 10), Phenotype: series(t, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2)}

	res := s.ScoreEpoch(run, Epoch{0, 10})

	if !approx(res.Early.Score, 0.6) {
		t.Errorf("early: expected mean of 0.4 and 0.8, got %f", res.Early.Score)
	}
	// no summary for the late phenotype, so the late half only sees the genotype
	if res.Late.Phenotype != nil || !approx(res.Late.Score, 0.4) {
		t.Errorf("late: expected genotype-only 0.4, got %f", res.Late.Score)
	}
}

func TestRunCheck(t *testing.T) {
	tests := []struct {
		name string
		run  Run
		ok   bool
	}{
		{"no phenotype", Run{Genotype: constant(t, 0, 6)}, true},
		{"same shape", Run{Genotype: constant(t, 0, 6), Phenotype: constant(t, 1, 6)}, true},
		{"shorter phenotype", Run{Genotype: constant(t, 0, 6), Phenotype: constant(t, 1, 3)}, false},
		{"wider phenotype", Run{Genotype: constant(t, 0, 2), Phenotype: mustWidth(t, 2, 2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.Check()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, history.ErrSeriesMismatch) {
				t.Fatalf("expected ErrSeriesMismatch, got %v", err)
			}
		})
	}
}

func mustWidth(t *testing.T, n, w int) history.History {
	t.Helper()
	rows := make([][]int, n)
	for i := range rows {
		rows[i] = make([]int, w)
	}
	h, err := history.FromInts(rows)
	if err != nil {
		t.Fatalf("FromInts: %v", err)
	}
	return h
}

func TestHalfScoreZeroWhenNothingAvailable(t *testing.T) {
	s := NewScorer(DefaultThresholds(), byValue(map[int]Summary{}))
	res := s.ScoreEpoch(Run{Genotype: constant(t, 0, 4)}, Epoch{0, 4})
	if res.Score != 0 || res.Early.Collapsed {
		t.Fatalf("expected zero, uncollapsed epoch, got %+v", res)
	}
}

// #endregion epoch-score-tests

// #region run-score-tests

func TestScoreRunLengthWeighted(t *testing.T) {
	low, high := healthy, healthy
	low.CompositeScore = 0.2
	high.CompositeScore = 0.6
	s := NewScorer(DefaultThresholds(), byValue(map[int]Summary{0: low, 1: high}))

	values := make([]int, 20)
	for i := 5; i < 20; i++ {
		values[i] = 1
	}
	res := s.ScoreRun(Run{Genotype: series(t, values...)}, []int{5})

	if len(res.Epochs) != 2 {
		t.Fatalf("expected 2 epochs, got %d", len(res.Epochs))
	}
	// (0.2*5 + 0.6*15) / 20
	if !approx(res.Score, 0.5) {
		t.Fatalf("expected 0.5, got %f", res.Score)
	}
	if !reflect.DeepEqual(res.Mutations, []int{5}) {
		t.Errorf("mutations %v", res.Mutations)
	}
	if res.Thresholds != DefaultThresholds() {
		t.Errorf("thresholds not echoed: %+v", res.Thresholds)
	}
}

func TestScoreRunEmpty(t *testing.T) {
	s := NewScorer(DefaultThresholds(), byValue(map[int]Summary{0: healthy}))
	res := s.ScoreRun(Run{}, []int{3})
	if res.Score != 0 || len(res.Epochs) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestScorersDoNotShareThresholds(t *testing.T) {
	strict := DefaultThresholds()
	strict.EntropyMin = 0.95
	a := NewScorer(strict, byValue(map[int]Summary{0: healthy}))
	b := NewScorer(DefaultThresholds(), byValue(map[int]Summary{0: healthy}))
	run := Run{Genotype: constant(t, 0, 8)}

	if !a.ScoreEpoch(run, Epoch{0, 8}).Early.Collapsed {
		t.Fatal("strict scorer should flag low entropy")
	}
	if b.ScoreEpoch(run, Epoch{0, 8}).Early.Collapsed {
		t.Fatal("default scorer should be unaffected by another scorer's thresholds")
	}
	if DefaultThresholds().EntropyMin != 0.2 {
		t.Fatal("defaults changed")
	}
}

// #endregion run-score-tests
