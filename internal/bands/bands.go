package bands

import (
	"fmt"

	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/infotheory"
)

// #region column

// ChangeRate returns the fraction of adjacent-generation pairs that differ.
func ChangeRate(col []int) float64 {
	if len(col) < 2 {
		return 0
	}
	changes := 0
	for i := 1; i < len(col); i++ {
		if col[i] != col[i-1] {
			changes++
		}
	}
	return float64(changes) / float64(len(col)-1)
}

// RunLengths returns the mean and max length of maximal constant runs.
func RunLengths(col []int) (float64, int) {
	if len(col) == 0 {
		return 0, 0
	}
	runs, maxRun, cur := 0, 0, 1
	for i := 1; i <= len(col); i++ {
		if i < len(col) && col[i] == col[i-1] {
			cur++
			continue
		}
		runs++
		if cur > maxRun {
			maxRun = cur
		}
		cur = 1
	}
	return float64(len(col)) / float64(runs), maxRun
}

// Classify maps a change rate to an activity class; first match wins.
func Classify(changeRate float64) Activity {
	switch {
	case changeRate < 0.05:
		return ActivityFrozen
	case changeRate > 0.45:
		return ActivityChaotic
	case changeRate > 0.15 && changeRate < 0.45:
		return ActivityModerate
	default:
		return ActivityLow
	}
}

// AnalyzeColumn computes the statistics of one column.
func AnalyzeColumn(idx int, col []int) ColumnAnalysis {
	cr := ChangeRate(col)
	meanRun, maxRun := RunLengths(col)
	return ColumnAnalysis{
		Index:         idx,
		Entropy:       infotheory.ShannonEntropy(col),
		ChangeRate:    cr,
		MeanRunLength: meanRun,
		MaxRunLength:  maxRun,
		Activity:      Classify(cr),
	}
}

// AnalyzeColumns runs AnalyzeColumn over every column of h.
func AnalyzeColumns(h history.History) []ColumnAnalysis {
	out := make([]ColumnAnalysis, h.Width())
	for x := range out {
		out[x] = AnalyzeColumn(x, h.Column(x))
	}
	return out
}

// #endregion column

// #region summarize

// Summarize aggregates column analyses into class ratios and an interpretation.
func Summarize(cols []ColumnAnalysis) Summary {
	n := len(cols)
	if n == 0 {
		return Summary{Interpretation: SparseActivity}
	}
	var frozen, low, moderate, chaotic int
	var entropy, change float64
	for _, c := range cols {
		switch c.Activity {
		case ActivityFrozen:
			frozen++
		case ActivityModerate:
			moderate++
		case ActivityChaotic:
			chaotic++
		default:
			low++
		}
		entropy += c.Entropy
		change += c.ChangeRate
	}
	fn := float64(n)
	s := Summary{
		FrozenRatio:      float64(frozen) / fn,
		LowActivityRatio: float64(low) / fn,
		ModerateRatio:    float64(moderate) / fn,
		ChaoticRatio:     float64(chaotic) / fn,
		MeanEntropy:      entropy / fn,
		MeanChangeRate:   change / fn,
	}
	s.BandScore = s.ModerateRatio

	switch {
	case float64(frozen) > 0.7*fn:
		s.Interpretation = MostlyFrozen
	case float64(chaotic) > 0.5*fn:
		s.Interpretation = MostlyChaotic
	case float64(moderate) > 0.3*fn:
		s.Interpretation = HasActiveBands
	default:
		s.Interpretation = SparseActivity
	}
	return s
}

// #endregion summarize

// #region active-bands

// FindActiveBands returns maximal contiguous runs of moderate columns in
// index order. Columns are expected in index order.
func FindActiveBands(cols []ColumnAnalysis) []Band {
	var out []Band
	start := -1
	for i, c := range cols {
		if c.Activity == ActivityModerate {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, Band{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Band{Start: start, End: len(cols)})
	}
	return out
}

// #endregion active-bands

// #region periodicity

// RowPeriodicity finds the smallest period P in [2, MaxPeriod] such that the
// fraction of rows equal to the row P generations later exceeds MinStrength.
// Histories shorter than 2*MaxPeriod are reported as aperiodic.
func RowPeriodicity(h history.History, cfg PeriodicityConfig) Periodicity {
	n := h.Len()
	if cfg.MaxPeriod < 2 || n < 2*cfg.MaxPeriod {
		return Periodicity{}
	}
	for p := 2; p <= cfg.MaxPeriod; p++ {
		pairs := n - p
		matches := 0
		for t := 0; t < pairs; t++ {
			if h.Row(t).Equal(h.Row(t + p)) {
				matches++
			}
		}
		strength := float64(matches) / float64(pairs)
		if strength > cfg.MinStrength {
			return Periodicity{Periodic: true, Period: p, Strength: strength}
		}
	}
	return Periodicity{}
}

// #endregion periodicity

// #region analyze-history

// AnalyzeHistory composes the column, band and periodicity analyses.
func AnalyzeHistory(h history.History, cfg PeriodicityConfig) (Report, error) {
	if h.Len() == 0 {
		return Report{}, fmt.Errorf("analyze bands: %w", history.ErrEmptyHistory)
	}
	cols := AnalyzeColumns(h)
	active := FindActiveBands(cols)
	rep := Report{
		Generations: h.Len(),
		Columns:     cols,
		Summary:     Summarize(cols),
		ActiveBands: active,
		BandCount:   len(active),
		BandWidths:  make([]int, len(active)),
		Periodicity: RowPeriodicity(h, cfg),
	}
	for i, b := range active {
		rep.BandWidths[i] = b.Width()
		if rep.WidestBand == nil || b.Width() > rep.WidestBand.Width() {
			widest := b
			rep.WidestBand = &widest
		}
	}
	return rep, nil
}

// #endregion analyze-history
