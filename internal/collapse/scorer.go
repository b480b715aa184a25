package collapse

import "sort"

// #region scorer

// Scorer splits epochs into halves, detects collapse, and scores runs.
type Scorer struct {
	thresholds Thresholds
	summarizer Summarizer
}

// NewScorer creates a scorer with the given thresholds and half summarizer.
func NewScorer(thresholds Thresholds, summarizer Summarizer) *Scorer {
	return &Scorer{thresholds: thresholds, summarizer: summarizer}
}

// Thresholds returns the scorer's configuration.
func (s *Scorer) Thresholds() Thresholds { return s.thresholds }

// #endregion scorer

// #region epochs

// NormalizeTicks sorts and deduplicates mutation ticks, clipping them to
// [0, n]. Ticks at 0 or n do not split the run and are dropped.
func NormalizeTicks(n int, ticks []int) []int {
	out := make([]int, 0, len(ticks))
	for _, t := range ticks {
		if t < 0 {
			t = 0
		}
		if t > n {
			t = n
		}
		if t == 0 || t == n {
			continue
		}
		out = append(out, t)
	}
	sort.Ints(out)
	uniq := out[:0]
	for i, t := range out {
		if i == 0 || t != out[i-1] {
			uniq = append(uniq, t)
		}
	}
	return uniq
}

// Epochs partitions [0, n) at the normalized mutation ticks.
func Epochs(n int, ticks []int) []Epoch {
	if n <= 0 {
		return nil
	}
	bounds := NormalizeTicks(n, ticks)
	out := make([]Epoch, 0, len(bounds)+1)
	start := 0
	for _, b := range bounds {
		out = append(out, Epoch{Start: start, End: b})
		start = b
	}
	return append(out, Epoch{Start: start, End: n})
}

// #endregion epochs

// #region score-epoch

// ScoreEpoch scores one epoch of run. The early half holds floor(len/2)
// generations. The epoch score is the mean of both half scores, multiplied
// by EarlyPenalty if the early half collapsed and by LatePenalty if the late
// half collapsed.
func (s *Scorer) ScoreEpoch(run Run, ep Epoch) EpochResult {
	mid := ep.Start + ep.Len()/2
	early := s.scoreHalf(run, ep.Start, mid)
	late := s.scoreHalf(run, mid, ep.End)

	score := (early.Score + late.Score) / 2
	if early.Collapsed {
		score *= s.thresholds.EarlyPenalty
	}
	if late.Collapsed {
		score *= s.thresholds.LatePenalty
	}
	return EpochResult{Epoch: ep, Early: early, Late: late, Score: score}
}

func (s *Scorer) scoreHalf(run Run, start, end int) HalfResult {
	res := HalfResult{Start: start, End: end}
	var total float64
	var available int

	series := []struct {
		name Series
		dst  **Summary
		h    func() (Summary, bool)
	}{
		{SeriesGenotype, &res.Genotype, func() (Summary, bool) {
			return s.summarizer.Summarize(run.Genotype.Slice(start, end))
		}},
		{SeriesPhenotype, &res.Phenotype, func() (Summary, bool) {
			return s.summarizer.Summarize(run.Phenotype.Slice(start, end))
		}},
	}
	for _, ser := range series {
		sum, ok := ser.h()
		if !ok {
			continue
		}
		summary := sum
		*ser.dst = &summary
		total += sum.CompositeScore
		available++
		res.Reasons = append(res.Reasons, s.collapseReasons(ser.name, sum)...)
	}

	if available > 0 {
		res.Score = total / float64(available)
	}
	res.Collapsed = len(res.Reasons) > 0
	return res
}

// collapseReasons returns every tripped condition, not only the first.
func (s *Scorer) collapseReasons(series Series, sum Summary) []Reason {
	th := s.thresholds
	var out []Reason
	if sum.AvgEntropyN < th.EntropyMin {
		out = append(out, Reason{series, ReasonLowEntropy, sum.AvgEntropyN, th.EntropyMin})
	}
	if sum.AvgChange < th.ChangeMin {
		out = append(out, Reason{series, ReasonLowChange, sum.AvgChange, th.ChangeMin})
	}
	if sum.AvgUnique < th.UniqueMin {
		out = append(out, Reason{series, ReasonLowUnique, sum.AvgUnique, th.UniqueMin})
	}
	if sum.TemporalAutocorr > th.AutocorrMax {
		out = append(out, Reason{series, ReasonHighAutocorr, sum.TemporalAutocorr, th.AutocorrMax})
	}
	return out
}

// #endregion score-epoch

// #region score-run

// ScoreRun partitions the genotype series at the mutation ticks and returns
// the length-weighted mean of the epoch scores.
func (s *Scorer) ScoreRun(run Run, ticks []int) RunResult {
	n := run.Genotype.Len()
	res := RunResult{
		Mutations:  NormalizeTicks(n, ticks),
		Thresholds: s.thresholds,
	}
	if n == 0 {
		return res
	}
	var weighted float64
	for _, ep := range Epochs(n, ticks) {
		er := s.ScoreEpoch(run, ep)
		res.Epochs = append(res.Epochs, er)
		weighted += er.Score * float64(ep.Len())
	}
	res.Score = weighted / float64(n)
	return res
}

// #endregion score-run
