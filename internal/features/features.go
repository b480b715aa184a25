// Package features computes whole-history statistics used as classifier
// signals and as the default per-half summary for collapse scoring.
package features

import (
	"encoding/binary"
	"math"

	"github.com/danielpatrickdp/cadynamics/internal/collapse"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/infotheory"
)

// #region stats

// Stats are history-level statistics. Ratios lie in [0,1]; autocorrelations
// in [-1,1].
type Stats struct {
	ChangeRate        float64 `json:"change_rate"`         // mean fraction of cells changing per step
	EntropyN          float64 `json:"entropy_n"`           // mean column entropy / log2(alphabet)
	RowEntropyN       float64 `json:"row_entropy_n"`       // mean row entropy / log2(alphabet)
	TemporalAutocorr  float64 `json:"temporal_autocorr"`   // mean lag-1 correlation along time
	SpatialAutocorr   float64 `json:"spatial_autocorr"`    // mean lag-1 correlation along space (wrapped)
	UniqueRowFraction float64 `json:"unique_row_fraction"` // distinct rows / rows
}

// Compute derives Stats from h. An empty history yields zero Stats.
func Compute(h history.History) Stats {
	n, w := h.Len(), h.Width()
	if n == 0 || w == 0 {
		return Stats{}
	}
	norm := math.Log2(float64(h.Alphabet()))

	var s Stats
	var colEntropy, temporal float64
	for x := 0; x < w; x++ {
		col := h.Column(x)
		colEntropy += infotheory.ShannonEntropy(col)
		temporal += lagCorrelation(col, false)
	}
	s.EntropyN = clamp01(colEntropy / float64(w) / norm)
	s.TemporalAutocorr = temporal / float64(w)

	var rowEntropy, spatial float64
	seen := make(map[string]struct{}, n)
	for t := 0; t < n; t++ {
		row := h.Row(t)
		rowEntropy += infotheory.ShannonEntropy(row)
		spatial += lagCorrelation(row, true)
		seen[rowKey(row)] = struct{}{}
	}
	s.RowEntropyN = clamp01(rowEntropy / float64(n) / norm)
	s.SpatialAutocorr = spatial / float64(n)
	s.UniqueRowFraction = float64(len(seen)) / float64(n)

	if n > 1 {
		changes := 0
		for t := 1; t < n; t++ {
			prev, cur := h.Row(t-1), h.Row(t)
			for x := 0; x < w; x++ {
				if prev[x] != cur[x] {
					changes++
				}
			}
		}
		s.ChangeRate = float64(changes) / float64((n-1)*w)
	}
	return s
}

// Map returns the stats as feature-map entries.
func (s Stats) Map() map[string]float64 {
	return map[string]float64{
		"change_rate":         s.ChangeRate,
		"entropy_n":           s.EntropyN,
		"row_entropy_n":       s.RowEntropyN,
		"temporal_autocorr":   s.TemporalAutocorr,
		"spatial_autocorr":    s.SpatialAutocorr,
		"unique_row_fraction": s.UniqueRowFraction,
	}
}

// #endregion stats

// #region composite

// CompositeScore blends diversity and activity, discounted by persistence:
//
//	mean(row_entropy_n, min(1, 2*change_rate), unique_row_fraction) * (1 - 0.5*max(0, temporal_autocorr))
func CompositeScore(s Stats) float64 {
	activity := math.Min(1, 2*s.ChangeRate)
	base := (s.RowEntropyN + activity + s.UniqueRowFraction) / 3
	return clamp01(base * (1 - 0.5*math.Max(0, s.TemporalAutocorr)))
}

// HalfSummarizer is the default collapse.Summarizer.
type HalfSummarizer struct{}

// Summarize implements collapse.Summarizer. Empty series are unavailable.
func (HalfSummarizer) Summarize(h history.History) (collapse.Summary, bool) {
	if h.Len() == 0 {
		return collapse.Summary{}, false
	}
	s := Compute(h)
	return collapse.Summary{
		AvgEntropyN:      s.RowEntropyN,
		AvgChange:        s.ChangeRate,
		AvgUnique:        s.UniqueRowFraction,
		TemporalAutocorr: s.TemporalAutocorr,
		CompositeScore:   CompositeScore(s),
	}, true
}

// #endregion composite

// #region helpers

// lagCorrelation is the Pearson correlation between v[i] and v[i+1]
// (v[0] follows v[len-1] when wrap is set). Constant sequences count as
// perfectly persistent.
func lagCorrelation(v []int, wrap bool) float64 {
	pairs := len(v) - 1
	if wrap {
		pairs = len(v)
	}
	if pairs < 1 || len(v) < 2 {
		return 1
	}
	var sa, sb float64
	for i := 0; i < pairs; i++ {
		sa += float64(v[i])
		sb += float64(v[(i+1)%len(v)])
	}
	ma, mb := sa/float64(pairs), sb/float64(pairs)
	var cov, va, vb float64
	for i := 0; i < pairs; i++ {
		da := float64(v[i]) - ma
		db := float64(v[(i+1)%len(v)]) - mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		if va == 0 && vb == 0 {
			return 1
		}
		return 0
	}
	return cov / math.Sqrt(va*vb)
}

// rowKey encodes a row as concatenated varints.
func rowKey(r history.Row) string {
	buf := make([]byte, 0, len(r))
	for _, v := range r {
		buf = binary.AppendVarint(buf, int64(v))
	}
	return string(buf)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
