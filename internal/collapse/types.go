package collapse

import (
	"fmt"

	"github.com/danielpatrickdp/cadynamics/internal/history"
)

// #region summarizer-interface

// Summary is the composite description of one half-epoch series.
type Summary struct {
	AvgEntropyN      float64 `json:"avg_entropy_n"`
	AvgChange        float64 `json:"avg_change"`
	AvgUnique        float64 `json:"avg_unique"`
	TemporalAutocorr float64 `json:"temporal_autocorr"`
	CompositeScore   float64 `json:"composite_score"`
}

// Summarizer abstracts the per-half summary so Scorer can be tested with
// fixed summaries. ok is false when the series has nothing to summarize.
type Summarizer interface {
	Summarize(h history.History) (s Summary, ok bool)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(h history.History) (Summary, bool)

// Summarize calls f(h).
func (f SummarizerFunc) Summarize(h history.History) (Summary, bool) { return f(h) }

// #endregion summarizer-interface

// #region thresholds

// Thresholds holds collapse detection limits and penalties. Values are passed
// explicitly to NewScorer; there is no shared mutable default.
type Thresholds struct {
	EntropyMin   float64 `json:"entropy_min" yaml:"entropy_min" validate:"gte=0,lte=1"`
	ChangeMin    float64 `json:"change_min" yaml:"change_min" validate:"gte=0,lte=1"`
	UniqueMin    float64 `json:"unique_min" yaml:"unique_min" validate:"gte=0,lte=1"`
	AutocorrMax  float64 `json:"autocorr_max" yaml:"autocorr_max" validate:"gte=-1,lte=1"`
	EarlyPenalty float64 `json:"early_penalty" yaml:"early_penalty" validate:"gte=0,lte=1"`
	LatePenalty  float64 `json:"late_penalty" yaml:"late_penalty" validate:"gte=0,lte=1"`
}

// DefaultThresholds returns a fresh copy of the default limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EntropyMin:   0.2,
		ChangeMin:    0.05,
		UniqueMin:    0.1,
		AutocorrMax:  0.95,
		EarlyPenalty: 0.75,
		LatePenalty:  0.5,
	}
}

// #endregion thresholds

// #region reason

// ReasonKind names a collapse condition.
type ReasonKind string

const (
	ReasonLowEntropy   ReasonKind = "low_entropy"
	ReasonLowChange    ReasonKind = "low_change"
	ReasonLowUnique    ReasonKind = "low_unique"
	ReasonHighAutocorr ReasonKind = "high_autocorr"
)

// Series identifies which input series a reason came from.
type Series string

const (
	SeriesGenotype  Series = "genotype"
	SeriesPhenotype Series = "phenotype"
)

// Reason records one tripped collapse condition.
type Reason struct {
	Series    Series     `json:"series"`
	Kind      ReasonKind `json:"kind"`
	Value     float64    `json:"value"`
	Threshold float64    `json:"threshold"`
}

// #endregion reason

// #region results

// Epoch is a half-open generation range [Start, End).
type Epoch struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns End - Start.
func (e Epoch) Len() int { return e.End - e.Start }

// HalfResult is the scored early or late half of an epoch.
type HalfResult struct {
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Score     float64  `json:"score"`
	Collapsed bool     `json:"collapsed"`
	Reasons   []Reason `json:"reasons,omitempty"`
	Genotype  *Summary `json:"genotype,omitempty"`
	Phenotype *Summary `json:"phenotype,omitempty"`
}

// EpochResult is the scored epoch.
type EpochResult struct {
	Epoch
	Early HalfResult `json:"early"`
	Late  HalfResult `json:"late"`
	Score float64    `json:"score"`
}

// RunResult is the length-weighted score across all epochs of a run.
type RunResult struct {
	Score      float64       `json:"score"`
	Epochs     []EpochResult `json:"epochs"`
	Mutations  []int         `json:"mutations"`
	Thresholds Thresholds    `json:"thresholds"`
}

// Run is the pair of series scored together. Phenotype may be empty;
// otherwise it has the genotype's length and width.
type Run struct {
	Genotype  history.History
	Phenotype history.History
}

// Check reports a phenotype whose shape differs from the genotype.
func (r Run) Check() error {
	g, p := r.Genotype, r.Phenotype
	if p.Len() == 0 || (p.Len() == g.Len() && p.Width() == g.Width()) {
		return nil
	}
	return fmt.Errorf("phenotype is %dx%d, genotype %dx%d: %w",
		p.Len(), p.Width(), g.Len(), g.Width(), history.ErrSeriesMismatch)
}

// #endregion results
