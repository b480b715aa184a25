package bands

// #region activity

// Activity classifies a column by how often its value changes.
type Activity string

const (
	ActivityFrozen   Activity = "frozen"
	ActivityLow      Activity = "low-activity"
	ActivityModerate Activity = "moderate"
	ActivityChaotic  Activity = "chaotic"
)

// #endregion activity

// #region interpretation

// Interpretation summarizes the mix of column activities.
type Interpretation string

const (
	MostlyFrozen   Interpretation = "mostly-frozen"
	MostlyChaotic  Interpretation = "mostly-chaotic"
	HasActiveBands Interpretation = "has-active-bands"
	SparseActivity Interpretation = "sparse-activity"
)

// #endregion interpretation

// #region column

// ColumnAnalysis holds the per-column statistics.
type ColumnAnalysis struct {
	Index         int      `json:"index"`
	Entropy       float64  `json:"entropy"`
	ChangeRate    float64  `json:"change_rate"`
	MeanRunLength float64  `json:"mean_run_length"`
	MaxRunLength  int      `json:"max_run_length"`
	Activity      Activity `json:"activity"`
}

// #endregion column

// #region summary

// Summary aggregates column analyses.
type Summary struct {
	FrozenRatio      float64        `json:"frozen_ratio"`
	LowActivityRatio float64        `json:"low_activity_ratio"`
	ModerateRatio    float64        `json:"moderate_ratio"`
	ChaoticRatio     float64        `json:"chaotic_ratio"`
	MeanEntropy      float64        `json:"mean_entropy"`
	MeanChangeRate   float64        `json:"mean_change_rate"`
	BandScore        float64        `json:"band_score"`
	Interpretation   Interpretation `json:"interpretation"`
}

// #endregion summary

// #region band

// Band is a maximal run of moderate columns, [Start, End).
type Band struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width returns the number of columns in the band.
func (b Band) Width() int { return b.End - b.Start }

// #endregion band

// #region periodicity

// Periodicity is the result of RowPeriodicity.
type Periodicity struct {
	Periodic bool    `json:"periodic"`
	Period   int     `json:"period"`
	Strength float64 `json:"strength"`
}

// PeriodicityConfig bounds the period search.
type PeriodicityConfig struct {
	MaxPeriod   int     `json:"max_period" yaml:"max_period" validate:"gte=2"`
	MinStrength float64 `json:"min_strength" yaml:"min_strength" validate:"gt=0,lte=1"`
}

// DefaultPeriodicityConfig returns max period 20 and strength threshold 0.7.
func DefaultPeriodicityConfig() PeriodicityConfig {
	return PeriodicityConfig{MaxPeriod: 20, MinStrength: 0.7}
}

// #endregion periodicity

// #region report

// Report is the full band analysis of a history.
type Report struct {
	Generations int              `json:"generations"`
	Columns     []ColumnAnalysis `json:"columns"`
	Summary     Summary          `json:"summary"`
	ActiveBands []Band           `json:"active_bands"`
	BandCount   int              `json:"band_count"`
	BandWidths  []int            `json:"band_widths"`
	WidestBand  *Band            `json:"widest_band,omitempty"`
	Periodicity Periodicity      `json:"periodicity"`
}

// Features flattens the report into feature-map entries.
func (r Report) Features() map[string]float64 {
	periodic := 0.0
	if r.Periodicity.Periodic {
		periodic = 1
	}
	return map[string]float64{
		"frozen_ratio":        r.Summary.FrozenRatio,
		"low_activity_ratio":  r.Summary.LowActivityRatio,
		"moderate_ratio":      r.Summary.ModerateRatio,
		"chaotic_ratio":       r.Summary.ChaoticRatio,
		"band_score":          r.Summary.BandScore,
		"mean_column_entropy": r.Summary.MeanEntropy,
		"band_count":          float64(r.BandCount),
		"row_periodic":        periodic,
		"row_period":          float64(r.Periodicity.Period),
		"row_period_strength": r.Periodicity.Strength,
	}
}

// #endregion report
