package infotheory

// #region options

// Options holds the embedding parameters shared by the information measures.
type Options struct {
	K      int `json:"k" yaml:"k" validate:"gte=1,lte=8"`           // past window length
	Radius int `json:"radius" yaml:"radius" validate:"gte=1,lte=8"` // neighbors on each side
}

// DefaultOptions returns k=1, radius=1 (left/right neighbors).
func DefaultOptions() Options {
	return Options{K: 1, Radius: 1}
}

// #endregion options

// #region ais-result

// AISResult is the per-cell active information storage of a history.
type AISResult struct {
	Mean    float64   `json:"mean"`
	Max     float64   `json:"max"`
	PerCell []float64 `json:"per_cell"`
}

// #endregion ais-result

// #region te-summary

// TESummary aggregates per-cell transfer entropy.
type TESummary struct {
	MeanTE                    float64   `json:"mean_te"`
	MaxTE                     float64   `json:"max_te"`
	TEVariance                float64   `json:"te_variance"`
	HighTEFraction            float64   `json:"high_te_fraction"`
	InformationTransportScore float64   `json:"information_transport_score"`
	PerCell                   []float64 `json:"per_cell"`
}

// #endregion te-summary

// #region report

// Report bundles transfer entropy and active information storage.
type Report struct {
	TransferEntropy           TESummary `json:"transfer_entropy"`
	ActiveInfoStorage         AISResult `json:"active_info_storage"`
	InformationTransportScore float64   `json:"information_transport_score"`
}

// Features flattens the report into feature-map entries.
func (r Report) Features() map[string]float64 {
	return map[string]float64{
		"mean_te":                     r.TransferEntropy.MeanTE,
		"max_te":                      r.TransferEntropy.MaxTE,
		"te_variance":                 r.TransferEntropy.TEVariance,
		"high_te_fraction":            r.TransferEntropy.HighTEFraction,
		"information_transport_score": r.InformationTransportScore,
		"ais_mean":                    r.ActiveInfoStorage.Mean,
		"ais_max":                     r.ActiveInfoStorage.Max,
	}
}

// #endregion report
