package wolfram

// Feature-map keys read by the classifier.
const (
	KeyChangeRate       = "change_rate"
	KeyEntropyN         = "entropy_n"
	KeyTemporalAutocorr = "temporal_autocorr"
	KeySpatialAutocorr  = "spatial_autocorr"
	KeyFrozenRatio      = "frozen_ratio"
	KeyModerateRatio    = "moderate_ratio"
	KeyDomainFraction   = "domain_fraction"
	KeyCompressionCV    = "compression_cv"
	KeyParticleCount    = "particle_count"
	KeySpeciesCount     = "species_count"
	KeyMaxLifetime      = "max_lifetime"
	KeyRowPeriodic      = "row_periodic"
)

// Features is the typed classifier input. Missing map entries read as 0.
type Features struct {
	ChangeRate       float64 `json:"change_rate"`
	EntropyN         float64 `json:"entropy_n"`
	TemporalAutocorr float64 `json:"temporal_autocorr"`
	SpatialAutocorr  float64 `json:"spatial_autocorr"`
	FrozenRatio      float64 `json:"frozen_ratio"`
	ModerateRatio    float64 `json:"moderate_ratio"`
	DomainFraction   float64 `json:"domain_fraction"`
	CompressionCV    float64 `json:"compression_cv"`
	ParticleCount    float64 `json:"particle_count"`
	SpeciesCount     float64 `json:"species_count"`
	MaxLifetime      float64 `json:"max_lifetime"`
	RowPeriodic      bool    `json:"row_periodic"`
}

// FeaturesFromMap reads the classifier keys out of a merged feature map.
// row_periodic is true for any value above 0.5.
func FeaturesFromMap(m map[string]float64) Features {
	return Features{
		ChangeRate:       m[KeyChangeRate],
		EntropyN:         m[KeyEntropyN],
		TemporalAutocorr: m[KeyTemporalAutocorr],
		SpatialAutocorr:  m[KeySpatialAutocorr],
		FrozenRatio:      m[KeyFrozenRatio],
		ModerateRatio:    m[KeyModerateRatio],
		DomainFraction:   m[KeyDomainFraction],
		CompressionCV:    m[KeyCompressionCV],
		ParticleCount:    m[KeyParticleCount],
		SpeciesCount:     m[KeySpeciesCount],
		MaxLifetime:      m[KeyMaxLifetime],
		RowPeriodic:      m[KeyRowPeriodic] > 0.5,
	}
}

// Map returns the signal snapshot reported alongside a classification.
func (f Features) Map() map[string]float64 {
	periodic := 0.0
	if f.RowPeriodic {
		periodic = 1
	}
	return map[string]float64{
		KeyChangeRate:       f.ChangeRate,
		KeyEntropyN:         f.EntropyN,
		KeyTemporalAutocorr: f.TemporalAutocorr,
		KeySpatialAutocorr:  f.SpatialAutocorr,
		KeyFrozenRatio:      f.FrozenRatio,
		KeyModerateRatio:    f.ModerateRatio,
		KeyDomainFraction:   f.DomainFraction,
		KeyCompressionCV:    f.CompressionCV,
		KeyParticleCount:    f.ParticleCount,
		KeySpeciesCount:     f.SpeciesCount,
		KeyMaxLifetime:      f.MaxLifetime,
		KeyRowPeriodic:      periodic,
	}
}
