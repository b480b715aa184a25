package analysis

import (
	"time"

	"github.com/danielpatrickdp/cadynamics/internal/bands"
	"github.com/danielpatrickdp/cadynamics/internal/collapse"
	"github.com/danielpatrickdp/cadynamics/internal/features"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/infotheory"
	"github.com/danielpatrickdp/cadynamics/internal/rulehint"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region config

// Config bundles the per-stage settings of the pipeline.
type Config struct {
	Info             infotheory.Options      `json:"info" yaml:"info" validate:"required"`
	Periodicity      bands.PeriodicityConfig `json:"periodicity" yaml:"periodicity" validate:"required"`
	Collapse         collapse.Thresholds     `json:"collapse" yaml:"collapse" validate:"required"`
	BatchConcurrency int                     `json:"batch_concurrency" yaml:"batch_concurrency" validate:"gte=1,lte=256"`
}

// DefaultConfig returns the default settings of every stage.
func DefaultConfig() Config {
	return Config{
		Info:             infotheory.DefaultOptions(),
		Periodicity:      bands.DefaultPeriodicityConfig(),
		Collapse:         collapse.DefaultThresholds(),
		BatchConcurrency: 4,
	}
}

// #endregion config

// #region input

// Collaborators are metrics computed outside this module by the domain
// detector, particle tracker and compressibility estimator.
type Collaborators struct {
	DomainFraction float64 `json:"domain_fraction" validate:"gte=0,lte=1"`
	CompressionCV  float64 `json:"compression_cv" validate:"gte=0"`
	ParticleCount  float64 `json:"particle_count" validate:"gte=0"`
	SpeciesCount   float64 `json:"species_count" validate:"gte=0"`
	MaxLifetime    float64 `json:"max_lifetime" validate:"gte=0"`
}

// Map returns the collaborator metrics as feature-map entries.
func (c Collaborators) Map() map[string]float64 {
	return map[string]float64{
		wolfram.KeyDomainFraction: c.DomainFraction,
		wolfram.KeyCompressionCV:  c.CompressionCV,
		wolfram.KeyParticleCount:  c.ParticleCount,
		wolfram.KeySpeciesCount:   c.SpeciesCount,
		wolfram.KeyMaxLifetime:    c.MaxLifetime,
	}
}

// Input is one run to analyze. Phenotype, Mutations and Rule are optional.
type Input struct {
	Source        string          `json:"source,omitempty"`
	Genotype      history.History `json:"genotype"`
	Phenotype     history.History `json:"phenotype,omitempty"`
	Mutations     []int           `json:"mutations,omitempty"`
	Collaborators Collaborators   `json:"collaborators"`
	Rule          *int            `json:"rule,omitempty" validate:"omitempty,gte=0,lte=255"`
}

// #endregion input

// #region report

// Report is the complete analysis of one run.
type Report struct {
	ID             string             `json:"id"`
	Source         string             `json:"source,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	Generations    int                `json:"generations"`
	Width          int                `json:"width"`
	Bands          bands.Report       `json:"bands"`
	Info           infotheory.Report  `json:"info"`
	Stats          features.Stats     `json:"stats"`
	Features       map[string]float64 `json:"features"`
	Classification wolfram.Result     `json:"classification"`
	Collapse       collapse.RunResult `json:"collapse"`
	RuleHint       *rulehint.Report   `json:"rule_hint,omitempty"`
	DurationMS     float64            `json:"duration_ms"`
}

// #endregion report
