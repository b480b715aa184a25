package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Config      FixtureConfig `json:"config"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureConfig overrides analysis settings. Zero values keep the defaults.
type FixtureConfig struct {
	K           int               `json:"k"`
	Radius      int               `json:"radius"`
	MaxPeriod   int               `json:"max_period"`
	MinStrength float64           `json:"min_strength"`
	Penalties   *FixturePenalties `json:"collapse_penalties,omitempty"`
}

// FixturePenalties overrides the collapse penalties.
type FixturePenalties struct {
	EarlyPenalty float64 `json:"early_penalty"`
	LatePenalty  float64 `json:"late_penalty"`
}

// FixtureCase is one recorded run and the outcome it must reproduce.
type FixtureCase struct {
	Name          string                 `json:"name"`
	Genotype      history.History        `json:"genotype"`
	Phenotype     history.History        `json:"phenotype"`
	Mutations     []int                  `json:"mutations"`
	Collaborators analysis.Collaborators `json:"collaborators"`
	Rule          *int                   `json:"rule,omitempty"`
	Expected      FixtureExpected        `json:"expected"`
}

// FixtureExpected captures the expected classification of a case.
type FixtureExpected struct {
	Class         wolfram.Class  `json:"class"`
	MinConfidence float64        `json:"min_confidence"`
	RuleHint      *wolfram.Class `json:"rule_hint,omitempty"`
	Periodic      *bool          `json:"periodic,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToInput converts a FixtureCase to a pipeline Input.
func (fc *FixtureCase) ToInput() analysis.Input {
	return analysis.Input{
		Source:        fc.Name,
		Genotype:      fc.Genotype,
		Phenotype:     fc.Phenotype,
		Mutations:     fc.Mutations,
		Collaborators: fc.Collaborators,
		Rule:          fc.Rule,
	}
}

// ToAnalysisConfig applies the fixture overrides to base.
func (fc *FixtureConfig) ToAnalysisConfig(base analysis.Config) analysis.Config {
	cfg := base
	if fc.K > 0 {
		cfg.Info.K = fc.K
	}
	if fc.Radius > 0 {
		cfg.Info.Radius = fc.Radius
	}
	if fc.MaxPeriod > 0 {
		cfg.Periodicity.MaxPeriod = fc.MaxPeriod
	}
	if fc.MinStrength > 0 {
		cfg.Periodicity.MinStrength = fc.MinStrength
	}
	if fc.Penalties != nil {
		cfg.Collapse.EarlyPenalty = fc.Penalties.EarlyPenalty
		cfg.Collapse.LatePenalty = fc.Penalties.LatePenalty
	}
	return cfg
}

// #endregion fixture-loader
