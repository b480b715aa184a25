package wolfram

import "fmt"

// #region class

// Class is a Wolfram dynamical class.
type Class int

const (
	ClassI Class = iota + 1
	ClassII
	ClassIII
	ClassIV
)

// Classes lists every class in tie-break order.
var Classes = []Class{ClassI, ClassII, ClassIII, ClassIV}

func (c Class) String() string {
	switch c {
	case ClassI:
		return "I"
	case ClassII:
		return "II"
	case ClassIII:
		return "III"
	case ClassIV:
		return "IV"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Name is the behavioral label of the class.
func (c Class) Name() string {
	switch c {
	case ClassI:
		return "fixed-point"
	case ClassII:
		return "periodic"
	case ClassIII:
		return "chaotic"
	case ClassIV:
		return "complex"
	}
	return "unknown"
}

// MarshalText encodes the class as its roman numeral.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts a roman numeral.
func (c *Class) UnmarshalText(b []byte) error {
	p, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = p
	return nil
}

// ParseClass parses "I".."IV".
func ParseClass(s string) (Class, error) {
	for _, c := range Classes {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("parse class %q: unknown wolfram class", s)
}

// #endregion class

// #region match

// Match grades how completely a class hypothesis fired.
type Match string

const (
	MatchNone    Match = "none"
	MatchPartial Match = "partial"
	MatchFull    Match = "full"
)

// #endregion match

// #region evidence

// Evidence carries the inputs a class scorer looked at. The set of
// implementations is closed to this package.
type Evidence interface {
	Class() Class
	isEvidence()
}

// FixedPointEvidence backs a Class I verdict.
type FixedPointEvidence struct {
	ChangeRate  float64 `json:"change_rate"`
	FrozenRatio float64 `json:"frozen_ratio"`
}

// PeriodicEvidence backs a Class II verdict.
type PeriodicEvidence struct {
	RowPeriodic    bool    `json:"row_periodic"`
	DomainFraction float64 `json:"domain_fraction"`
	ParticleCount  float64 `json:"particle_count"`
	ChangeRate     float64 `json:"change_rate"`
	FrozenRatio    float64 `json:"frozen_ratio"`
}

// ChaoticEvidence backs a Class III verdict.
type ChaoticEvidence struct {
	DomainFraction float64 `json:"domain_fraction"`
	CompressionCV  float64 `json:"compression_cv"`
	ChangeRate     float64 `json:"change_rate"`
	EntropyN       float64 `json:"entropy_n"`
}

// ComplexEvidence backs a Class IV verdict with its normalized terms.
type ComplexEvidence struct {
	DomainFit     float64 `json:"domain_fit"`
	ParticleNorm  float64 `json:"particle_norm"`
	SpeciesNorm   float64 `json:"species_norm"`
	LifetimeNorm  float64 `json:"lifetime_norm"`
	CompressionCV float64 `json:"compression_cv"`
}

func (FixedPointEvidence) Class() Class { return ClassI }
func (PeriodicEvidence) Class() Class   { return ClassII }
func (ChaoticEvidence) Class() Class    { return ClassIII }
func (ComplexEvidence) Class() Class    { return ClassIV }

func (FixedPointEvidence) isEvidence() {}
func (PeriodicEvidence) isEvidence()   {}
func (ChaoticEvidence) isEvidence()    {}
func (ComplexEvidence) isEvidence()    {}

// #endregion evidence

// #region verdict

// Verdict is one class hypothesis outcome.
type Verdict struct {
	Class     Class    `json:"class"`
	Score     float64  `json:"score"`
	Match     Match    `json:"match"`
	Evidence  Evidence `json:"evidence"`
	Reasoning string   `json:"reasoning"`
}

// Result is the classifier output.
type Result struct {
	Class      Class              `json:"class"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
	Verdicts   []Verdict          `json:"verdicts"`
	Signals    map[string]float64 `json:"signals"`
	Reasoning  string             `json:"reasoning"`
}

// Score returns the score computed for c.
func (r Result) Score(c Class) float64 { return r.Scores[c.String()] }

// #endregion verdict
