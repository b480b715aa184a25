// Package wolfram scores the four Wolfram class hypotheses against a merged
// feature map and picks the strongest one.
package wolfram

import (
	"fmt"
	"math"
)

const noSignalReasoning = "no strong signal for any class"

// #region classify

// Classify scores every class and returns the strictly highest. Ties go to
// the earlier class. A zero winning score reports Class I with zero
// confidence.
func Classify(f Features) Result {
	verdicts := []Verdict{
		scoreFixedPoint(f),
		scorePeriodic(f),
		scoreChaotic(f),
		scoreComplex(f),
	}

	scores := make(map[string]float64, len(verdicts))
	best := verdicts[0]
	for _, v := range verdicts {
		scores[v.Class.String()] = v.Score
		if v.Score > best.Score {
			best = v
		}
	}

	res := Result{
		Class:      best.Class,
		Confidence: best.Score,
		Scores:     scores,
		Verdicts:   verdicts,
		Signals:    f.Map(),
		Reasoning:  best.Reasoning,
	}
	if best.Score <= 0 {
		res.Class = ClassI
		res.Confidence = 0
		res.Reasoning = noSignalReasoning
	}
	return res
}

// ClassifyMap is Classify over a plain feature map.
func ClassifyMap(m map[string]float64) Result {
	return Classify(FeaturesFromMap(m))
}

// #endregion classify

// #region class-scorers

// scoreFixedPoint: Class I when almost nothing changes and almost every
// column is frozen.
func scoreFixedPoint(f Features) Verdict {
	v := Verdict{
		Class:    ClassI,
		Match:    MatchNone,
		Evidence: FixedPointEvidence{ChangeRate: f.ChangeRate, FrozenRatio: f.FrozenRatio},
	}
	if f.ChangeRate < 0.05 && f.FrozenRatio > 0.9 {
		v.Score = f.FrozenRatio
		v.Match = MatchFull
		v.Reasoning = fmt.Sprintf("fixed point: change_rate %.3f < 0.05 and frozen_ratio %.3f > 0.9",
			f.ChangeRate, f.FrozenRatio)
		return v
	}
	v.Reasoning = fmt.Sprintf("not fixed: change_rate %.3f, frozen_ratio %.3f", f.ChangeRate, f.FrozenRatio)
	return v
}

// scorePeriodic: Class II on a periodic or domain-covered run without
// particles, or partially on a mostly frozen one.
func scorePeriodic(f Features) Verdict {
	v := Verdict{
		Class: ClassII,
		Match: MatchNone,
		Evidence: PeriodicEvidence{
			RowPeriodic:    f.RowPeriodic,
			DomainFraction: f.DomainFraction,
			ParticleCount:  f.ParticleCount,
			ChangeRate:     f.ChangeRate,
			FrozenRatio:    f.FrozenRatio,
		},
	}

	// 1. Full: repeating rows or a domain covering the grid, nothing moving through it
	if (f.RowPeriodic || f.DomainFraction > 0.9) && f.ParticleCount == 0 && f.ChangeRate < 0.4 {
		score := f.DomainFraction
		if f.RowPeriodic {
			score = math.Max(score, 0.9)
		}
		v.Score = score
		v.Match = MatchFull
		v.Reasoning = fmt.Sprintf("periodic: row_periodic=%t domain_fraction %.3f, no particles, change_rate %.3f < 0.4",
			f.RowPeriodic, f.DomainFraction, f.ChangeRate)
		return v
	}

	// 2. Partial: mostly frozen with slow change
	if f.FrozenRatio > 0.7 && f.ChangeRate < 0.3 {
		v.Score = 0.7 * f.FrozenRatio
		v.Match = MatchPartial
		v.Reasoning = fmt.Sprintf("partially periodic: frozen_ratio %.3f > 0.7 and change_rate %.3f < 0.3",
			f.FrozenRatio, f.ChangeRate)
		return v
	}

	v.Reasoning = fmt.Sprintf("not periodic: row_periodic=%t domain_fraction %.3f particles %.0f",
		f.RowPeriodic, f.DomainFraction, f.ParticleCount)
	return v
}

// scoreChaotic: Class III when no domain forms, the run is incompressible
// and most cells keep changing.
func scoreChaotic(f Features) Verdict {
	v := Verdict{
		Class: ClassIII,
		Match: MatchNone,
		Evidence: ChaoticEvidence{
			DomainFraction: f.DomainFraction,
			CompressionCV:  f.CompressionCV,
			ChangeRate:     f.ChangeRate,
			EntropyN:       f.EntropyN,
		},
	}

	// 1. Full: no domain, uniform compressibility, high activity
	if f.DomainFraction < 0.3 && f.CompressionCV < 0.15 && f.ChangeRate > 0.4 {
		v.Score = (1 - f.DomainFraction) * (1 - f.CompressionCV)
		v.Match = MatchFull
		v.Reasoning = fmt.Sprintf("chaotic: domain_fraction %.3f < 0.3, compression_cv %.3f < 0.15, change_rate %.3f > 0.4",
			f.DomainFraction, f.CompressionCV, f.ChangeRate)
		return v
	}

	// 2. Partial: high entropy and high activity
	if f.EntropyN > 0.8 && f.ChangeRate > 0.5 {
		v.Score = 0.5 * f.EntropyN * f.ChangeRate
		v.Match = MatchPartial
		v.Reasoning = fmt.Sprintf("partially chaotic: entropy_n %.3f > 0.8 and change_rate %.3f > 0.5",
			f.EntropyN, f.ChangeRate)
		return v
	}

	v.Reasoning = fmt.Sprintf("not chaotic: domain_fraction %.3f compression_cv %.3f change_rate %.3f",
		f.DomainFraction, f.CompressionCV, f.ChangeRate)
	return v
}

// scoreComplex: Class IV when particles travel over a partial domain. The
// composite rewards a domain fraction near 0.75 and a rich particle
// population:
//
//	min(1, 0.4 + 2*(0.3*domain_fit*(0.3*particle_norm + 0.3*species_norm + 0.2*lifetime_norm + 0.2*min(1, cv))))
func scoreComplex(f Features) Verdict {
	ev := ComplexEvidence{
		DomainFit:     math.Max(0, 1-math.Abs(f.DomainFraction-0.75)/0.75),
		ParticleNorm:  math.Tanh(f.ParticleCount / 5),
		SpeciesNorm:   math.Min(1, f.SpeciesCount/3),
		LifetimeNorm:  math.Min(1, f.MaxLifetime/10),
		CompressionCV: f.CompressionCV,
	}
	v := Verdict{Class: ClassIV, Match: MatchNone, Evidence: ev}

	// 1. Full: partial domain with particles on it
	if f.DomainFraction > 0.3 && f.DomainFraction < 0.98 && f.ParticleCount > 0 {
		structure := 0.3*ev.ParticleNorm + 0.3*ev.SpeciesNorm + 0.2*ev.LifetimeNorm + 0.2*math.Min(1, f.CompressionCV)
		v.Score = math.Min(1, 0.4+2*(0.3*ev.DomainFit*structure))
		v.Match = MatchFull
		v.Reasoning = fmt.Sprintf("complex: domain_fraction %.3f with %.0f particles, %.0f species, max lifetime %.0f",
			f.DomainFraction, f.ParticleCount, f.SpeciesCount, f.MaxLifetime)
		return v
	}

	// 2. Weak: particles without a usable domain
	if f.ParticleCount > 0 {
		v.Score = 0.3 * ev.ParticleNorm
		v.Match = MatchPartial
		v.Reasoning = fmt.Sprintf("weakly complex: %.0f particles but domain_fraction %.3f outside (0.3, 0.98)",
			f.ParticleCount, f.DomainFraction)
		return v
	}

	v.Reasoning = "not complex: no particles"
	return v
}

// #endregion class-scorers
