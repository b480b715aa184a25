// Package rulehint derives structural properties of elementary (binary,
// radius-1) cellular automaton rules and guesses their Wolfram class from
// them.
package rulehint

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region rule-number

// ErrRuleRange is returned for rule numbers outside [0,255].
var ErrRuleRange = errors.New("rule number must be in [0,255]")

// FromRule expands a Wolfram rule number into its truth table.
func FromRule(rule int) (TruthTable, error) {
	var tt TruthTable
	if rule < 0 || rule > 255 {
		return tt, fmt.Errorf("rule %d: %w", rule, ErrRuleRange)
	}
	for i := 0; i < 8; i++ {
		tt[i] = (rule >> (7 - i)) & 1
	}
	return tt, nil
}

// Rule returns the Wolfram rule number of the table.
func (tt TruthTable) Rule() int {
	rule := 0
	for i, v := range tt {
		rule |= (v & 1) << (7 - i)
	}
	return rule
}

// Apply evaluates the rule on a neighborhood.
func (tt TruthTable) Apply(n Neighborhood) int {
	return tt[7-n.index()]
}

// #endregion rule-number

// #region properties

// Affine reports whether f(a^b) == f(a)^f(b) holds for every pair of
// inputs. On failure detail names the first counterexample.
func (tt TruthTable) Affine() (ok bool, detail string) {
	for a := 0; a < 8; a++ {
		for b := 0; b < 8; b++ {
			na, nb, nx := neighborhoodOf(a), neighborhoodOf(b), neighborhoodOf(a^b)
			fx := tt.Apply(nx)
			fa, fb := tt.Apply(na), tt.Apply(nb)
			if fx != fa^fb {
				return false, fmt.Sprintf("f(%s XOR %s) = f(%s) = %d, but f(%s) XOR f(%s) = %d XOR %d = %d: nonlinear",
					na, nb, nx, fx, na, nb, fa, fb, fa^fb)
			}
		}
	}
	return true, "all f(a XOR b) = f(a) XOR f(b) checks passed: linear/affine over GF(2)"
}

// Surjective reports whether both output values occur.
func (tt TruthTable) Surjective() (ok bool, detail string) {
	ones := 0
	for _, v := range tt {
		ones += v
	}
	switch ones {
	case 0:
		return false, "output is constant 0: not surjective"
	case 8:
		return false, "output is constant 1: not surjective"
	}
	return true, fmt.Sprintf("output has %d ones and %d zeros: surjective", ones, 8-ones)
}

// Sensitivity flips each input bit of every neighborhood and records how
// often the output changes.
func (tt TruthTable) Sensitivity() Sensitivity {
	s := Sensitivity{Min: 1}
	var sum float64
	for i := 0; i < 8; i++ {
		n := neighborhoodOf(i)
		base := tt.Apply(n)
		flips := 0
		for _, m := range []Neighborhood{
			{1 - n.L, n.C, n.R},
			{n.L, 1 - n.C, n.R},
			{n.L, n.C, 1 - n.R},
		} {
			if tt.Apply(m) != base {
				flips++
			}
		}
		v := float64(flips) / 3
		s.PerInput[i] = v
		sum += v
		if v > s.Max {
			s.Max = v
		}
		if v < s.Min {
			s.Min = v
		}
	}
	s.Mean = sum / 8
	return s
}

// #endregion properties

// #region hint

// knownClasses holds the commonly cited classes of well-studied rules.
var knownClasses = map[int]wolfram.Class{}

func init() {
	for class, rules := range map[wolfram.Class][]int{
		wolfram.ClassI: {0, 255, 1, 2, 4, 8, 32, 128, 136, 160, 254},
		wolfram.ClassII: {
			3, 5, 6, 7, 9, 10, 11, 12, 13, 14, 15, 19, 23, 24, 25, 26, 27, 28, 29,
			33, 34, 35, 36, 37, 38, 42, 43, 44, 46, 50, 51, 56, 57, 58, 62,
			72, 73, 74, 76, 77, 78, 94, 104, 108, 130, 132, 134, 138, 140, 142,
			152, 154, 156, 162, 164, 170, 172, 178, 184, 200, 204, 232,
		},
		wolfram.ClassIII: {18, 22, 30, 45, 60, 75, 86, 90, 105, 122, 126, 146, 150, 182},
		wolfram.ClassIV:  {41, 54, 106, 110},
	} {
		for _, r := range rules {
			knownClasses[r] = class
		}
	}
}

// KnownClass returns the tabulated class of rule, if any.
func KnownClass(rule int) (wolfram.Class, bool) {
	c, ok := knownClasses[rule]
	return c, ok
}

// Guess combines the structural properties into a class hint. Tabulated
// rules win outright; otherwise constant rules are I, affine rules split on
// mean sensitivity 0.5 between III and II, and nonlinear rules fall into
// IV / II / I at 0.5 and 0.25.
func Guess(rule int, affine, surjective bool, sens Sensitivity) Hint {
	if c, ok := KnownClass(rule); ok {
		return Hint{Class: c, Confidence: 0.95, Known: true,
			Reasoning: fmt.Sprintf("rule %d is a known Wolfram class %s rule", rule, c)}
	}
	if !surjective {
		return Hint{Class: wolfram.ClassI, Confidence: 0.9, Reasoning: "constant output function: class I"}
	}

	m := sens.Mean
	if affine {
		if m > 0.5 {
			return Hint{Class: wolfram.ClassIII, Confidence: 0.7,
				Reasoning: fmt.Sprintf("affine over GF(2) with high sensitivity (%.3f): chaotic class III", m)}
		}
		return Hint{Class: wolfram.ClassII, Confidence: 0.6,
			Reasoning: fmt.Sprintf("affine over GF(2) with moderate sensitivity (%.3f): periodic class II", m)}
	}

	switch {
	case m > 0.5:
		return Hint{Class: wolfram.ClassIV, Confidence: 0.5,
			Reasoning: fmt.Sprintf("nonlinear with high mean sensitivity (%.3f): class IV candidate", m)}
	case m > 0.25:
		return Hint{Class: wolfram.ClassII, Confidence: 0.5,
			Reasoning: fmt.Sprintf("nonlinear with moderate sensitivity (%.3f): likely class II", m)}
	default:
		return Hint{Class: wolfram.ClassI, Confidence: 0.6,
			Reasoning: fmt.Sprintf("nonlinear but low sensitivity (%.3f): likely class I/II", m)}
	}
}

// #endregion hint

// #region analyze

// Analyze runs every structural check on tt.
func Analyze(tt TruthTable) Report {
	r := Report{Rule: tt.Rule(), TruthTable: tt}
	r.Affine, r.AffineDetail = tt.Affine()
	r.Surjective, r.SurjectiveDetail = tt.Surjective()
	r.Sensitivity = tt.Sensitivity()
	r.SensitivityDetail = fmt.Sprintf("mean sensitivity %.3f: each input flip changes the output %.0f%% of the time",
		r.Sensitivity.Mean, r.Sensitivity.Mean*100)
	r.Hint = Guess(r.Rule, r.Affine, r.Surjective, r.Sensitivity)
	return r
}

// AnalyzeRule is Analyze over a rule number.
func AnalyzeRule(rule int) (Report, error) {
	tt, err := FromRule(rule)
	if err != nil {
		return Report{}, err
	}
	return Analyze(tt), nil
}

// #endregion analyze
