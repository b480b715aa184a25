package rulehint

import "github.com/danielpatrickdp/cadynamics/internal/wolfram"

// #region truth-table

// TruthTable is an elementary rule's output in Wolfram order: index 0 is
// f(1,1,1) and index 7 is f(0,0,0).
type TruthTable [8]int

// Neighborhood is a (left, center, right) input triple.
type Neighborhood struct {
	L, C, R int
}

func (n Neighborhood) index() int { return n.L<<2 | n.C<<1 | n.R }

func (n Neighborhood) String() string {
	return string([]byte{byte('0' + n.L), byte('0' + n.C), byte('0' + n.R)})
}

func neighborhoodOf(i int) Neighborhood {
	return Neighborhood{L: (i >> 2) & 1, C: (i >> 1) & 1, R: i & 1}
}

// #endregion truth-table

// #region sensitivity

// Sensitivity is the flip-sensitivity profile of a rule: for each input the
// fraction of single-bit flips that change the output. PerInput is indexed
// by L*4+C*2+R.
type Sensitivity struct {
	Mean     float64    `json:"mean"`
	Max      float64    `json:"max"`
	Min      float64    `json:"min"`
	PerInput [8]float64 `json:"per_input"`
}

// #endregion sensitivity

// #region report

// Hint is a structural class guess with its confidence.
type Hint struct {
	Class      wolfram.Class `json:"class"`
	Confidence float64       `json:"confidence"`
	Known      bool          `json:"known"`
	Reasoning  string        `json:"reasoning"`
}

// Report is the full structural analysis of an elementary rule.
type Report struct {
	Rule              int         `json:"rule"`
	TruthTable        TruthTable  `json:"truth_table"`
	Affine            bool        `json:"affine"`
	AffineDetail      string      `json:"affine_detail"`
	Surjective        bool        `json:"surjective"`
	SurjectiveDetail  string      `json:"surjective_detail"`
	Sensitivity       Sensitivity `json:"sensitivity"`
	SensitivityDetail string      `json:"sensitivity_detail"`
	Hint              Hint        `json:"hint"`
	Formula           string      `json:"formula,omitempty"`
	WiringID          string      `json:"wiring_id,omitempty"`
}

// #endregion report
