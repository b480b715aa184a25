package infotheory

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/cadynamics/internal/history"
)

// #region te-summary

// Summarize computes per-cell transfer entropy (mean over the 2*radius wrapped
// neighbors of each cell) and aggregates it. The transport score is
//
//	tanh(3 * (0.5*tanh(5*sqrt(variance)) + 0.5*high_te_fraction))
//
// where variance divides by width-1 (1 for a single cell) and
// high_te_fraction is the share of cells whose TE exceeds twice the mean.
func Summarize(h history.History, k, radius int) TESummary {
	w := h.Width()
	sum := TESummary{PerCell: make([]float64, w)}
	if w == 0 || radius < 1 {
		return sum
	}

	var total float64
	for x := 0; x < w; x++ {
		var te float64
		for d := 1; d <= radius; d++ {
			te += TransferEntropy(h, x-d, x, k)
			te += TransferEntropy(h, x+d, x, k)
		}
		te /= float64(2 * radius)
		sum.PerCell[x] = te
		total += te
		if te > sum.MaxTE {
			sum.MaxTE = te
		}
	}
	sum.MeanTE = total / float64(w)

	denom := float64(w - 1)
	if w == 1 {
		denom = 1
	}
	var sq float64
	high := 0
	for _, te := range sum.PerCell {
		d := te - sum.MeanTE
		sq += d * d
		if te > 2*sum.MeanTE {
			high++
		}
	}
	sum.TEVariance = sq / denom
	sum.HighTEFraction = float64(high) / float64(w)
	sum.InformationTransportScore = TransportScore(sum.TEVariance, sum.HighTEFraction)
	return sum
}

// TransportScore is the bounded composite used by the classifier.
func TransportScore(variance, highFraction float64) float64 {
	if variance < 0 {
		variance = 0
	}
	return math.Tanh(3 * (0.5*math.Tanh(5*math.Sqrt(variance)) + 0.5*highFraction))
}

// #endregion te-summary

// #region analyze

// Analyze runs the transfer-entropy summary and active information storage
// over h. It fails only for an empty history.
func Analyze(h history.History, opts Options) (Report, error) {
	if h.Len() == 0 {
		return Report{}, fmt.Errorf("analyze info dynamics: %w", history.ErrEmptyHistory)
	}
	te := Summarize(h, opts.K, opts.Radius)
	return Report{
		TransferEntropy:           te,
		ActiveInfoStorage:         ActiveInformationStorage(h, opts.K),
		InformationTransportScore: te.InformationTransportScore,
	}, nil
}

// #endregion analyze
