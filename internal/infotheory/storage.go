package infotheory

import "github.com/danielpatrickdp/cadynamics/internal/history"

// #region active-information-storage

// ActiveInformationStorage returns, per cell x, the mutual information between
// the k-step past of x and its present value:
//
//	AIS(x) = H(present) + H(past) - H(past, present)
//
// Histories shorter than k+1 generations yield an all-zero result.
func ActiveInformationStorage(h history.History, k int) AISResult {
	w := h.Width()
	res := AISResult{PerCell: make([]float64, w)}
	if k < 1 || w == 0 || h.Len() < k+1 {
		return res
	}

	past := indexRange(0, k)
	present := []int{k}
	var sum float64
	for x := 0; x < w; x++ {
		joint := BuildJoint(h, []int{x}, x, k)
		mi := Entropy(Marginalize(joint, present)) +
			Entropy(Marginalize(joint, past)) -
			Entropy(joint)
		mi = clampNonNegative(mi)
		res.PerCell[x] = mi
		sum += mi
		if mi > res.Max {
			res.Max = mi
		}
	}
	res.Mean = sum / float64(w)
	return res
}

// #endregion active-information-storage
