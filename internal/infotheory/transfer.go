package infotheory

import "github.com/danielpatrickdp/cadynamics/internal/history"

// LocalWindow bounds the trailing window used by LocalTransferEntropyField.
const LocalWindow = 20

// #region transfer-entropy

// TransferEntropy returns TE(source -> target) in bits with embedding length k:
//
//	H(target_present | target_past) - H(target_present | target_past, source_past)
//
// Histories shorter than k+2 generations yield 0.
func TransferEntropy(h history.History, source, target, k int) float64 {
	return transferEntropyRange(h, source, target, k, 0, h.Len())
}

func transferEntropyRange(h history.History, source, target, k, from, to int) float64 {
	if k < 1 || h.Width() == 0 || to-from < k+2 {
		return 0
	}
	joint := buildJointRange(h, []int{source, target}, target, k, from, to)

	// key layout: [source past (k)] [target past (k)] [target present]
	srcPast := indexRange(0, k)
	tgtPast := indexRange(k, 2*k)
	present := []int{2 * k}

	withoutSource := ConditionalEntropy(joint, present, tgtPast)
	withSource := ConditionalEntropy(joint, present, append(tgtPast, srcPast...))
	return clampNonNegative(withoutSource - withSource)
}

func indexRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// #endregion transfer-entropy

// #region local-field

// LocalTransferEntropyField estimates, for every (t, x) with t >= k, the mean
// transfer entropy into x from its 2*radius nearest neighbors (wrapping at the
// edges). Each point uses only the trailing window of at most LocalWindow
// generations ending at t, so the field is a local approximation and not
// pointwise TE over the full history. Points with t < k are 0, as is the
// whole field for a negative k.
func LocalTransferEntropyField(h history.History, k, radius int) [][]float64 {
	n, w := h.Len(), h.Width()
	field := make([][]float64, n)
	for t := range field {
		field[t] = make([]float64, w)
	}
	if w == 0 || radius < 1 || k < 0 {
		return field
	}

	for t := k; t < n; t++ {
		from := t - LocalWindow + 1
		if from < 0 {
			from = 0
		}
		for x := 0; x < w; x++ {
			var sum float64
			for d := 1; d <= radius; d++ {
				sum += transferEntropyRange(h, x-d, x, k, from, t+1)
				sum += transferEntropyRange(h, x+d, x, k, from, t+1)
			}
			field[t][x] = sum / float64(2*radius)
		}
	}
	return field
}

// #endregion local-field
