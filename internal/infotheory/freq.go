package infotheory

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/danielpatrickdp/cadynamics/internal/history"
)

// #region frequency-table

// FrequencyTable counts occurrences of fixed-arity context keys.
// Keys are tuples of discretized cell values; every stored count is >= 1.
type FrequencyTable struct {
	arity  int
	counts map[string]int
	keys   map[string][]int
	total  int
}

// NewFrequencyTable returns an empty table for keys of the given arity.
func NewFrequencyTable(arity int) *FrequencyTable {
	return &FrequencyTable{
		arity:  arity,
		counts: make(map[string]int),
		keys:   make(map[string][]int),
	}
}

// Add increments the count of key. Keys of the wrong arity are ignored.
func (ft *FrequencyTable) Add(key []int) {
	if len(key) != ft.arity {
		return
	}
	enc := encodeKey(key)
	if _, ok := ft.keys[enc]; !ok {
		ft.keys[enc] = append([]int(nil), key...)
	}
	ft.counts[enc]++
	ft.total++
}

// Arity returns the key length.
func (ft *FrequencyTable) Arity() int { return ft.arity }

// Total returns the sum of all counts.
func (ft *FrequencyTable) Total() int { return ft.total }

// Outcomes returns the number of distinct keys.
func (ft *FrequencyTable) Outcomes() int { return len(ft.counts) }

// Count returns the count of key, 0 if unseen.
func (ft *FrequencyTable) Count(key []int) int {
	return ft.counts[encodeKey(key)]
}

// Keys returns the distinct keys in a deterministic order.
func (ft *FrequencyTable) Keys() [][]int {
	encs := make([]string, 0, len(ft.keys))
	for enc := range ft.keys {
		encs = append(encs, enc)
	}
	sort.Strings(encs)
	out := make([][]int, len(encs))
	for i, enc := range encs {
		out[i] = append([]int(nil), ft.keys[enc]...)
	}
	return out
}

// encodeKey packs a key as concatenated uvarints (zig-zag for negatives).
// Varints are prefix-free, so concatenation is unambiguous.
func encodeKey(key []int) string {
	buf := make([]byte, 0, len(key)*2)
	for _, v := range key {
		buf = binary.AppendVarint(buf, int64(v))
	}
	return string(buf)
}

// #endregion frequency-table

// #region build-joint

// BuildJoint scans t in [k, n) and counts the key formed by the k-step past
// window at each position in positions followed by the present value at
// target. Positions wrap modulo the history width.
func BuildJoint(h history.History, positions []int, target, k int) *FrequencyTable {
	return buildJointRange(h, positions, target, k, 0, h.Len())
}

// buildJointRange is BuildJoint restricted to generations [from, to).
func buildJointRange(h history.History, positions []int, target, k, from, to int) *FrequencyTable {
	ft := NewFrequencyTable(len(positions)*k + 1)
	w := h.Width()
	if w == 0 || k < 0 {
		return ft
	}
	if to > h.Len() {
		to = h.Len()
	}
	start := from
	if start < k {
		start = k
	}
	wrapped := make([]int, len(positions))
	for i, p := range positions {
		wrapped[i] = wrap(p, w)
	}
	tgt := wrap(target, w)

	key := make([]int, ft.arity)
	for t := start; t < to; t++ {
		i := 0
		for _, p := range wrapped {
			for lag := k; lag >= 1; lag-- {
				key[i] = h.At(t-lag, p)
				i++
			}
		}
		key[i] = h.At(t, tgt)
		ft.Add(key)
	}
	return ft
}

func wrap(x, w int) int {
	return ((x % w) + w) % w
}

// #endregion build-joint

// #region marginalize

// Marginalize sums counts over every key position not listed in keep.
// The resulting keys hold the kept positions in the order given.
func Marginalize(ft *FrequencyTable, keep []int) *FrequencyTable {
	out := NewFrequencyTable(len(keep))
	proj := make([]int, len(keep))
	for enc, key := range ft.keys {
		n := ft.counts[enc]
		for i, idx := range keep {
			proj[i] = key[idx]
		}
		penc := encodeKey(proj)
		if _, ok := out.keys[penc]; !ok {
			out.keys[penc] = append([]int(nil), proj...)
		}
		out.counts[penc] += n
		out.total += n
	}
	return out
}

// #endregion marginalize

// #region entropy

// Entropy returns the Shannon entropy in bits of the empirical distribution.
// Tables with fewer than two samples or a single outcome have zero entropy.
func Entropy(ft *FrequencyTable) float64 {
	if ft == nil || ft.total < 2 || len(ft.counts) <= 1 {
		return 0
	}
	total := float64(ft.total)
	var h float64
	for _, c := range ft.counts {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return clampNonNegative(h)
}

// ConditionalEntropy returns H(X|Y) = H(X,Y) - H(Y) where x and y index key
// positions of joint.
func ConditionalEntropy(joint *FrequencyTable, x, y []int) float64 {
	union := make([]int, 0, len(x)+len(y))
	union = append(union, x...)
	union = append(union, y...)
	hxy := Entropy(Marginalize(joint, union))
	hy := Entropy(Marginalize(joint, y))
	return clampNonNegative(hxy - hy)
}

// ShannonEntropy returns the entropy in bits of a raw value sequence.
func ShannonEntropy(values []int) float64 {
	ft := NewFrequencyTable(1)
	for _, v := range values {
		ft.Add([]int{v})
	}
	return Entropy(ft)
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// #endregion entropy
