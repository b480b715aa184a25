package history

import "errors"

// #region errors

var (
	// ErrEmptyHistory is returned when a history with at least one row is required.
	ErrEmptyHistory = errors.New("history has no rows")
	// ErrRaggedHistory is returned when rows do not share one width.
	ErrRaggedHistory = errors.New("history rows have unequal width")
	// ErrSeriesMismatch is returned when parallel histories differ in shape.
	ErrSeriesMismatch = errors.New("parallel histories differ in shape")
)

// #endregion errors

// #region row

// Row is one generation: a fixed-width sequence of discretized cell values.
type Row []int

// Equal reports whether two rows hold the same values.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the row with one character per cell (0-9, then '?').
func (r Row) String() string {
	buf := make([]byte, len(r))
	for i, v := range r {
		if v >= 0 && v <= 9 {
			buf[i] = byte('0' + v)
		} else {
			buf[i] = '?'
		}
	}
	return string(buf)
}

// #endregion row

// #region history

// History is an ordered sequence of rows of uniform width.
// The zero value is an empty history; non-empty values are built with New,
// FromStrings or FromInts, which enforce the width invariant.
type History struct {
	rows  []Row
	width int
}

// #endregion history
