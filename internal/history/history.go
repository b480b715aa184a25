package history

import "fmt"

// #region constructors

// New validates rows and wraps them in a History. Rows are copied.
func New(rows []Row) (History, error) {
	if len(rows) == 0 {
		return History{}, ErrEmptyHistory
	}
	width := len(rows[0])
	out := make([]Row, len(rows))
	for t, r := range rows {
		if len(r) != width {
			return History{}, fmt.Errorf("row %d has width %d, want %d: %w", t, len(r), width, ErrRaggedHistory)
		}
		out[t] = append(Row(nil), r...)
	}
	return History{rows: out, width: width}, nil
}

// FromStrings discretizes each line with DiscretizeString.
func FromStrings(lines []string) (History, error) {
	rows := make([]Row, len(lines))
	for i, l := range lines {
		rows[i] = DiscretizeString(l)
	}
	return New(rows)
}

// FromInts builds a history from numeric rows (identity discretization).
func FromInts(values [][]int) (History, error) {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = DiscretizeInts(v)
	}
	return New(rows)
}

// #endregion constructors

// #region accessors

// Len returns the number of generations.
func (h History) Len() int { return len(h.rows) }

// Width returns the number of cells per row.
func (h History) Width() int { return h.width }

// Row returns generation t. The slice is shared and must not be modified.
func (h History) Row(t int) Row { return h.rows[t] }

// At returns the value of cell x at generation t.
func (h History) At(t, x int) int { return h.rows[t][x] }

// Column returns the values of cell x across all generations.
func (h History) Column(x int) []int {
	col := make([]int, len(h.rows))
	for t, r := range h.rows {
		col[t] = r[x]
	}
	return col
}

// Slice returns generations [from, to) clipped to the valid range.
// The result shares storage with h.
func (h History) Slice(from, to int) History {
	if from < 0 {
		from = 0
	}
	if to > len(h.rows) {
		to = len(h.rows)
	}
	if from >= to {
		return History{}
	}
	return History{rows: h.rows[from:to], width: h.width}
}

// Strings renders each row with Row.String.
func (h History) Strings() []string {
	out := make([]string, len(h.rows))
	for i, r := range h.rows {
		out[i] = r.String()
	}
	return out
}

// Alphabet returns the number of distinct values observed, at least 2.
func (h History) Alphabet() int {
	seen := make(map[int]struct{})
	for _, r := range h.rows {
		for _, v := range r {
			seen[v] = struct{}{}
		}
	}
	if len(seen) < 2 {
		return 2
	}
	return len(seen)
}

// #endregion accessors
