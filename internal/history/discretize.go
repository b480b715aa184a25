package history

// #region discretize

// DiscretizeString maps each rune of s to a bit. '0' and '1' map directly;
// any other rune maps to 0 below code point 128 and to 1 otherwise, so
// multi-symbol sigils always land on a defined bit.
func DiscretizeString(s string) Row {
	row := make(Row, 0, len(s))
	for _, r := range s {
		switch {
		case r == '0':
			row = append(row, 0)
		case r == '1':
			row = append(row, 1)
		case r < 128:
			row = append(row, 0)
		default:
			row = append(row, 1)
		}
	}
	return row
}

// DiscretizeInts returns a copy of already-numeric cell values.
func DiscretizeInts(values []int) Row {
	return append(Row(nil), values...)
}

// #endregion discretize
