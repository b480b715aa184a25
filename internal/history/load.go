package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// #region read-lines

// ReadLines parses one row per line. Blank lines and lines starting with '#'
// are skipped; surrounding whitespace is trimmed.
func ReadLines(r io.Reader) (History, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return History{}, fmt.Errorf("scan history: %w", err)
	}
	return FromStrings(lines)
}

// #endregion read-lines

// #region json

// UnmarshalRows decodes either a JSON array of strings or a JSON array of
// integer arrays.
func UnmarshalRows(data []byte) (History, error) {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		return FromStrings(lines)
	}
	var values [][]int
	if err := json.Unmarshal(data, &values); err != nil {
		return History{}, fmt.Errorf("decode rows: %w", err)
	}
	return FromInts(values)
}

// MarshalJSON encodes the history as an array of integer arrays.
func (h History) MarshalJSON() ([]byte, error) {
	values := make([][]int, len(h.rows))
	for i, r := range h.rows {
		values[i] = []int(r)
	}
	return json.Marshal(values)
}

// UnmarshalJSON accepts the formats understood by UnmarshalRows. null and
// [] decode to the zero History.
func (h *History) UnmarshalJSON(data []byte) error {
	switch strings.Join(strings.Fields(string(data)), "") {
	case "null", "[]":
		*h = History{}
		return nil
	}
	parsed, err := UnmarshalRows(data)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// #endregion json

// #region load

// Load reads a history file. Files ending in .json are decoded with
// UnmarshalRows; anything else is read with ReadLines.
func Load(path string) (History, error) {
	f, err := os.Open(path)
	if err != nil {
		return History{}, fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := io.ReadAll(f)
		if err != nil {
			return History{}, fmt.Errorf("read history %s: %w", path, err)
		}
		h, err := UnmarshalRows(data)
		if err != nil {
			return History{}, fmt.Errorf("parse history %s: %w", path, err)
		}
		return h, nil
	}

	h, err := ReadLines(f)
	if err != nil {
		return History{}, fmt.Errorf("parse history %s: %w", path, err)
	}
	return h, nil
}

// #endregion load
