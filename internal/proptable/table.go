// Package proptable loads and builds amino acid chemical property
// transition count tables.
package proptable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names of the property table file.
const (
	ColInitialProp = "initial_prop"
	ColFinalProp   = "final_prop"
	ColCount       = "count"
)

var (
	// ErrDataMissing is returned when the table file cannot be opened.
	ErrDataMissing = errors.New("property table unavailable")
	// ErrSchema is returned for headers or cells that do not fit the table layout.
	ErrSchema = errors.New("property table schema error")
)

// Table holds transition counts indexed by initial property (rows) and
// final property (columns). Absent cells read as zero.
type Table struct {
	rows   []string
	cols   []string
	counts map[string]map[string]int64
}

// New creates an empty table.
func New() *Table {
	return &Table{counts: make(map[string]map[string]int64)}
}

// Add increments the count of the initial to final transition by n.
func (t *Table) Add(initial, final string, n int64) {
	row, ok := t.counts[initial]
	if !ok {
		row = make(map[string]int64)
		t.counts[initial] = row
		t.rows = append(t.rows, initial)
	}
	t.addColumn(final)
	row[final] += n
}

func (t *Table) addColumn(final string) {
	for _, c := range t.cols {
		if c == final {
			return
		}
	}
	t.cols = append(t.cols, final)
}

// addRow registers an initial property without counts.
func (t *Table) addRow(initial string) {
	if _, ok := t.counts[initial]; !ok {
		t.counts[initial] = make(map[string]int64)
		t.rows = append(t.rows, initial)
	}
}

// Get returns the count for initial to final, or 0 if absent.
func (t *Table) Get(initial, final string) int64 {
	return t.counts[initial][final]
}

// Row returns every known column for initial, with zeros filled in.
// It returns nil if initial is not a row of the table.
func (t *Table) Row(initial string) map[string]int64 {
	src, ok := t.counts[initial]
	if !ok {
		return nil
	}
	row := make(map[string]int64, len(t.cols))
	for _, c := range t.cols {
		row[c] = src[c]
	}
	return row
}

// Rows returns the initial properties in first-seen order.
func (t *Table) Rows() []string {
	return append([]string(nil), t.rows...)
}

// Columns returns the final properties in first-seen order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// Total returns the sum of all cells.
func (t *Table) Total() int64 {
	var n int64
	for _, row := range t.counts {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// Load reads a tab-separated property table. The header must contain an
// initial_prop column. If the header also names final_prop and count the
// file is read as one transition per line; otherwise every other column
// is a final property holding counts, and empty cells count as zero.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDataMissing, path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load property table %s: %w", path, err)
	}
	return t, nil
}

// Parse reads a property table from r. See Load for the accepted layouts.
func Parse(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty file", ErrSchema)
	}
	header := splitLine(scanner.Text())

	initialIdx, finalIdx, countIdx := -1, -1, -1
	for i, col := range header {
		switch col {
		case ColInitialProp:
			initialIdx = i
		case ColFinalProp:
			finalIdx = i
		case ColCount:
			countIdx = i
		}
	}
	if initialIdx < 0 {
		return nil, fmt.Errorf("%w: missing %q column", ErrSchema, ColInitialProp)
	}

	t := New()
	long := finalIdx >= 0 && countIdx >= 0
	if !long {
		for i, col := range header {
			if i != initialIdx {
				t.addColumn(col)
			}
		}
	}

	lineNumber := 1
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line)
		if len(fields) <= initialIdx {
			return nil, fmt.Errorf("%w: line %d: missing %s value", ErrSchema, lineNumber, ColInitialProp)
		}
		initial := fields[initialIdx]

		if long {
			if len(fields) <= finalIdx || len(fields) <= countIdx {
				return nil, fmt.Errorf("%w: line %d: expected %d columns, found %d",
					ErrSchema, lineNumber, len(header), len(fields))
			}
			n, err := parseCount(fields[countIdx])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrSchema, lineNumber, err)
			}
			t.Add(initial, fields[finalIdx], n)
			continue
		}

		t.addRow(initial)
		for i, col := range header {
			if i == initialIdx || i >= len(fields) {
				continue
			}
			n, err := parseCount(fields[i])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrSchema, lineNumber, col, err)
			}
			if n != 0 {
				t.Add(initial, col, n)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// parseCount parses a cell; empty and NaN cells are zero. Integral floats
// such as "5.0" are accepted since pandas writes counts that way after fillna.
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "NA") {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int64(f), nil
}

func splitLine(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r"), "\t")
}

// Write renders the table in the wide layout: an initial_prop column
// followed by one column per final property.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(append([]string{ColInitialProp}, t.cols...), "\t") + "\n"); err != nil {
		return err
	}
	for _, r := range t.rows {
		values := make([]string, 0, len(t.cols)+1)
		values = append(values, r)
		for _, c := range t.cols {
			values = append(values, strconv.FormatInt(t.counts[r][c], 10))
		}
		if _, err := bw.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
