package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Table is an uploaded sheet: ordered column names and positional rows.
// Cells hold string, numeric or nil values. Stages never write to a table
// they received; they build a new one.
type Table struct {
	Name       string
	Columns    []string
	Rows       [][]any
	normalized bool
}

func NewTable(name string, columns []string, rows [][]any) *Table {
	return &Table{Name: name, Columns: columns, Rows: rows}
}

// Normalized reports whether the column names have already been normalized.
func (t *Table) Normalized() bool { return t.normalized }

// Normalize returns a copy of t with normalized column names. A table that is
// already normalized is returned as is.
func (t *Table) Normalize() *Table {
	if t.normalized {
		return t
	}
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = NormalizeColumn(c)
	}
	return &Table{Name: t.Name, Columns: cols, Rows: t.Rows, normalized: true}
}

// Index returns the position of the first column called name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row r, column index i; short rows read as nil.
func (t *Table) Cell(r, i int) any {
	if i < 0 || r < 0 || r >= len(t.Rows) || i >= len(t.Rows[r]) {
		return nil
	}
	return t.Rows[r][i]
}

// Value returns the cell of row r in the column called col.
func (t *Table) Value(r int, col string) any { return t.Cell(r, t.Index(col)) }

func (t *Table) Len() int { return len(t.Rows) }

// NormalizeColumn folds a header to its canonical form: NFKC, lower case,
// trimmed, inner whitespace collapsed to single spaces.
func NormalizeColumn(s string) string {
	s = norm.NFKC.String(s)
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// sciNumber matches spreadsheet scientific notation such as
// "1.72938475612345E+18". A bare "12E4" is left alone since it reads as a code.
var sciNumber = regexp.MustCompile(`^[0-9]+(\.[0-9]+[eE][+-]?|[eE][+-])[0-9]+$`)

// CanonicalID renders an identifier cell as a string. Integral numbers lose
// their fractional part so 1001, 1001.0, "1001.0" and "1.001E+3" all read
// "1001".
func CanonicalID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(x)
		if sciNumber.MatchString(s) {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return formatFloatID(f)
			}
		}
		if i := strings.IndexByte(s, '.'); i > 0 && isDigits(s[:i]) && strings.Trim(s[i+1:], "0") == "" {
			return s[:i]
		}
		return s
	case float64:
		return formatFloatID(x)
	case float32:
		return formatFloatID(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case []byte:
		return CanonicalID(string(x))
	default:
		return ""
	}
}

// IDKey is the join/group key for an identifier cell.
func IDKey(v any) string { return strings.ToLower(CanonicalID(v)) }

// Number reads a cell as a float. Empty, non-numeric and non-finite values
// count as zero.
func Number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = p
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatFloatID(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
