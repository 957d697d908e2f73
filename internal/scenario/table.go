// Package scenario keeps the per-scenario row table, the edit form and the
// backing CSV file consistent with each other. One row is one test
// configuration point (band/ssid/security/direction) in a CSV-driven sweep.
package scenario

import "slices"

// DefaultHeader is the column schema for performance sweeps, matching the
// files under performance_test_csv.
var DefaultHeader = []string{
	"band", "ssid", "wireless_mode", "channel", "bandwidth",
	"security_mode", "password", "tx", "rx",
}

// Row maps column name to cell value. Missing columns read as "".
type Row map[string]string

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered collection of rows over a fixed header. Row order is
// meaningful: position maps to the on-screen table and is preserved on save.
type Table struct {
	Header []string
	Rows   []Row
}

// NewTable returns an empty table over header (DefaultHeader when nil).
func NewTable(header []string) *Table {
	if header == nil {
		header = DefaultHeader
	}
	return &Table{Header: slices.Clone(header)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Equal reports whether both tables hold the same header and cell values.
func (t *Table) Equal(other *Table) bool {
	if !slices.Equal(t.Header, other.Header) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, row := range t.Rows {
		for _, col := range t.Header {
			if row[col] != other.Rows[i][col] {
				return false
			}
		}
	}
	return true
}

// normalize trims each row to exactly the header's columns.
func (t *Table) normalize() {
	for i, row := range t.Rows {
		clean := make(Row, len(t.Header))
		for _, col := range t.Header {
			clean[col] = row[col]
		}
		t.Rows[i] = clean
	}
}
