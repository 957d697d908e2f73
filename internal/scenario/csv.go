package scenario

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile parses a scenario CSV (header row + one row per scenario).
// Cell values are trimmed; columns absent from a line read as "".
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	if len(records) == 0 {
		return NewTable(nil), nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := NewTable(header)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Open reads path, creating a new file with the default header when it
// does not exist yet.
func Open(path string) (*Table, error) {
	t, err := ReadFile(path)
	if err == nil {
		return t, nil
	}
	if !os.IsNotExist(unwrapPathError(err)) {
		return nil, err
	}
	t = NewTable(nil)
	if err := WriteFile(path, t); err != nil {
		return nil, err
	}
	return t, nil
}

func unwrapPathError(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}

// WriteFile serializes the table to path atomically: the content goes to a
// temp file in the same directory which is renamed over the target, so a
// crash mid-write never leaves a half-written scenario file and a failed
// write leaves the previous content untouched.
func WriteFile(path string, t *Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scenario dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".scenario-*.csv")
	if err != nil {
		return fmt.Errorf("create temp scenario file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Header); err != nil {
		cleanup()
		return fmt.Errorf("write scenario header: %w", err)
	}
	for _, row := range t.Rows {
		rec := make([]string, len(t.Header))
		for i, col := range t.Header {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			cleanup()
			return fmt.Errorf("write scenario row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		cleanup()
		return fmt.Errorf("flush scenario file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp scenario file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace scenario file %s: %w", path, err)
	}
	return nil
}
