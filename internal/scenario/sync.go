package scenario

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/wifilab/internal/metrics"
)

// Form is the single-record edit view the synchronizer keeps in step with
// the selected row. The widget layer implements it; tests use a fake.
type Form interface {
	// Display shows the given row in the form.
	Display(row Row)
	// Clear empties the form when no row is selected.
	Clear()
}

// Validation errors reported synchronously by the synchronizer.
var (
	ErrNoSelection = errors.New("scenario: no row selected")
	ErrMissingSSID = errors.New("scenario: ssid is required")
)

// NoSelection is the selected-index value when no row is selected.
const NoSelection = -1

// Sync binds an ordered row table, a one-record edit form and a backing
// CSV file into one consistent unit: after any public operation returns,
// the file reflects the rows and the form reflects the selected row.
// Sync is owned by the UI-thread session and is not goroutine safe.
type Sync struct {
	table    *Table
	form     Form
	path     string
	selected int
}

// NewSync loads path (creating it with the default header when missing)
// and binds it to form. No row is selected initially.
func NewSync(path string, form Form) (*Sync, error) {
	t, err := Open(path)
	if err != nil {
		return nil, err
	}
	s := &Sync{table: t, form: form, path: path, selected: NoSelection}
	form.Clear()
	return s, nil
}

// Path returns the backing file path.
func (s *Sync) Path() string { return s.path }

// Len returns the number of rows.
func (s *Sync) Len() int { return s.table.Len() }

// Selected returns the selected row index, or NoSelection.
func (s *Sync) Selected() int { return s.selected }

// Rows returns a copy of the current rows in table order.
func (s *Sync) Rows() []Row {
	out := make([]Row, len(s.table.Rows))
	for i, r := range s.table.Rows {
		out[i] = r.Clone()
	}
	return out
}

// Row returns a copy of row i.
func (s *Sync) Row(i int) (Row, error) {
	if err := s.check(i); err != nil {
		return nil, err
	}
	return s.table.Rows[i].Clone(), nil
}

// Select loads row i into the form. It touches neither the rows nor the
// file.
func (s *Sync) Select(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.selected = i
	s.form.Display(s.table.Rows[i].Clone())
	return nil
}

// FormChanged writes the edited record back into the selected row,
// refreshes the form and saves. Rejected when no row is selected.
func (s *Sync) FormChanged(updated Row) error {
	if s.selected == NoSelection {
		return ErrNoSelection
	}
	if updated["ssid"] == "" {
		return ErrMissingSSID
	}
	s.table.Rows[s.selected] = updated.Clone()
	s.table.normalize()
	s.form.Display(s.table.Rows[s.selected].Clone())
	return s.Save()
}

// Add appends record, selects it and saves.
func (s *Sync) Add(record Row) error {
	if record["ssid"] == "" {
		return ErrMissingSSID
	}
	s.table.Rows = append(s.table.Rows, record.Clone())
	s.table.normalize()
	s.selected = len(s.table.Rows) - 1
	s.form.Display(s.table.Rows[s.selected].Clone())
	return s.Save()
}

// Delete removes row i and saves. When the selected row is deleted the
// selection moves to the previous row, or clears when the table is empty.
// Deleting above the selection shifts it so the same record stays selected.
func (s *Sync) Delete(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.table.Rows = append(s.table.Rows[:i], s.table.Rows[i+1:]...)

	switch {
	case s.table.Len() == 0:
		s.selected = NoSelection
		s.form.Clear()
	case i == s.selected:
		s.selected = max(0, i-1)
		s.form.Display(s.table.Rows[s.selected].Clone())
	case i < s.selected:
		s.selected--
	}
	return s.Save()
}

// Save serializes the full row table to the backing file atomically.
func (s *Sync) Save() error {
	if err := WriteFile(s.path, s.table); err != nil {
		return err
	}
	metrics.ScenarioSaves.Inc()
	return nil
}

// Load replaces the in-memory rows from path and clears the selection.
// The previous backing file is not touched; subsequent saves go to path.
func (s *Sync) Load(path string) error {
	t, err := ReadFile(path)
	if err != nil {
		return err
	}
	s.table = t
	s.path = path
	s.selected = NoSelection
	s.form.Clear()
	return nil
}

// Reload re-reads the current backing file, used when an external editor
// touched it. Selection is preserved when still in range.
func (s *Sync) Reload() error {
	t, err := ReadFile(s.path)
	if err != nil {
		return err
	}
	s.table = t
	if s.selected >= t.Len() {
		s.selected = NoSelection
		s.form.Clear()
	} else if s.selected != NoSelection {
		s.form.Display(t.Rows[s.selected].Clone())
	}
	return nil
}

func (s *Sync) check(i int) error {
	if i < 0 || i >= s.table.Len() {
		return fmt.Errorf("scenario: row index %d out of range [0,%d)", i, s.table.Len())
	}
	return nil
}
