package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeForm records what the synchronizer displays.
type fakeForm struct {
	row     Row
	cleared bool
}

func (f *fakeForm) Display(row Row) {
	f.row = row
	f.cleared = false
}

func (f *fakeForm) Clear() {
	f.row = nil
	f.cleared = true
}

func row(ssid string) Row {
	return Row{"band": "5G", "ssid": ssid, "security_mode": "WPA2", "password": "12345678", "tx": "1", "rx": "1"}
}

func newTestSync(t *testing.T) (*Sync, *fakeForm, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.csv")
	form := &fakeForm{}
	s, err := NewSync(path, form)
	require.NoError(t, err)
	return s, form, path
}

// requireConsistent asserts the three-way invariant: file reflects rows,
// form reflects the selected row.
func requireConsistent(t *testing.T, s *Sync, form *fakeForm) {
	t.Helper()
	onDisk, err := ReadFile(s.Path())
	require.NoError(t, err)
	require.Equal(t, s.Len(), onDisk.Len(), "file row count differs from memory")
	for i, r := range s.Rows() {
		for _, col := range onDisk.Header {
			assert.Equal(t, r[col], onDisk.Rows[i][col], "row %d col %s", i, col)
		}
	}
	if sel := s.Selected(); sel != NoSelection {
		want, err := s.Row(sel)
		require.NoError(t, err)
		assert.Equal(t, want, form.row, "form must mirror selected row")
	} else {
		assert.True(t, form.cleared || form.row == nil)
	}
}

func TestSyncAddSelectsAndSaves(t *testing.T) {
	s, form, _ := newTestSync(t)

	require.NoError(t, s.Add(row("LabAP-1")))
	require.NoError(t, s.Add(row("LabAP-2")))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Selected(), "add selects the appended row")
	requireConsistent(t, s, form)
}

func TestSyncAddRequiresSSID(t *testing.T) {
	s, _, _ := newTestSync(t)
	err := s.Add(Row{"band": "5G"})
	assert.ErrorIs(t, err, ErrMissingSSID)
	assert.Equal(t, 0, s.Len())
}

func TestSyncSelectLoadsForm(t *testing.T) {
	s, form, _ := newTestSync(t)
	require.NoError(t, s.Add(row("A")))
	require.NoError(t, s.Add(row("B")))

	require.NoError(t, s.Select(0))
	assert.Equal(t, "A", form.row["ssid"])
	requireConsistent(t, s, form)

	assert.Error(t, s.Select(2), "out of range index must be rejected")
	assert.Error(t, s.Select(-1))
	assert.Equal(t, 0, s.Selected(), "failed select leaves selection untouched")
}

func TestSyncFormChanged(t *testing.T) {
	s, form, _ := newTestSync(t)
	require.NoError(t, s.Add(row("A")))

	edited := row("A-renamed")
	edited["channel"] = "36"
	require.NoError(t, s.FormChanged(edited))

	got, err := s.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "A-renamed", got["ssid"])
	assert.Equal(t, "36", got["channel"])
	requireConsistent(t, s, form)
}

func TestSyncFormChangedWithoutSelection(t *testing.T) {
	s, _, _ := newTestSync(t)
	assert.ErrorIs(t, s.FormChanged(row("X")), ErrNoSelection)
}

func TestSyncDeleteMovesSelection(t *testing.T) {
	s, form, _ := newTestSync(t)
	require.NoError(t, s.Add(row("A")))
	require.NoError(t, s.Add(row("B")))

	// Delete the selected (last) row: selection moves to the previous one.
	require.NoError(t, s.Delete(1))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, "A", form.row["ssid"])
	requireConsistent(t, s, form)

	// Deleting the only row clears the selection.
	require.NoError(t, s.Delete(0))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, NoSelection, s.Selected())
	assert.True(t, form.cleared)
	requireConsistent(t, s, form)
}

func TestSyncDeleteFirstKeepsSelectedRecord(t *testing.T) {
	s, form, _ := newTestSync(t)
	require.NoError(t, s.Add(row("A")))
	require.NoError(t, s.Add(row("B")))
	require.NoError(t, s.Add(row("C")))
	require.NoError(t, s.Select(2))

	require.NoError(t, s.Delete(0))
	assert.Equal(t, 1, s.Selected(), "selection follows the same record")
	got, err := s.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "C", got["ssid"])
	requireConsistent(t, s, form)
}

func TestSyncDeleteOutOfRange(t *testing.T) {
	s, _, _ := newTestSync(t)
	require.NoError(t, s.Add(row("A")))
	assert.Error(t, s.Delete(1))
	assert.Error(t, s.Delete(-1))
	assert.Equal(t, 1, s.Len())
}

func TestSyncRoundTrip(t *testing.T) {
	s, _, path := newTestSync(t)
	require.NoError(t, s.Add(row("A")))
	b := row("B")
	b["password"] = "pass,with,commas"
	b["channel"] = "161"
	require.NoError(t, s.Add(b))

	reloaded, err := ReadFile(path)
	require.NoError(t, err)
	again := filepath.Join(t.TempDir(), "copy.csv")
	require.NoError(t, WriteFile(again, reloaded))
	second, err := ReadFile(again)
	require.NoError(t, err)
	assert.True(t, reloaded.Equal(second), "load-save-load must preserve cell content")
}

func TestSyncLoadReplacesRowsAndClearsSelection(t *testing.T) {
	s, form, _ := newTestSync(t)
	require.NoError(t, s.Add(row("A")))

	other := filepath.Join(t.TempDir(), "other.csv")
	otherTable := NewTable(nil)
	otherTable.Rows = []Row{row("X"), row("Y"), row("Z")}
	require.NoError(t, WriteFile(other, otherTable))

	require.NoError(t, s.Load(other))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, NoSelection, s.Selected())
	assert.True(t, form.cleared)
}

func TestSyncLoadMissingFile(t *testing.T) {
	s, _, _ := newTestSync(t)
	require.NoError(t, s.Add(row("A")))
	err := s.Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, 1, s.Len(), "failed load leaves rows untouched")
}

func TestWriteFileAtomicOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.csv")
	table := NewTable(nil)
	table.Rows = []Row{row("keep-me")}
	require.NoError(t, WriteFile(path, table))

	// Make the directory unwritable so the temp file cannot be created;
	// the original file must survive untouched.
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	table.Rows = append(table.Rows, row("lost"))
	err := WriteFile(path, table)
	require.Error(t, err)

	os.Chmod(dir, 0o755)
	onDisk, readErr := ReadFile(path)
	require.NoError(t, readErr)
	require.Equal(t, 1, onDisk.Len())
	assert.Equal(t, "keep-me", onDisk.Rows[0]["ssid"])
}

func TestReloadAfterExternalEdit(t *testing.T) {
	s, form, path := newTestSync(t)
	require.NoError(t, s.Add(row("A")))
	require.NoError(t, s.Add(row("B")))
	require.NoError(t, s.Select(1))

	external := NewTable(nil)
	external.Rows = []Row{row("edited")}
	require.NoError(t, WriteFile(path, external))

	require.NoError(t, s.Reload())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, NoSelection, s.Selected(), "selection beyond new length clears")
	assert.True(t, form.cleared)
}
