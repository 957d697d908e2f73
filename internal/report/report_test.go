package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	files := map[string]string{
		"run.log":               "worker log",
		"logs/serial.log":       "serial capture",
		"scenario_1_result.csv": "tx,rx\n100,90\n",
		"summary.xlsx":          "binary",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	r, err := Scan(dir)
	require.NoError(t, err)

	var names []string
	for _, a := range r.Artifacts {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"logs/serial.log", "run.log", "scenario_1_result.csv", "summary.xlsx"}, names)

	var results []string
	for _, a := range r.Results {
		results = append(results, a.Name)
	}
	assert.Equal(t, []string{"scenario_1_result.csv", "summary.xlsx"}, results)

	assert.Equal(t, int64(len("worker log")), r.Artifacts[1].Size)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestScanEmptyDir(t *testing.T) {
	r, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, r.Artifacts)
	assert.Empty(t, r.Results)
}
