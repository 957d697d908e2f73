// Package report reads the artifact directory a finished run leaves
// behind. The run itself only guarantees the directory path; everything
// about its contents is discovered here.
package report

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Artifact is one file found in a run's report directory.
type Artifact struct {
	Name string // path relative to the report directory
	Path string
	Size int64
}

// Report is the scanned view of one run's output.
type Report struct {
	Dir       string
	Artifacts []Artifact // every regular file, sorted by name
	Results   []Artifact // per-scenario result files (csv/xlsx)
}

func resultFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Scan walks dir and returns its artifact listing. The directory must
// already be stable; callers invoke Scan after the run signalled that its
// report directory is complete.
func Scan(dir string) (*Report, error) {
	r := &Report{Dir: dir}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		a := Artifact{Name: rel, Path: path, Size: info.Size()}
		r.Artifacts = append(r.Artifacts, a)
		if resultFile(rel) {
			r.Results = append(r.Results, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan report dir %s: %w", dir, err)
	}
	sort.Slice(r.Artifacts, func(i, j int) bool { return r.Artifacts[i].Name < r.Artifacts[j].Name })
	sort.Slice(r.Results, func(i, j int) bool { return r.Results[i].Name < r.Results[j].Name })
	return r, nil
}
