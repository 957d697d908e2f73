// Package config reads and writes the test-suite configuration snapshot:
// a nested YAML document (connect_type, router, rf_solution, corner_angle,
// rvr, pair_num, ...) addressed by dotted keys.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/wifilab/internal/field"
)

// Snapshot is one nested configuration document. The core treats it as an
// opaque mapping except for the dotted keys referenced by rules and by
// worker command resolution.
type Snapshot struct {
	root map[string]any
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{root: make(map[string]any)}
}

// FromMap wraps an already-decoded nested map.
func FromMap(m map[string]any) *Snapshot {
	if m == nil {
		m = make(map[string]any)
	}
	return &Snapshot{root: m}
}

// Read parses a snapshot from a YAML file.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return FromMap(root), nil
}

// Write serializes the snapshot to path atomically (temp + rename).
func (s *Snapshot) Write(path string) error {
	data, err := yaml.Marshal(s.root)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config %s: %w", path, err)
	}
	return nil
}

// Get resolves a dotted key ("rvr.iperf.path") into the nested document.
func (s *Snapshot) Get(key string) (any, bool) {
	node := any(s.root)
	for _, seg := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// GetString resolves key as a string, "" when missing or non-string.
func (s *Snapshot) GetString(key string) string {
	v, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// Set stores val under a dotted key, creating intermediate maps. Setting
// through a non-map node is rejected.
func (s *Snapshot) Set(key string, val any) error {
	segs := strings.Split(key, ".")
	node := s.root
	for i, seg := range segs[:len(segs)-1] {
		child, ok := node[seg]
		if !ok {
			next := make(map[string]any)
			node[seg] = next
			node = next
			continue
		}
		m, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("config: %s is a scalar, cannot set %s", strings.Join(segs[:i+1], "."), key)
		}
		node = m
	}
	node[segs[len(segs)-1]] = val
	return nil
}

// Flatten expands the nested document into dotted field values, the form
// the rule engine consumes. Lists of scalars become []string.
func (s *Snapshot) Flatten() field.Values {
	out := make(field.Values)
	flattenInto(out, "", s.root)
	return out
}

func flattenInto(out field.Values, prefix string, node map[string]any) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case map[string]any:
			flattenInto(out, key, x)
		case []any:
			list := make([]string, 0, len(x))
			for _, item := range x {
				list = append(list, fmt.Sprintf("%v", item))
			}
			out[key] = list
		default:
			out[key] = v
		}
	}
}

// Clone deep-copies the snapshot so the orchestrator can hold a frozen
// view while the operator keeps editing.
func (s *Snapshot) Clone() *Snapshot {
	return FromMap(cloneMap(s.root))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case map[string]any:
			out[k] = cloneMap(x)
		case []any:
			cp := make([]any, len(x))
			copy(cp, x)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// FromValues rebuilds a nested snapshot from flat dotted field values,
// the inverse of Flatten. Used when the session persists edits.
func FromValues(values field.Values) *Snapshot {
	s := New()
	for _, key := range values.Keys() {
		// Set only fails when a parent segment already holds a scalar;
		// the field catalog never nests a key under a scalar leaf.
		_ = s.Set(key, values[key])
	}
	return s
}
