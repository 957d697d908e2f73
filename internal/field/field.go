// Package field holds the flat field-value model shared by the config page,
// the rule engine, and the run orchestrator. Keys are dotted paths such as
// "connect_type.type" or "rvr.tool"; values are scalars or string lists.
package field

import "sort"

// Values maps dotted field keys to their current values.
// A key that is not present is "absent", which is distinct from a key
// holding the empty string.
type Values map[string]any

// Get returns the value for key and whether the key is present.
func (v Values) Get(key string) (any, bool) {
	val, ok := v[key]
	return val, ok
}

// Set stores val under key.
func (v Values) Set(key string, val any) {
	v[key] = val
}

// Delete removes key, making it absent.
func (v Values) Delete(key string) {
	delete(v, key)
}

// Bool reads key as a truthy flag. Strings "1", "true", "yes" and "on"
// count as true; absent keys are false.
func (v Values) Bool(key string) bool {
	val, ok := v[key]
	if !ok {
		return false
	}
	switch x := val.(type) {
	case bool:
		return x
	case int:
		return x != 0
	case float64:
		return x != 0
	case string:
		switch x {
		case "1", "true", "yes", "on", "True", "Yes", "On":
			return true
		}
	}
	return false
}

// String reads key as a string, returning "" when absent or non-string.
func (v Values) String(key string) string {
	val, ok := v[key]
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}

// Clone returns an independent copy. The orchestrator receives clones so a
// running test can never observe in-progress edits.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		if list, ok := val.([]string); ok {
			cp := make([]string, len(list))
			copy(cp, list)
			out[k] = cp
			continue
		}
		out[k] = val
	}
	return out
}

// Keys returns all present keys in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
