package config

import (
	"fmt"
	"strings"
)

// requiredKeys must be present and non-empty before a run can start.
var requiredKeys = []string{
	"connect_type.type",
	"router.name",
}

// Validate checks the snapshot for the keys the orchestrator depends on.
// Every problem is reported in one error so misconfiguration surfaces
// once, not key by key.
func Validate(s *Snapshot) error {
	var problems []string
	for _, key := range requiredKeys {
		v, ok := s.Get(key)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s is required", key))
			continue
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			problems = append(problems, fmt.Sprintf("%s must not be empty", key))
		}
	}

	if ct := s.GetString("connect_type.type"); ct != "" {
		switch ct {
		case "telnet", "adb":
		default:
			problems = append(problems, fmt.Sprintf("connect_type.type must be telnet or adb, got %q", ct))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
