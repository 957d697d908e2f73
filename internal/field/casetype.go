package field

import (
	"path"
	"strings"
)

// CaseType classifies a selected test script. The classification decides
// which config fields are relevant and which scenario schema applies.
type CaseType string

const (
	CasePerformance   CaseType = "performance"
	CaseRVR           CaseType = "rvr"
	CaseRVO           CaseType = "rvo"
	CaseStability     CaseType = "stability"
	CaseCompatibility CaseType = "compatibility"
	CaseOther         CaseType = "other"
)

// ClassifyCase maps a test script path to its CaseType. The decision is
// purely lexical so the same path always yields the same type: RVR/RVO
// scripts are recognized by basename, the remaining families by the
// directory they live under.
func ClassifyCase(casePath string) CaseType {
	if casePath == "" {
		return CaseOther
	}
	norm := strings.ToLower(strings.ReplaceAll(casePath, "\\", "/"))
	base := path.Base(norm)

	switch {
	case strings.Contains(base, "test_wifi_rvr"):
		return CaseRVR
	case strings.Contains(base, "test_wifi_rvo"):
		return CaseRVO
	case hasSegmentPair(norm, "test", "stability"):
		return CaseStability
	case strings.Contains(norm, "/compatibility/"):
		return CaseCompatibility
	case hasSegmentPair(norm, "test", "performance"):
		return CasePerformance
	}
	return CaseOther
}

// hasSegmentPair reports whether parent/child appear as adjacent path
// segments anywhere in p.
func hasSegmentPair(p, parent, child string) bool {
	segs := strings.Split(p, "/")
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] == parent && segs[i+1] == child {
			return true
		}
	}
	return false
}

// NeedsThroughput reports whether the case type drives traffic generation
// and therefore needs the rvr.* tool fields.
func (t CaseType) NeedsThroughput() bool {
	switch t {
	case CasePerformance, CaseRVR, CaseRVO, CaseStability, CaseCompatibility:
		return true
	}
	return false
}

// ContextKeys returns the derived case.* keys rule predicates may
// reference. They are injected into the value map before evaluation so
// rules stay declarative.
func ContextKeys(casePath string) Values {
	t := ClassifyCase(casePath)
	base := path.Base(strings.ReplaceAll(casePath, "\\", "/"))
	if casePath == "" {
		base = ""
	}
	return Values{
		"case.path":             casePath,
		"case.basename":         base,
		"case.type":             string(t),
		"case.is_performance":   t == CasePerformance,
		"case.is_rvr":           t == CaseRVR,
		"case.is_rvo":           t == CaseRVO,
		"case.is_stability":     t == CaseStability,
		"case.is_compatibility": t == CaseCompatibility,
		"case.needs_throughput": t.NeedsThroughput(),
	}
}
