package runner

import (
	"strconv"
	"strings"
)

// Kind tags a run event.
type Kind string

const (
	KindLog       Kind = "log"
	KindProgress  Kind = "progress"
	KindReportDir Kind = "report_dir"
	KindFinished  Kind = "finished"
)

// Event is one message relayed from the worker to the caller. Exactly one
// field besides Kind is meaningful, selected by Kind.
type Event struct {
	Kind     Kind
	Line     string // KindLog
	Percent  int    // KindProgress, 0..100
	Path     string // KindReportDir
	ExitCode int    // KindFinished
}

// Worker output markers. The worker prefixes structured lines so they can
// be told apart from ordinary test logging; everything else is a log line.
const (
	markerProgress  = "[PROGRESS] "
	markerReportDir = "[REPORT_DIR] "
)

// parseLine turns one raw worker output line into an event. A progress
// marker carries "done/total"; a malformed marker degrades to a log line
// rather than being dropped.
func parseLine(line string) Event {
	if rest, ok := strings.CutPrefix(line, markerProgress); ok {
		if pct, ok := parseProgress(rest); ok {
			return Event{Kind: KindProgress, Percent: pct}
		}
	}
	if rest, ok := strings.CutPrefix(line, markerReportDir); ok {
		if path := strings.TrimSpace(rest); path != "" {
			return Event{Kind: KindReportDir, Path: path}
		}
	}
	return Event{Kind: KindLog, Line: line}
}

func parseProgress(s string) (int, bool) {
	done, total, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, false
	}
	d, err := strconv.Atoi(done)
	if err != nil {
		return 0, false
	}
	t, err := strconv.Atoi(total)
	if err != nil || t <= 0 {
		return 0, false
	}
	pct := d * 100 / t
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}
