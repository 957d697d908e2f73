// Package session is the single-goroutine context behind one operator
// surface: the live field values, the selected case, the scenario
// synchronizer, and the run slot. Everything here is synchronous; only the
// run orchestrator crosses into another goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gyaneshwarpardhi/wifilab/internal/config"
	"github.com/gyaneshwarpardhi/wifilab/internal/field"
	"github.com/gyaneshwarpardhi/wifilab/internal/metrics"
	"github.com/gyaneshwarpardhi/wifilab/internal/rules"
	"github.com/gyaneshwarpardhi/wifilab/internal/runner"
	"github.com/gyaneshwarpardhi/wifilab/internal/scenario"
)

var (
	ErrNoCase     = errors.New("session: no case selected")
	ErrNoScenario = errors.New("session: no scenario attached")
)

// Options configures a Session.
type Options struct {
	Registry     *rules.Registry // default: rules.DefaultRegistry
	Catalog      []string        // default: rules.FieldCatalog
	Orchestrator *runner.Orchestrator
	Logger       *slog.Logger
}

// Session owns the mutable state of one configuration surface. It is not
// safe for concurrent use; callers drive it from a single goroutine.
type Session struct {
	logger   *slog.Logger
	registry *rules.Registry
	catalog  []string

	values   field.Values
	casePath string
	editable rules.EditableInfo
	state    *rules.State

	scen *scenario.Sync
	orch *runner.Orchestrator
}

func New(opts Options) (*Session, error) {
	if opts.Registry == nil {
		reg, err := rules.DefaultRegistry(rules.Options{})
		if err != nil {
			return nil, fmt.Errorf("build default registry: %w", err)
		}
		opts.Registry = reg
	}
	if opts.Catalog == nil {
		opts.Catalog = rules.FieldCatalog()
	}
	if opts.Orchestrator == nil {
		opts.Orchestrator = runner.New(runner.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Session{
		logger:   opts.Logger.With("component", "session"),
		registry: opts.Registry,
		catalog:  opts.Catalog,
		values:   field.Values{},
		state:    rules.NewState(opts.Catalog),
		orch:     opts.Orchestrator,
	}, nil
}

// LoadConfig seeds the field values from a config snapshot and runs a full
// rule pass so the state reflects the loaded values.
func (s *Session) LoadConfig(snap *config.Snapshot) []rules.Change {
	s.values = snap.Flatten()
	return s.evaluate(rules.TriggerAll)
}

// SetField records a new value for key and re-evaluates the rules that
// trigger on it. The returned delta holds only the state transitions the
// edit actually caused; a repeated identical edit yields an empty delta.
func (s *Session) SetField(key string, value any) []rules.Change {
	s.values.Set(key, value)
	return s.evaluate(key)
}

// Value returns the current value for key.
func (s *Session) Value(key string) (any, bool) { return s.values.Get(key) }

// Values returns a copy of the live field values.
func (s *Session) Values() field.Values { return s.values.Clone() }

// FieldState exposes the computed UI state for key, or nil when the key is
// not cataloged.
func (s *Session) FieldState(key string) *rules.FieldState { return s.state.Field(key) }

// SelectCase switches the session to a test case: the case is classified,
// the editable field set recomputed, and a full rule pass brings every
// field's state in line with the new case context.
func (s *Session) SelectCase(path string) (rules.EditableInfo, []rules.Change) {
	s.casePath = path
	s.editable = rules.ComputeEditable(path)
	delta := s.evaluate(rules.TriggerAll)
	s.logger.Info("case selected",
		"case", path,
		"type", string(field.ClassifyCase(path)),
		"editable_fields", len(s.editable.Fields()),
		"changes", len(delta))
	return s.editable, delta
}

// CasePath returns the selected case, or "" when none is selected.
func (s *Session) CasePath() string { return s.casePath }

// Editable returns the cached editable-field info for the selected case.
func (s *Session) Editable() rules.EditableInfo { return s.editable }

// AttachScenario binds the session to a scenario CSV, creating the file
// with the default header when it does not exist yet.
func (s *Session) AttachScenario(path string, form scenario.Form) error {
	sync, err := scenario.NewSync(path, form)
	if err != nil {
		return err
	}
	s.scen = sync
	return nil
}

// Scenario returns the attached synchronizer, or nil.
func (s *Session) Scenario() *scenario.Sync { return s.scen }

// StartRun hands a read-only copy of the session's values to the
// orchestrator together with the selected case and the scenario file. The
// worker never sees the live maps; mid-run edits stay invisible to it.
func (s *Session) StartRun(ctx context.Context) (*runner.Handle, error) {
	if s.casePath == "" {
		return nil, ErrNoCase
	}
	if s.scen == nil {
		return nil, ErrNoScenario
	}
	snap := config.FromValues(s.values)
	return s.orch.Start(ctx, s.casePath, snap, s.scen.Path())
}

// CancelRun cancels the handle via the session's orchestrator.
func (s *Session) CancelRun(h *runner.Handle) { s.orch.Cancel(h) }

func (s *Session) evaluate(trigger string) []rules.Change {
	effects := rules.Evaluate(s.registry, trigger, s.values, s.casePath)
	metrics.RuleEvaluations.Inc()
	delta := s.state.Apply(effects)
	for _, c := range delta {
		metrics.EffectsApplied.WithLabelValues(string(c.Kind)).Inc()
		// set_value effects feed back into the value map so later
		// predicates observe them.
		if c.Kind == rules.SetValue {
			if fs := s.state.Field(c.Field); fs != nil {
				s.values.Set(c.Field, fs.Value)
			}
		}
	}
	return delta
}
