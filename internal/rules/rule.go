// Package rules implements the declarative UI-state engine for the config
// page. Field behaviour (show/hide/enable/disable/set) is described as a
// registry of tagged rule records interpreted by a single evaluator, so new
// behaviour is added by declaring a rule, never by branching in view code.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/wifilab/internal/condition"
	"github.com/gyaneshwarpardhi/wifilab/internal/field"
)

// EffectKind enumerates the UI effects a rule may apply to a field.
type EffectKind string

const (
	Show       EffectKind = "show"
	Hide       EffectKind = "hide"
	Enable     EffectKind = "enable"
	Disable    EffectKind = "disable"
	SetValue   EffectKind = "set_value"
	SetOptions EffectKind = "set_options"
)

// Effect is one UI effect on a target field.
type Effect struct {
	Field string
	Kind  EffectKind
	// Value carries the payload for SetValue.
	Value any
	// Options carries the payload for SetOptions.
	Options []string
	// Dynamic, when set, computes the SetValue/SetOptions payload from the
	// current values at evaluation time (e.g. enumerated serial ports).
	Dynamic func(field.Values) any
}

// Inverse returns the effect applied when the owning rule is inactive.
// Visibility and enablement invert pairwise; set effects have no inverse.
func (e Effect) Inverse() (Effect, bool) {
	switch e.Kind {
	case Show:
		return Effect{Field: e.Field, Kind: Hide}, true
	case Hide:
		return Effect{Field: e.Field, Kind: Show}, true
	case Enable:
		return Effect{Field: e.Field, Kind: Disable}, true
	case Disable:
		return Effect{Field: e.Field, Kind: Enable}, true
	}
	return Effect{}, false
}

// class groups effect kinds that override each other within one pass.
func (e Effect) class() string {
	switch e.Kind {
	case Show, Hide:
		return e.Field + "/visibility"
	case Enable, Disable:
		return e.Field + "/enablement"
	case SetValue:
		return e.Field + "/value"
	}
	return e.Field + "/options"
}

// Spec is the declarative form of one rule: when the trigger field changes
// and When holds over the current values, the effects apply in order;
// when When does not hold, the inverse effects apply.
type Spec struct {
	// Trigger is the dotted key whose change fires this rule.
	Trigger string
	// When is a condition expression; empty means always active.
	When string
	// Effects apply in declaration order.
	Effects []Effect
}

// rule is a Spec with its predicate compiled.
type rule struct {
	trigger string
	when    condition.Expr // nil = unconditional
	effects []Effect
}

// Registry holds the compiled rule set and the catalog of known field
// keys. It is built once at startup and never mutated afterwards.
type Registry struct {
	rules  []rule
	fields map[string]struct{}
}

// ErrEmptyRegistry is returned when a registry is built with no rules.
var ErrEmptyRegistry = errors.New("rules: registry has no rules")

// NewRegistry compiles specs against the field catalog. Every malformed
// rule (unknown target, empty trigger, unparsable predicate) is reported
// in a single error so misconfiguration surfaces once, at load time.
func NewRegistry(specs []Spec, catalog []string) (*Registry, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyRegistry
	}
	known := make(map[string]struct{}, len(catalog))
	for _, f := range catalog {
		known[f] = struct{}{}
	}

	reg := &Registry{fields: known}
	var problems []string
	for i, s := range specs {
		if s.Trigger == "" {
			problems = append(problems, fmt.Sprintf("rules[%d]: trigger field is required", i))
			continue
		}
		if len(s.Effects) == 0 {
			problems = append(problems, fmt.Sprintf("rules[%d] (%s): no effects", i, s.Trigger))
			continue
		}
		r := rule{trigger: s.Trigger, effects: s.Effects}
		if s.When != "" {
			expr, err := condition.Parse(s.When)
			if err != nil {
				problems = append(problems, fmt.Sprintf("rules[%d] (%s): bad predicate: %v", i, s.Trigger, err))
				continue
			}
			r.when = expr
		}
		for _, eff := range s.Effects {
			if _, ok := known[eff.Field]; !ok {
				problems = append(problems, fmt.Sprintf("rules[%d] (%s): unknown target field %q", i, s.Trigger, eff.Field))
			}
		}
		reg.rules = append(reg.rules, r)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("rule registry errors:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return reg, nil
}

// Fields returns whether key is part of the field catalog.
func (r *Registry) Knows(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Triggers returns the distinct trigger fields in registry order.
func (r *Registry) Triggers() []string {
	seen := make(map[string]struct{}, len(r.rules))
	var out []string
	for _, ru := range r.rules {
		if _, dup := seen[ru.trigger]; dup {
			continue
		}
		seen[ru.trigger] = struct{}{}
		out = append(out, ru.trigger)
	}
	return out
}
