package rules

import (
	"github.com/gyaneshwarpardhi/wifilab/internal/condition"
	"github.com/gyaneshwarpardhi/wifilab/internal/field"
)

// TriggerAll requests a full re-sync pass over every registered trigger,
// used after the selected case changes.
const TriggerAll = ""

// evalScope layers the derived case.* context keys over the live field
// values without mutating the caller's map.
type evalScope struct {
	values field.Values
	caseKV field.Values
}

func (s evalScope) Lookup(key string) (any, bool) {
	if v, ok := s.caseKV[key]; ok {
		return v, true
	}
	v, ok := s.values[key]
	return v, ok
}

// Evaluate interprets the registry for one trigger (or all triggers when
// trigger is TriggerAll) against the current values and case context. It is
// pure: same inputs, same output sequence, no I/O.
//
// Active rules contribute their effects in declaration order; inactive
// rules contribute the inverse of their invertible effects, which is what
// makes repeated evaluation idempotent. Within one pass the last effect
// written per field per effect class wins.
//
// A predicate that fails to evaluate (e.g. a type mismatch against a
// hand-edited config) counts as inactive rather than aborting the pass.
func Evaluate(reg *Registry, trigger string, values field.Values, casePath string) []Effect {
	scope := evalScope{values: values, caseKV: field.ContextKeys(casePath)}

	var collected []Effect
	for _, r := range reg.rules {
		if trigger != TriggerAll && r.trigger != trigger {
			continue
		}
		active := true
		if r.when != nil {
			ok, err := condition.Eval(r.when, scope)
			active = err == nil && ok
		}
		if active {
			collected = append(collected, resolveDynamic(r.effects, values)...)
			continue
		}
		for _, eff := range r.effects {
			if inv, ok := eff.Inverse(); ok {
				collected = append(collected, inv)
			}
		}
	}
	return collapse(collected)
}

// resolveDynamic materializes Dynamic payloads so callers always see
// concrete Value/Options.
func resolveDynamic(effects []Effect, values field.Values) []Effect {
	out := make([]Effect, len(effects))
	copy(out, effects)
	for i := range out {
		if out[i].Dynamic == nil {
			continue
		}
		payload := out[i].Dynamic(values)
		switch out[i].Kind {
		case SetOptions:
			if opts, ok := payload.([]string); ok {
				out[i].Options = opts
			}
		case SetValue:
			out[i].Value = payload
		}
		out[i].Dynamic = nil
	}
	return out
}

// collapse keeps only the last effect per field per effect class,
// preserving the position of each winner.
func collapse(effects []Effect) []Effect {
	if len(effects) <= 1 {
		return effects
	}
	last := make(map[string]int, len(effects))
	for i, eff := range effects {
		last[eff.class()] = i
	}
	out := make([]Effect, 0, len(last))
	for i, eff := range effects {
		if last[eff.class()] == i {
			out = append(out, eff)
		}
	}
	return out
}
