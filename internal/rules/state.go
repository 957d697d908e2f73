package rules

import "slices"

// FieldState is the presentation-independent UI state of one field.
// Fields start visible and enabled.
type FieldState struct {
	Visible bool
	Enabled bool
	Value   any
	Options []string
}

// Change records one observable state transition produced by Apply.
type Change struct {
	Field string
	Kind  EffectKind
}

// State tracks the UI state of every cataloged field. It is the adapter
// the session applies effect sequences to; a widget layer would mirror it.
type State struct {
	fields map[string]*FieldState
}

// NewState initializes state for the given field catalog.
func NewState(catalog []string) *State {
	s := &State{fields: make(map[string]*FieldState, len(catalog))}
	for _, key := range catalog {
		s.fields[key] = &FieldState{Visible: true, Enabled: true}
	}
	return s
}

// Field returns the state for key, or nil when the key is not cataloged.
func (s *State) Field(key string) *FieldState {
	return s.fields[key]
}

// Apply folds an effect sequence into the state and returns only the
// changes that altered something. Applying the same sequence twice yields
// an empty delta on the second call, which is the engine's idempotence
// contract.
func (s *State) Apply(effects []Effect) []Change {
	var delta []Change
	for _, eff := range effects {
		fs, ok := s.fields[eff.Field]
		if !ok {
			continue
		}
		changed := false
		switch eff.Kind {
		case Show:
			changed = !fs.Visible
			fs.Visible = true
		case Hide:
			changed = fs.Visible
			fs.Visible = false
		case Enable:
			changed = !fs.Enabled
			fs.Enabled = true
		case Disable:
			changed = fs.Enabled
			fs.Enabled = false
		case SetValue:
			changed = fs.Value != eff.Value
			fs.Value = eff.Value
		case SetOptions:
			changed = !slices.Equal(fs.Options, eff.Options)
			fs.Options = slices.Clone(eff.Options)
		}
		if changed {
			delta = append(delta, Change{Field: eff.Field, Kind: eff.Kind})
		}
	}
	return delta
}
