package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wifilab/internal/field"
)

func connectTypeRegistry(t *testing.T) *Registry {
	t.Helper()
	specs := []Spec{{
		Trigger: "connect_type.type",
		When:    `connect_type.type == "telnet"`,
		Effects: []Effect{
			{Field: "connect_type.telnet.ip", Kind: Show},
			{Field: "connect_type.adb.device", Kind: Hide},
		},
	}}
	reg, err := NewRegistry(specs, []string{"connect_type.telnet.ip", "connect_type.adb.device"})
	require.NoError(t, err)
	return reg
}

func TestEvaluateActiveRule(t *testing.T) {
	reg := connectTypeRegistry(t)
	values := field.Values{"connect_type.type": "telnet"}

	effects := Evaluate(reg, "connect_type.type", values, "")
	require.Equal(t, []Effect{
		{Field: "connect_type.telnet.ip", Kind: Show},
		{Field: "connect_type.adb.device", Kind: Hide},
	}, effects)
}

func TestEvaluateInactiveRuleEmitsInverse(t *testing.T) {
	reg := connectTypeRegistry(t)
	values := field.Values{"connect_type.type": "adb"}

	effects := Evaluate(reg, "connect_type.type", values, "")
	require.Equal(t, []Effect{
		{Field: "connect_type.telnet.ip", Kind: Hide},
		{Field: "connect_type.adb.device", Kind: Show},
	}, effects)
}

func TestEvaluateIgnoresOtherTriggers(t *testing.T) {
	reg := connectTypeRegistry(t)
	values := field.Values{"connect_type.type": "telnet"}

	effects := Evaluate(reg, "router.name", values, "")
	assert.Empty(t, effects)
}

func TestEvaluateDeterministic(t *testing.T) {
	reg := connectTypeRegistry(t)
	values := field.Values{"connect_type.type": "telnet"}

	first := Evaluate(reg, "connect_type.type", values, "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(reg, "connect_type.type", values, ""))
	}
}

func TestEvaluateIdempotentDelta(t *testing.T) {
	reg := connectTypeRegistry(t)
	state := NewState([]string{"connect_type.telnet.ip", "connect_type.adb.device"})
	values := field.Values{"connect_type.type": "adb"}

	effects := Evaluate(reg, "connect_type.type", values, "")
	first := state.Apply(effects)
	require.NotEmpty(t, first, "hiding a visible field must register as a change")

	again := state.Apply(Evaluate(reg, "connect_type.type", values, ""))
	assert.Empty(t, again, "second pass with unchanged inputs must be a no-op")
}

func TestEvaluateLastWriteWins(t *testing.T) {
	specs := []Spec{
		{
			Trigger: "a",
			Effects: []Effect{{Field: "x", Kind: Hide}},
		},
		{
			Trigger: "a",
			Effects: []Effect{{Field: "x", Kind: Show}, {Field: "x", Kind: Enable}},
		},
	}
	reg, err := NewRegistry(specs, []string{"x"})
	require.NoError(t, err)

	effects := Evaluate(reg, "a", field.Values{}, "")
	require.Equal(t, []Effect{
		{Field: "x", Kind: Show},
		{Field: "x", Kind: Enable},
	}, effects, "later rule overrides earlier visibility effect; enablement untouched")
}

func TestEvaluateFullPass(t *testing.T) {
	reg, err := DefaultRegistry(Options{})
	require.NoError(t, err)

	values := field.Values{
		"connect_type.type":  "telnet",
		"serial_port.status": true,
		"rvr.tool":           "iperf",
	}
	effects := Evaluate(reg, TriggerAll, values, "test/performance/test_wifi_peak_throughput.py")

	byClass := make(map[string]Effect)
	for _, e := range effects {
		byClass[e.Field+"/"+string(e.Kind)] = e
	}
	assert.Contains(t, byClass, "connect_type.telnet.ip/show")
	assert.Contains(t, byClass, "serial_port.port/enable")
	assert.Contains(t, byClass, "rvr.tool/enable")
	assert.Contains(t, byClass, "rvr.throughput_threshold/enable")
	assert.Contains(t, byClass, "rvr.ixchariot.path/disable")
	assert.Contains(t, byClass, "project.main_chip/disable")
}

func TestEvaluateCaseContextKeys(t *testing.T) {
	reg, err := DefaultRegistry(Options{})
	require.NoError(t, err)

	// RVO case enables the turntable block; a performance case does not.
	rvo := Evaluate(reg, "case.type", field.Values{}, "test/performance/test_wifi_rvo_angle.py")
	perf := Evaluate(reg, "case.type", field.Values{}, "test/performance/test_wifi_peak_throughput.py")

	kinds := func(effects []Effect, fieldKey string) EffectKind {
		for _, e := range effects {
			if e.Field == fieldKey && (e.Kind == Enable || e.Kind == Disable) {
				return e.Kind
			}
		}
		return ""
	}
	assert.Equal(t, Enable, kinds(rvo, "turntable.step"))
	assert.Equal(t, Disable, kinds(perf, "turntable.step"))
}

func TestEvaluateDynamicOptions(t *testing.T) {
	opts := Options{SerialPorts: func() []string { return []string{"COM3", "COM7"} }}
	reg, err := DefaultRegistry(opts)
	require.NoError(t, err)

	effects := Evaluate(reg, "serial_port.status", field.Values{"serial_port.status": true}, "")
	var got []string
	for _, e := range effects {
		if e.Field == "serial_port.port" && e.Kind == SetOptions {
			got = e.Options
		}
	}
	assert.Equal(t, []string{"COM3", "COM7"}, got)
}

func TestEvaluateDoesNotMutateValues(t *testing.T) {
	reg, err := DefaultRegistry(Options{})
	require.NoError(t, err)

	values := field.Values{"connect_type.type": "telnet"}
	Evaluate(reg, TriggerAll, values, "test/stability/test_switch_wifi.py")
	assert.Equal(t, field.Values{"connect_type.type": "telnet"}, values,
		"case context keys must be layered, not written back")
}

func TestNewRegistryValidation(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewRegistry(nil, FieldCatalog())
		assert.ErrorIs(t, err, ErrEmptyRegistry)
	})

	t.Run("collects all problems", func(t *testing.T) {
		specs := []Spec{
			{Trigger: "", Effects: []Effect{{Field: "x", Kind: Show}}},
			{Trigger: "a", When: "(((", Effects: []Effect{{Field: "x", Kind: Show}}},
			{Trigger: "b", Effects: []Effect{{Field: "nope", Kind: Show}}},
		}
		_, err := NewRegistry(specs, []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trigger field is required")
		assert.Contains(t, err.Error(), "bad predicate")
		assert.Contains(t, err.Error(), `unknown target field "nope"`)
	})

	t.Run("defaults are well formed", func(t *testing.T) {
		reg, err := DefaultRegistry(Options{})
		require.NoError(t, err)
		assert.NotEmpty(t, reg.Triggers())
	})
}

func TestStateApplySetEffects(t *testing.T) {
	state := NewState([]string{"serial_port.port"})

	delta := state.Apply([]Effect{
		{Field: "serial_port.port", Kind: SetValue, Value: "COM3"},
		{Field: "serial_port.port", Kind: SetOptions, Options: []string{"COM3", "COM7"}},
	})
	require.Len(t, delta, 2)
	assert.Equal(t, "COM3", state.Field("serial_port.port").Value)
	assert.Equal(t, []string{"COM3", "COM7"}, state.Field("serial_port.port").Options)

	// Unchanged payloads produce no delta.
	delta = state.Apply([]Effect{
		{Field: "serial_port.port", Kind: SetValue, Value: "COM3"},
		{Field: "serial_port.port", Kind: SetOptions, Options: []string{"COM3", "COM7"}},
	})
	assert.Empty(t, delta)
}
