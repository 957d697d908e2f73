package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
connect_type:
  type: telnet
  telnet:
    ip: 192.168.50.20
router:
  name: AX3000
  address: 192.168.50.1
rf_solution:
  model: RC4DAT-8G-95
  step: 3
corner_angle:
  step: 45
rvr:
  tool: iperf
  iperf:
    path: /usr/bin/iperf3
  repeat: 2
pair_num: 1
check_point:
  ping_targets:
    - 8.8.8.8
    - 1.1.1.1
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func TestReadAndGet(t *testing.T) {
	snap, err := Read(writeSample(t))
	require.NoError(t, err)

	assert.Equal(t, "telnet", snap.GetString("connect_type.type"))
	assert.Equal(t, "iperf", snap.GetString("rvr.tool"))
	assert.Equal(t, "/usr/bin/iperf3", snap.GetString("rvr.iperf.path"))

	v, ok := snap.Get("rf_solution.step")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = snap.Get("rvr.ixchariot.path")
	assert.False(t, ok)
	_, ok = snap.Get("rvr.tool.nested")
	assert.False(t, ok, "descending through a scalar must fail")
}

func TestSet(t *testing.T) {
	snap := New()
	require.NoError(t, snap.Set("turntable.model", "other"))
	require.NoError(t, snap.Set("turntable.ip_address", "10.0.0.9"))
	assert.Equal(t, "other", snap.GetString("turntable.model"))
	assert.Equal(t, "10.0.0.9", snap.GetString("turntable.ip_address"))

	err := snap.Set("turntable.model.sub", "x")
	assert.Error(t, err, "setting below a scalar must be rejected")
}

func TestFlatten(t *testing.T) {
	snap, err := Read(writeSample(t))
	require.NoError(t, err)

	values := snap.Flatten()
	assert.Equal(t, "telnet", values["connect_type.type"])
	assert.Equal(t, "AX3000", values["router.name"])
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, values["check_point.ping_targets"])
	_, present := values["rvr"]
	assert.False(t, present, "intermediate nodes must not appear as keys")
}

func TestWriteRoundTrip(t *testing.T) {
	snap, err := Read(writeSample(t))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, snap.Write(out))

	again, err := Read(out)
	require.NoError(t, err)
	assert.Equal(t, snap.Flatten(), again.Flatten())
}

func TestCloneIsIndependent(t *testing.T) {
	snap, err := Read(writeSample(t))
	require.NoError(t, err)

	frozen := snap.Clone()
	require.NoError(t, snap.Set("router.name", "edited"))
	assert.Equal(t, "AX3000", frozen.GetString("router.name"))
}

func TestFromValues(t *testing.T) {
	snap, err := Read(writeSample(t))
	require.NoError(t, err)

	rebuilt := FromValues(snap.Flatten())
	assert.Equal(t, snap.Flatten(), rebuilt.Flatten())
}

func TestValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		snap, err := Read(writeSample(t))
		require.NoError(t, err)
		assert.NoError(t, Validate(snap))
	})

	t.Run("missing keys collected", func(t *testing.T) {
		err := Validate(New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connect_type.type is required")
		assert.Contains(t, err.Error(), "router.name is required")
	})

	t.Run("bad connect type", func(t *testing.T) {
		snap := New()
		require.NoError(t, snap.Set("connect_type.type", "ssh"))
		require.NoError(t, snap.Set("router.name", "AX3000"))
		err := Validate(snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telnet or adb")
	})
}

func TestLoaderReloadAndOnChange(t *testing.T) {
	path := writeSample(t)
	loader, err := NewLoader(path)
	require.NoError(t, err)

	var seen string
	loader.OnChange(func(s *Snapshot) { seen = s.GetString("router.name") })

	require.NoError(t, os.WriteFile(path, []byte("router:\n  name: AX6000\nconnect_type:\n  type: adb\n"), 0o644))
	snap, err := loader.Reload()
	require.NoError(t, err)
	assert.Equal(t, "AX6000", snap.GetString("router.name"))
	assert.Equal(t, "AX6000", seen)
	assert.Equal(t, "AX6000", loader.Snapshot().GetString("router.name"))
}

func TestLoaderWatch(t *testing.T) {
	path := writeSample(t)
	loader, err := NewLoader(path)
	require.NoError(t, err)

	updated := make(chan string, 4)
	loader.OnChange(func(s *Snapshot) { updated <- s.GetString("router.name") })

	stop, err := loader.Watch()
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("router:\n  name: AX9000\nconnect_type:\n  type: telnet\n"), 0o644))

	select {
	case name := <-updated:
		assert.Equal(t, "AX9000", name)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not pick up the edit")
	}
}
