package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchSeesExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.csv")
	require.NoError(t, os.WriteFile(path, []byte("band,ssid,wireless_mode,channel,bandwidth,security_mode,password,tx,rx\n"), 0o644))

	changed := make(chan struct{}, 4)
	stop, err := Watch(path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("band,ssid,wireless_mode,channel,bandwidth,security_mode,password,tx,rx\n5G,lab-ap,11ax,36,80M,wpa2,pw,1,1\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the edit")
	}
}

func TestWatchMissingFile(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "absent.csv"), func() {})
	require.Error(t, err)
}
