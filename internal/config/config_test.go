package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/tuidispatch/tasks"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TUIDISPATCH_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, cfg.Runtime.TickInterval)
	require.Equal(t, 300*time.Millisecond, cfg.Runtime.SearchDebounce)
	require.Equal(t, tasks.PauseBuffer, cfg.Runtime.TaskPausePolicy())
	require.Equal(t, 500, cfg.History.Capacity)
	require.Equal(t, filepath.Join(home, ".local", "share", "tuidispatch", "history.db"), cfg.History.DBPath)
	require.Equal(t, "Kyiv, Ukraine", cfg.Weather.City)
	require.InDelta(t, 50.4501, cfg.Weather.Latitude, 1e-9)
	require.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	require.False(t, cfg.Telemetry.Enabled)
	require.Equal(t, "tuidispatch", cfg.Telemetry.ServiceName)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[runtime]
tick_interval = "50ms"
pause_policy_subscriptions = "drop"

[history]
capacity = 42
exclude = "Tick,Weather*"

[weather]
city = "Oslo, Norway"
units = "fahrenheit"
`), 0o644))
	t.Setenv("TUIDISPATCH_CONFIG", path)
	t.Setenv("TUIDISPATCH_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 50*time.Millisecond, cfg.Runtime.TickInterval)
	require.Equal(t, "drop", cfg.Runtime.PausePolicySubscriptions)
	require.Equal(t, "drop", cfg.Runtime.SubscriptionPausePolicy().String())
	require.Equal(t, 42, cfg.History.Capacity)
	require.Equal(t, "Tick,Weather*", cfg.History.Exclude)
	require.Equal(t, "Oslo, Norway", cfg.Weather.City)

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[runtime]\npause_policy_tasks = \"defer\"\n"), 0o644))
	t.Setenv("TUIDISPATCH_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "runtime.pause_policy_tasks")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TUIDISPATCH_CONFIG", filepath.Join(dir, "missing.toml"))

	_, err := Load()
	require.Error(t, err)
}
