package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
)

func TestDefaultPinsAdherencePolicy(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, analytics.DefaultTolerance, cfg.Analytics.Tolerance())
	assert.Equal(t, WindowRange, cfg.Analytics.WindowMode)
	assert.Equal(t, 30, cfg.Analytics.TrailingDays)
	assert.Equal(t, 7, cfg.Analytics.RollingWindow)
	assert.True(t, cfg.Analytics.ClampToFirstEntry)
}

func TestLoad(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, ErrNoConfig)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("analytics:\n  tolerance_mode: relative\n  tolerance_value: 0.1\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, analytics.Tolerance{Mode: analytics.ToleranceRelative, Value: 0.1}, cfg.Analytics.Tolerance())
		assert.Equal(t, 7, cfg.Analytics.RollingWindow)
		assert.Equal(t, "127.0.0.1:8765", cfg.Server.Addr)
	})

	t.Run("relative mode without a value takes the relative default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("analytics:\n  tolerance_mode: relative\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, analytics.Tolerance{Mode: analytics.ToleranceRelative, Value: analytics.DefaultRelativeTolerance}, cfg.Analytics.Tolerance())
	})

	t.Run("absolute value without a mode is kept", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("analytics:\n  tolerance_value: 150\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, analytics.Tolerance{Mode: analytics.ToleranceAbsolute, Value: 150}, cfg.Analytics.Tolerance())
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("analytics:\n  window_mode: weekly\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("analytics: [\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.DBPath = "/tmp/kcal.db"
	cfg.Analytics.TrailingDays = 14

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("KCAL_DB", "/data/kcal.db")
	t.Setenv("KCAL_TOLERANCE_MODE", "relative")
	t.Setenv("KCAL_TOLERANCE", "0.05")
	t.Setenv("KCAL_ROLLING_WINDOW", "14")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/data/kcal.db", cfg.DBPath)
	assert.Equal(t, analytics.Tolerance{Mode: analytics.ToleranceRelative, Value: 0.05}, cfg.Analytics.Tolerance())
	assert.Equal(t, 14, cfg.Analytics.RollingWindow)

	t.Setenv("KCAL_TRAILING_DAYS", "many")
	assert.Error(t, Default().ApplyEnv())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("KCAL_ADDR=127.0.0.1:9999\n"), 0o644))

	t.Setenv("KCAL_ADDR", "")
	require.NoError(t, os.Unsetenv("KCAL_ADDR"))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "127.0.0.1:9999", os.Getenv("KCAL_ADDR"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestAnalyticsSet(t *testing.T) {
	a := Default().Analytics

	require.NoError(t, a.Set(KeyToleranceMode, "relative"))
	assert.Equal(t, analytics.DefaultRelativeTolerance, a.ToleranceValue, "switching mode resets the band")

	require.NoError(t, a.Set(KeyClampToFirst, "false"))
	assert.False(t, a.ClampToFirstEntry)

	assert.Error(t, a.Set("colour", "blue"))
	assert.Error(t, a.Set(KeyRollingWindow, "seven"))
}
