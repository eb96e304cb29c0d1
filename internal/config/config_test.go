package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Second, cfg.Sync.PollInterval.Std())
	assert.Equal(t, 5*time.Second, cfg.Sync.RefreshTimeout.Std())
	assert.Equal(t, 20*time.Second, cfg.Sync.CommandTimeout.Std())
	assert.Equal(t, 10*time.Second, cfg.Engine.StopGracePeriod.Std())
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Sync.PollInterval.Std())
	assert.Equal(t, filepath.Join(state, appDirName, "deck.log"), cfg.Log.File)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[sync]
poll_interval = "250ms"
command_timeout = "30s"

[engine]
stop_grace_period = "15s"

[log]
level = "debug"
format = "json"
file = "/tmp/deck-test.log"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.PollInterval.Std())
	assert.Equal(t, 30*time.Second, cfg.Sync.CommandTimeout.Std())
	assert.Equal(t, 5*time.Second, cfg.Sync.RefreshTimeout.Std(), "unset keys keep defaults")
	assert.Equal(t, 15*time.Second, cfg.Engine.StopGracePeriod.Std())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/deck-test.log", cfg.Log.File)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad duration":    "[sync]\npoll_interval = \"soon\"\n",
		"poll too fast":   "[sync]\npoll_interval = \"10ms\"\n",
		"bad log format":  "[log]\nformat = \"xml\"\n",
		"grace too short": "[engine]\nstop_grace_period = \"100ms\"\n",
		"malformed toml":  "[sync\n",
		"grace too long":  "[engine]\nstop_grace_period = \"30s\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Sync.PollInterval = Duration(2 * time.Second)
	cfg.Log.File = "/tmp/x.log"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, loaded.Sync.PollInterval.Std())
}
