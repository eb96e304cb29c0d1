// Package config loads the optional lighthouse-deck settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const appDirName = "lighthouse-deck"

// MinPollInterval keeps a misconfigured file from hammering the engine.
const MinPollInterval = 100 * time.Millisecond

// Duration is a time.Duration written as a Go duration string ("1s", "250ms").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Engine EngineConfig `toml:"engine"`
	Sync   SyncConfig   `toml:"sync"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
}

type EngineConfig struct {
	StopGracePeriod Duration `toml:"stop_grace_period"`
}

type SyncConfig struct {
	PollInterval   Duration `toml:"poll_interval"`
	RefreshTimeout Duration `toml:"refresh_timeout"`
	CommandTimeout Duration `toml:"command_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
	File   string `toml:"file"`   // used by the interactive shell only
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{StopGracePeriod: Duration(10 * time.Second)},
		Sync: SyncConfig{
			PollInterval:   Duration(time.Second),
			RefreshTimeout: Duration(5 * time.Second),
			CommandTimeout: Duration(20 * time.Second),
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":3000"},
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/lighthouse-deck or ~/.config/lighthouse-deck.
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// StateDir returns $XDG_STATE_HOME/lighthouse-deck or ~/.local/state/lighthouse-deck.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appDirName), nil
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path over the defaults. An empty path means DefaultPath, and a
// missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg.fillLogFile()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.fillLogFile()
	return cfg, nil
}

// fillLogFile defaults the log file into the state dir; it stays empty when
// no home directory can be found.
func (c *Config) fillLogFile() {
	if c.Log.File != "" {
		return
	}
	if dir, err := StateDir(); err == nil {
		c.Log.File = filepath.Join(dir, "deck.log")
	}
}

// Validate rejects settings the sync engine cannot run with.
func (c *Config) Validate() error {
	if c.Sync.PollInterval.Std() < MinPollInterval {
		return fmt.Errorf("sync.poll_interval must be at least %s", MinPollInterval)
	}
	if c.Sync.RefreshTimeout <= 0 {
		return fmt.Errorf("sync.refresh_timeout must be positive")
	}
	if c.Sync.CommandTimeout <= 0 {
		return fmt.Errorf("sync.command_timeout must be positive")
	}
	if c.Engine.StopGracePeriod < Duration(time.Second) {
		return fmt.Errorf("engine.stop_grace_period must be at least 1s")
	}
	if c.Sync.CommandTimeout <= c.Engine.StopGracePeriod {
		return fmt.Errorf("sync.command_timeout (%s) must exceed engine.stop_grace_period (%s)",
			c.Sync.CommandTimeout.Std(), c.Engine.StopGracePeriod.Std())
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// Save writes the config as TOML, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
