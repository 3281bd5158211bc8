// ABOUTME: Workout tracker configuration: data location, default unit and logging.
// ABOUTME: Handles settings, preferences, and the storage factory function.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/storage"
)

// DBFileName is the SQLite file created inside the data directory.
const DBFileName = "workout.db"

// Config stores workout tool configuration.
type Config struct {
	// DataDir is the root directory for data storage; workout.db lives here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/workout.
	DataDir string `json:"data_dir,omitempty"`

	// Unit is the default weight unit for warm-ups and body weight: "kg" or "lb".
	Unit string `json:"unit,omitempty"`

	// LogLevel is a logrus level name. Defaults to "warn".
	LogLevel string `json:"log_level,omitempty"`

	// LogFile, when set, receives logs with size-based rotation.
	LogFile string `json:"log_file,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the database file path inside the data directory.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), DBFileName)
}

// GetUnit returns the configured unit, defaulting to kilograms.
func (c *Config) GetUnit() (models.Unit, error) {
	return models.ParseUnit(c.Unit)
}

// GetLogLevel returns the configured log level, defaulting to warn.
func (c *Config) GetLogLevel() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.WarnLevel, nil
	}
	return logrus.ParseLevel(c.LogLevel)
}

// GetLogFile returns the log file path with ~ expanded, or "" for stderr only.
func (c *Config) GetLogFile() string {
	return ExpandPath(c.LogFile)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.GetUnit(); err != nil {
		return fmt.Errorf("unit: %w", err)
	}
	if _, err := c.GetLogLevel(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite repository in the configured data directory.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return storage.Open(c.GetDBPath())
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "workout", "config.json")
}

// Load reads config from disk. A missing file yields the defaults.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
