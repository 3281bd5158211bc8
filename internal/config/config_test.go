// ABOUTME: Tests for workout configuration management.
// ABOUTME: Covers load, save, defaults, validation, and path expansion.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := &Config{}

	if got := cfg.GetDataDir(); got != "/tmp/xdg-data/workout" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/xdg-data/workout")
	}
	if got := cfg.GetDBPath(); got != "/tmp/xdg-data/workout/workout.db" {
		t.Errorf("GetDBPath() = %q", got)
	}

	unit, err := cfg.GetUnit()
	if err != nil || unit != models.UnitKg {
		t.Errorf("GetUnit() = %q, %v; want kg", unit, err)
	}
	level, err := cfg.GetLogLevel()
	if err != nil || level != logrus.WarnLevel {
		t.Errorf("GetLogLevel() = %v, %v; want warn", level, err)
	}
	if got := cfg.GetLogFile(); got != "" {
		t.Errorf("GetLogFile() = %q, want empty", got)
	}
}

func TestExplicitSettings(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/workout-test", Unit: "lbs", LogLevel: "debug"}

	if got := cfg.GetDataDir(); got != "/tmp/workout-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/workout-test")
	}
	if unit, _ := cfg.GetUnit(); unit != models.UnitLb {
		t.Errorf("GetUnit() = %q, want lb", unit)
	}
	if level, _ := cfg.GetLogLevel(); level != logrus.DebugLevel {
		t.Errorf("GetLogLevel() = %v, want debug", level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"pounds", Config{Unit: "lb"}, false},
		{"bad unit", Config{Unit: "stone"}, true},
		{"bad level", Config{LogLevel: "loud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/workout", filepath.Join(home, "data/workout")},
		{"data/workout", "data/workout"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/lifting"}
	if got, want := cfg.GetDataDir(), filepath.Join(home, "lifting"); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.DataDir != "" || cfg.Unit != "" {
		t.Errorf("Expected zero config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	cfg := &Config{DataDir: "/tmp/workout-data", Unit: "lb", LogFile: "~/workout.log"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "nonexistent", "workout", "config.json")); err != nil {
		t.Fatalf("Expected config file to be created: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Loaded config = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"malformed json": "invalid json",
		"unknown unit":   `{"unit":"stone"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("XDG_CONFIG_HOME", tmpDir)

			configDir := filepath.Join(tmpDir, "workout")
			if err := os.MkdirAll(configDir, 0750); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(body), 0600); err != nil {
				t.Fatal(err)
			}

			if _, err := Load(); err == nil {
				t.Error("Expected error for invalid config")
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if got, want := GetConfigPath(), filepath.Join(tmpDir, "workout", "config.json"); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorage(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{DataDir: tmpDir}

	repo, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, DBFileName)); os.IsNotExist(err) {
		t.Error("Expected workout.db to be created")
	}
	if repo.Path() != filepath.Join(tmpDir, DBFileName) {
		t.Errorf("Path() = %q", repo.Path())
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
