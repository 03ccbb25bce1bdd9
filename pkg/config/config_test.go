package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

service:
  realm: "zoneA"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Grid.Host != "localhost" {
		t.Errorf("Expected default grid host 'localhost', got %q", cfg.Grid.Host)
	}
	if cfg.Grid.Port != 1247 {
		t.Errorf("Expected default grid port 1247, got %d", cfg.Grid.Port)
	}
	if cfg.Service.Realm != "zoneA" {
		t.Errorf("Expected realm 'zoneA', got %q", cfg.Service.Realm)
	}
	if cfg.Service.TrashName != ".trash" {
		t.Errorf("Expected default trash name '.trash', got %q", cfg.Service.TrashName)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows running the service without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}
	if cfg.Service.Realm == "" {
		t.Error("Expected default realm to be set")
	}
}

func TestLoad_DurationParsing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
service:
  realm: "zoneA"

grid:
  timeout: "45s"

shutdown_timeout: "2m"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Grid.Timeout != 45*time.Second {
		t.Errorf("Expected grid timeout 45s, got %v", cfg.Grid.Timeout)
	}
	if cfg.ShutdownTimeout != 2*time.Minute {
		t.Errorf("Expected shutdown timeout 2m, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("logging: [not: valid"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestLoad_LevelNormalization(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"

service:
  realm: "zoneA"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Service.Realm = "zoneB"
	cfg.Grid.Port = 2432

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Service.Realm != "zoneB" {
		t.Errorf("Expected realm 'zoneB', got %q", loaded.Service.Realm)
	}
	if loaded.Grid.Port != 2432 {
		t.Errorf("Expected grid port 2432, got %d", loaded.Grid.Port)
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := MustLoad(filepath.Join(tmpDir, "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}
