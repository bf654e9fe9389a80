package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.MaxBackups != 7 {
		t.Errorf("Expected MaxBackups=7, got %d", cfg.Database.MaxBackups)
	}
	if cfg.Database.BackupInterval != 24*time.Hour {
		t.Errorf("Expected BackupInterval=24h, got %v", cfg.Database.BackupInterval)
	}

	if cfg.Clustering.SimilarityThreshold != 0.3 {
		t.Errorf("Expected SimilarityThreshold=0.3, got %v", cfg.Clustering.SimilarityThreshold)
	}

	if !cfg.Calibration.AutoCalibrate {
		t.Error("Expected Calibration.AutoCalibrate=true")
	}
	if cfg.Calibration.MinObservations != 10 {
		t.Errorf("Expected MinObservations=10, got %d", cfg.Calibration.MinObservations)
	}
	if cfg.Calibration.FallbackThreshold != 0.7 {
		t.Errorf("Expected FallbackThreshold=0.7, got %v", cfg.Calibration.FallbackThreshold)
	}

	if cfg.Cache.MaxAgeSecs != 300 {
		t.Errorf("Expected Cache.MaxAgeSecs=300, got %d", cfg.Cache.MaxAgeSecs)
	}
	if cfg.Cache.StaleGraceSecs != 60 {
		t.Errorf("Expected Cache.StaleGraceSecs=60, got %d", cfg.Cache.StaleGraceSecs)
	}

	if cfg.Catalog.MaxTokens != 4000 {
		t.Errorf("Expected Catalog.MaxTokens=4000, got %d", cfg.Catalog.MaxTokens)
	}

	if cfg.Propagation.PollInterval != 100*time.Millisecond {
		t.Errorf("Expected Propagation.PollInterval=100ms, got %v", cfg.Propagation.PollInterval)
	}
	if cfg.Propagation.MaxRetries != 3 {
		t.Errorf("Expected Propagation.MaxRetries=3, got %d", cfg.Propagation.MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name: "empty database path",
			modify: func(c *Config) {
				c.Database.Path = ""
			},
			expectErr: true,
		},
		{
			name: "negative max backups",
			modify: func(c *Config) {
				c.Database.MaxBackups = -1
			},
			expectErr: true,
		},
		{
			name: "similarity threshold out of range",
			modify: func(c *Config) {
				c.Clustering.SimilarityThreshold = 1.5
			},
			expectErr: true,
		},
		{
			name: "negative fallback threshold",
			modify: func(c *Config) {
				c.Calibration.FallbackThreshold = -0.1
			},
			expectErr: true,
		},
		{
			name: "zero max tokens",
			modify: func(c *Config) {
				c.Catalog.MaxTokens = 0
			},
			expectErr: true,
		},
		{
			name: "invalid logging level",
			modify: func(c *Config) {
				c.Logging.Level = "invalid"
			},
			expectErr: true,
		},
		{
			name: "invalid logging format",
			modify: func(c *Config) {
				c.Logging.Format = "invalid"
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", oldHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error with missing config, got: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}

	if cfg.Catalog.MaxTokens != 4000 {
		t.Errorf("Expected default max_tokens 4000, got %d", cfg.Catalog.MaxTokens)
	}
}

func TestLoadConfig_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
profile: test
database:
  path: /tmp/test.db
  backup_interval: 12h
  max_backups: 3
clustering:
  similarity_threshold: 0.4
  max_clusters: 20
calibration:
  auto_calibrate: false
  min_observations: 5
  fallback_threshold: 0.6
cache:
  shift_threshold_percent: 15
  max_age_secs: 120
  stale_grace_secs: 30
catalog:
  max_tokens: 2000
propagation:
  poll_interval: 250ms
  max_retries: 5
logging:
  level: debug
  format: json
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Profile != "test" {
		t.Errorf("Expected profile=test, got %s", cfg.Profile)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Expected database path=/tmp/test.db, got %s", cfg.Database.Path)
	}
	if cfg.Database.MaxBackups != 3 {
		t.Errorf("Expected max_backups=3, got %d", cfg.Database.MaxBackups)
	}
	if cfg.Clustering.SimilarityThreshold != 0.4 {
		t.Errorf("Expected similarity_threshold=0.4, got %v", cfg.Clustering.SimilarityThreshold)
	}
	if cfg.Calibration.AutoCalibrate {
		t.Error("Expected auto_calibrate=false, got true")
	}
	if cfg.Catalog.MaxTokens != 2000 {
		t.Errorf("Expected max_tokens=2000, got %d", cfg.Catalog.MaxTokens)
	}
	if cfg.Propagation.MaxRetries != 5 {
		t.Errorf("Expected max_retries=5, got %d", cfg.Propagation.MaxRetries)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level=debug, got %s", cfg.Logging.Level)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(tmpDir, "subdir", "test.db"),
		},
	}

	if err := cfg.EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "subdir")); os.IsNotExist(err) {
		t.Error("Config directory was not created")
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if path == "" {
		t.Error("ConfigPath returned empty string")
	}

	homeDir, _ := os.UserHomeDir()
	expected := filepath.Join(homeDir, ".notebook-entropy")
	if path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}
}

func TestDatabasePath(t *testing.T) {
	path := DatabasePath()
	if path == "" {
		t.Error("DatabasePath returned empty string")
	}

	if filepath.Base(path) != "notebook.db" {
		t.Errorf("Expected database file named notebook.db, got %s", filepath.Base(path))
	}
}
