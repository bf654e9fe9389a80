package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Profile     string             `mapstructure:"profile"`
	Database    DatabaseConfig     `mapstructure:"database"`
	Clustering  ClusteringConfig   `mapstructure:"clustering"`
	Calibration CalibrationConfig  `mapstructure:"calibration"`
	Cache       CacheConfig        `mapstructure:"cache"`
	Catalog     CatalogConfig      `mapstructure:"catalog"`
	Propagation PropagationConfig  `mapstructure:"propagation"`
	Logging     LoggingConfig      `mapstructure:"logging"`
}

// DatabaseConfig holds the SQLite store's configuration.
type DatabaseConfig struct {
	Path           string        `mapstructure:"path"`
	BackupInterval time.Duration `mapstructure:"backup_interval"`
	MaxBackups     int           `mapstructure:"max_backups"`
}

// ClusteringConfig holds the agglomerative clustering parameters.
type ClusteringConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	MaxClusters         int     `mapstructure:"max_clusters"`
}

// CalibrationConfig holds the orphan-threshold calibrator defaults.
type CalibrationConfig struct {
	AutoCalibrate     bool    `mapstructure:"auto_calibrate"`
	MinObservations   uint64  `mapstructure:"min_observations"`
	FallbackThreshold float64 `mapstructure:"fallback_threshold"`
}

// CacheConfig holds the catalog cache's freshness thresholds.
type CacheConfig struct {
	ShiftThreshold int64 `mapstructure:"shift_threshold_percent"`
	MaxAgeSecs     int64 `mapstructure:"max_age_secs"`
	StaleGraceSecs int64 `mapstructure:"stale_grace_secs"`
}

// CatalogConfig holds the catalog generator's token budget.
type CatalogConfig struct {
	MaxTokens int `mapstructure:"max_tokens"`
}

// PropagationConfig holds the propagation worker's poll interval and
// retry budget.
type PropagationConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxRetries   uint64        `mapstructure:"max_retries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console, json
}

// DefaultConfig returns configuration populated with this service's
// documented defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".notebook-entropy")

	return &Config{
		Profile: "default",
		Database: DatabaseConfig{
			Path:           filepath.Join(configDir, "notebook.db"),
			BackupInterval: 24 * time.Hour,
			MaxBackups:     7,
		},
		Clustering: ClusteringConfig{
			SimilarityThreshold: 0.3,
			MaxClusters:         0,
		},
		Calibration: CalibrationConfig{
			AutoCalibrate:     true,
			MinObservations:   10,
			FallbackThreshold: 0.7,
		},
		Cache: CacheConfig{
			ShiftThreshold: 10,
			MaxAgeSecs:     300,
			StaleGraceSecs: 60,
		},
		Catalog: CatalogConfig{
			MaxTokens: 4000,
		},
		Propagation: PropagationConfig{
			PollInterval: 100 * time.Millisecond,
			MaxRetries:   3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file, searching the current
// directory, the user's config directory, and /etc, falling back to
// DefaultConfig if no file is found.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	homeDir, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(homeDir, ".notebook-entropy"))
	v.AddConfigPath("/etc/notebook-entropy")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".notebook-entropy")

	v.SetDefault("profile", "default")
	v.SetDefault("database.path", filepath.Join(configDir, "notebook.db"))
	v.SetDefault("database.backup_interval", "24h")
	v.SetDefault("database.max_backups", 7)

	v.SetDefault("clustering.similarity_threshold", 0.3)
	v.SetDefault("clustering.max_clusters", 0)

	v.SetDefault("calibration.auto_calibrate", true)
	v.SetDefault("calibration.min_observations", 10)
	v.SetDefault("calibration.fallback_threshold", 0.7)

	v.SetDefault("cache.shift_threshold_percent", 10)
	v.SetDefault("cache.max_age_secs", 300)
	v.SetDefault("cache.stale_grace_secs", 60)

	v.SetDefault("catalog.max_tokens", 4000)

	v.SetDefault("propagation.poll_interval", "100ms")
	v.SetDefault("propagation.max_retries", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaxBackups < 0 {
		return fmt.Errorf("database.max_backups must be >= 0")
	}

	if c.Clustering.SimilarityThreshold < 0 || c.Clustering.SimilarityThreshold > 1 {
		return fmt.Errorf("clustering.similarity_threshold must be between 0 and 1")
	}

	if c.Calibration.FallbackThreshold < 0 {
		return fmt.Errorf("calibration.fallback_threshold must be >= 0")
	}

	if c.Cache.MaxAgeSecs < 0 || c.Cache.StaleGraceSecs < 0 {
		return fmt.Errorf("cache.max_age_secs and cache.stale_grace_secs must be >= 0")
	}

	if c.Catalog.MaxTokens <= 0 {
		return fmt.Errorf("catalog.max_tokens must be > 0")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: console, json")
	}

	return nil
}

// WatchConfig watches the loaded configuration file for changes and
// invokes onChange with the reloaded configuration whenever it is
// rewritten on disk. Reload errors (a malformed file mid-write, an
// invalid value) are swallowed and the previous configuration is kept
// in effect, since a watcher has no caller to return an error to.
//
// Only the Clustering, Calibration, and Cache sections are meant to be
// read from a live-reloaded Config; Database, Propagation, and Logging
// are fixed at process start and require a restart to change.
func WatchConfig(onChange func(*Config)) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	homeDir, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(homeDir, ".notebook-entropy"))
	v.AddConfigPath("/etc/notebook-entropy")

	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// EnsureConfigDir creates the configuration directory if it doesn't
// already exist.
func (c *Config) EnsureConfigDir() error {
	configDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the configuration directory.
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".notebook-entropy")
}

// DatabasePath returns the default database path.
func DatabasePath() string {
	return filepath.Join(ConfigPath(), "notebook.db")
}
