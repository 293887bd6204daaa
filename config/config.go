package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/depsentry/depsentry/domain"
	"github.com/depsentry/depsentry/infrastructure/osv"
)

// Config is the top-level configuration for depsentry.
type Config struct {
	Registry  RegistryConfig  `yaml:"registry"`
	Cache     CacheConfig     `yaml:"cache"`
	Limits    LimitsConfig    `yaml:"limits"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// RegistryConfig points at the vulnerability registry endpoint.
type RegistryConfig struct {
	BaseURL        string `yaml:"base_url"` // Inline or ${ENV_VAR}
	BatchSize      int    `yaml:"batch_size"`
	Workers        int    `yaml:"workers"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig controls scan result memoization.
type CacheConfig struct {
	Path       string `yaml:"path"` // Empty keeps the cache in memory
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// LimitsConfig holds the default per-scan caps. Requests may still override
// them within the clamped ranges.
type LimitsConfig struct {
	MaxDeps  int `yaml:"max_deps"`
	MaxVulns int `yaml:"max_vulns"`
}

// WorkspaceConfig locates the archive of fetched repositories.
type WorkspaceConfig struct {
	Root        string `yaml:"root"`
	MaxAgeHours int    `yaml:"max_age_hours"` // Zero disables archive expiry
}

// MetricsConfig exposes Prometheus metrics when an address is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			BaseURL:        osv.DefaultBaseURL,
			BatchSize:      osv.DefaultBatchSize,
			Workers:        osv.DefaultWorkers,
			TimeoutSeconds: int(osv.DefaultTimeout / time.Second),
		},
		Cache: CacheConfig{
			TTLMinutes: 30,
		},
		Limits: LimitsConfig{
			MaxDeps:  domain.DefaultDeps,
			MaxVulns: domain.DefaultVulns,
		},
		Workspace: WorkspaceConfig{
			Root: filepath.Join(os.TempDir(), "depsentry"),
		},
	}
}

// Load reads and parses a configuration file, expanding environment variable
// references and filling unset values with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := Default()
	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Registry.BaseURL = expandEnv(cfg.Registry.BaseURL)
	cfg.Cache.Path = expandEnv(cfg.Cache.Path)
	cfg.Workspace.Root = expandEnv(cfg.Workspace.Root)

	applyDefaults(cfg)
	if validateErr := validate(cfg); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".depsentry.yaml",
		".depsentry.yml",
		"depsentry.yaml",
		"depsentry.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// CacheTTL returns the configured memoization window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// RegistryTimeout returns the per-request registry timeout.
func (c *Config) RegistryTimeout() time.Duration {
	return time.Duration(c.Registry.TimeoutSeconds) * time.Second
}

// ArchiveMaxAge returns how long fetched repositories stay readable.
func (c *Config) ArchiveMaxAge() time.Duration {
	return time.Duration(c.Workspace.MaxAgeHours) * time.Hour
}

// expandEnv replaces ${ENV_VAR} references with their environment values.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// applyDefaults fills values an explicit config file left unset.
func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Registry.BaseURL == "" {
		cfg.Registry.BaseURL = defaults.Registry.BaseURL
	}
	if cfg.Registry.BatchSize == 0 {
		cfg.Registry.BatchSize = defaults.Registry.BatchSize
	}
	if cfg.Registry.Workers == 0 {
		cfg.Registry.Workers = defaults.Registry.Workers
	}
	if cfg.Registry.TimeoutSeconds == 0 {
		cfg.Registry.TimeoutSeconds = defaults.Registry.TimeoutSeconds
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = defaults.Cache.TTLMinutes
	}
	if cfg.Limits.MaxDeps == 0 {
		cfg.Limits.MaxDeps = defaults.Limits.MaxDeps
	}
	if cfg.Limits.MaxVulns == 0 {
		cfg.Limits.MaxVulns = defaults.Limits.MaxVulns
	}
	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = defaults.Workspace.Root
	}
}

// validate checks for values no clamp can repair.
func validate(cfg *Config) error {
	if cfg.Registry.BatchSize < 0 {
		return errors.New("registry.batch_size must not be negative")
	}
	if cfg.Registry.Workers < 0 {
		return errors.New("registry.workers must not be negative")
	}
	if cfg.Registry.TimeoutSeconds < 0 {
		return errors.New("registry.timeout_seconds must not be negative")
	}
	if cfg.Cache.TTLMinutes < 0 {
		return errors.New("cache.ttl_minutes must not be negative")
	}
	if cfg.Workspace.MaxAgeHours < 0 {
		return errors.New("workspace.max_age_hours must not be negative")
	}
	return nil
}
