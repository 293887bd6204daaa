package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depsentry/depsentry/config"
	"github.com/depsentry/depsentry/domain"
)

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestLoad(t *testing.T) {
	t.Run("should load valid config file", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		cfgFile := filepath.Join(tmpDir, "depsentry.yaml")
		content := `
registry:
  base_url: "https://osv.example.com/v1"
  batch_size: 100
  workers: 4
  timeout_seconds: 5
cache:
  path: "/var/lib/depsentry/cache.db"
  ttl_minutes: 15
limits:
  max_deps: 800
  max_vulns: 300
workspace:
  root: "/var/lib/depsentry/archives"
  max_age_hours: 24
metrics:
  addr: ":9102"
`
		err := os.WriteFile(cfgFile, []byte(content), 0o600)
		require.NoError(t, err)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://osv.example.com/v1", cfg.Registry.BaseURL)
		assert.Equal(t, 100, cfg.Registry.BatchSize)
		assert.Equal(t, 4, cfg.Registry.Workers)
		assert.Equal(t, 5*time.Second, cfg.RegistryTimeout())
		assert.Equal(t, "/var/lib/depsentry/cache.db", cfg.Cache.Path)
		assert.Equal(t, 15*time.Minute, cfg.CacheTTL())
		assert.Equal(t, 800, cfg.Limits.MaxDeps)
		assert.Equal(t, 300, cfg.Limits.MaxVulns)
		assert.Equal(t, "/var/lib/depsentry/archives", cfg.Workspace.Root)
		assert.Equal(t, 24*time.Hour, cfg.ArchiveMaxAge())
		assert.Equal(t, ":9102", cfg.Metrics.Addr)
	})

	t.Run("should fill unset values with defaults", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		cfgFile := filepath.Join(tmpDir, "depsentry.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("cache:\n  ttl_minutes: 5\n"), 0o600))

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		defaults := config.Default()
		assert.Equal(t, defaults.Registry.BaseURL, cfg.Registry.BaseURL)
		assert.Equal(t, defaults.Registry.BatchSize, cfg.Registry.BatchSize)
		assert.Equal(t, defaults.Registry.Workers, cfg.Registry.Workers)
		assert.Equal(t, domain.DefaultDeps, cfg.Limits.MaxDeps)
		assert.Equal(t, domain.DefaultVulns, cfg.Limits.MaxVulns)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	})

	t.Run("should expand env vars in registry base url", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("TEST_REGISTRY_URL", "https://mirror.example.com/v1")
		tmpDir := t.TempDir()
		cfgFile := filepath.Join(tmpDir, "depsentry.yaml")
		content := "registry:\n  base_url: \"${TEST_REGISTRY_URL}\"\n"
		require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://mirror.example.com/v1", cfg.Registry.BaseURL)
	})

	t.Run("should fail for nonexistent config file", func(t *testing.T) {
		t.Parallel()

		// given
		path := "/tmp/nonexistent_depsentry_config_xyz.yaml"

		// when
		cfg, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("should fail for invalid YAML", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		cfgFile := filepath.Join(tmpDir, "bad.yaml")
		err := os.WriteFile(cfgFile, []byte("{{{{invalid yaml"), 0o600)
		require.NoError(t, err)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("should fail for negative registry workers", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		cfgFile := filepath.Join(tmpDir, "bad.yaml")
		content := "registry:\n  workers: -3\n"
		require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "registry.workers")
	})
}

func TestDefault(t *testing.T) {
	t.Parallel()

	t.Run("should carry the public registry endpoint", func(t *testing.T) {
		t.Parallel()

		// when
		cfg := config.Default()

		// then
		assert.Equal(t, "https://api.osv.dev/v1", cfg.Registry.BaseURL)
		assert.Equal(t, 30*time.Minute, cfg.CacheTTL())
		assert.Empty(t, cfg.Cache.Path)
		assert.NotEmpty(t, cfg.Workspace.Root)
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("should return error when no config file exists", func(t *testing.T) {
		// given
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)

		// when
		path, err := config.FindConfigFile()

		// then
		require.Error(t, err)
		assert.Empty(t, path)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("should find depsentry.yaml in current directory", func(t *testing.T) {
		// given
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)

		cfgFile := filepath.Join(tmpDir, "depsentry.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("limits: {}"), 0o600))

		// when
		path, err := config.FindConfigFile()

		// then
		require.NoError(t, err)
		assert.Equal(t, "depsentry.yaml", path)
	})

	t.Run("should find .depsentry.yaml in current directory", func(t *testing.T) {
		// given
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)

		cfgFile := filepath.Join(tmpDir, ".depsentry.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("limits: {}"), 0o600))

		// when
		path, err := config.FindConfigFile()

		// then
		require.NoError(t, err)
		assert.Equal(t, ".depsentry.yaml", path)
	})
}
