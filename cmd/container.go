package cmd

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/depsentry/depsentry/application"
	"github.com/depsentry/depsentry/config"
	"github.com/depsentry/depsentry/domain"
	"github.com/depsentry/depsentry/infrastructure/archive"
	"github.com/depsentry/depsentry/infrastructure/cache"
	"github.com/depsentry/depsentry/infrastructure/manifest"
	"github.com/depsentry/depsentry/infrastructure/osv"
	"github.com/depsentry/depsentry/infrastructure/telemetry"
)

// app bundles the collaborators every command needs, resolved once per run.
type app struct {
	cfg     *config.Config
	intake  *archive.Intake
	scanner *application.ScanService
	close   func()
}

// buildApp loads configuration and assembles the engine through a DIG
// container.
func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if cfg.Metrics.Addr != "" {
		telemetry.StartMetricsServer(cfg.Metrics.Addr)
	}

	container := dig.New()
	if err := registerProviders(container, cfg); err != nil {
		return nil, fmt.Errorf("failed to register providers: %w", err)
	}

	engine := &app{cfg: cfg, close: func() {}}
	err = container.Invoke(func(
		intake *archive.Intake,
		scanner *application.ScanService,
		resultCache domain.ResultCache,
	) {
		engine.intake = intake
		engine.scanner = scanner
		if closer, ok := resultCache.(*cache.SQLiteCache); ok {
			engine.close = func() { _ = closer.Close() }
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble application: %w", err)
	}
	return engine, nil
}

// registerProviders wires every layer into the container, bottom-up.
func registerProviders(container *dig.Container, cfg *config.Config) error {
	constructors := []any{
		func() *config.Config { return cfg },
		func(c *config.Config) *archive.Store {
			return archive.NewStore(c.Workspace.Root, c.ArchiveMaxAge())
		},
		func(c *config.Config) *archive.Intake {
			return archive.NewIntake(c.Workspace.Root)
		},
		func(s *archive.Store) domain.ArchiveStore { return s },
		func(s *archive.Store) domain.RepoIndex { return s },
		func(c *config.Config) domain.VulnerabilityRegistry {
			return osv.NewClient(osv.Config{
				BaseURL:   c.Registry.BaseURL,
				BatchSize: c.Registry.BatchSize,
				Workers:   c.Registry.Workers,
				Timeout:   c.RegistryTimeout(),
			})
		},
		newResultCache,
		manifest.NewRegistry,
		func(
			store domain.ArchiveStore,
			index domain.RepoIndex,
			registry domain.VulnerabilityRegistry,
			resultCache domain.ResultCache,
			manifests *manifest.Registry,
			c *config.Config,
		) *application.ScanService {
			return application.NewScanService(store, index, registry, resultCache, manifests).
				WithCacheTTL(c.CacheTTL())
		},
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}

// newResultCache picks the SQLite cache when a path is configured and falls
// back to the in-process cache otherwise.
func newResultCache(cfg *config.Config) (domain.ResultCache, error) {
	if cfg.Cache.Path == "" {
		return cache.NewMemoryCache(), nil
	}
	sqlite, err := cache.NewSQLiteCache(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	if dropped, sweepErr := sqlite.Sweep(); sweepErr == nil && dropped > 0 {
		logger.Debugf("[cache] swept %d expired entries", dropped)
	}
	return sqlite, nil
}

// loadConfig resolves the configuration: explicit flag, auto-detected file,
// or built-in defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if found, err := config.FindConfigFile(); err == nil {
		logger.Debugf("[config] using %s", found)
		return config.Load(found)
	}
	return config.Default(), nil
}
