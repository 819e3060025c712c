// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jobrunner/meridian/internal/adapters/definitions"
	httpAdapter "github.com/jobrunner/meridian/internal/adapters/http"
	"github.com/jobrunner/meridian/internal/adapters/metrics"
	"github.com/jobrunner/meridian/internal/adapters/storage"
	"github.com/jobrunner/meridian/internal/adapters/watcher"
	"github.com/jobrunner/meridian/internal/application"
	"github.com/jobrunner/meridian/internal/config"
	"github.com/jobrunner/meridian/internal/ports/output"
	"github.com/jobrunner/meridian/internal/transform"
)

// App holds all application components.
type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	Source         definitions.Chain
	Directory      *definitions.Directory // nil unless definitions are YAML files
	SQLite         *definitions.SQLite    // nil unless definitions live in SQLite
	Registry       *application.Registry
	Composer       *transform.Composer
	CRSService     *application.CRSService
	HealthService  *application.HealthService
	DefinitionSync *application.DefinitionSync
	SyncService    *application.SyncService
	Storage        output.ObjectStorage
	HTTPServer     *httpAdapter.Server
	Watcher        *watcher.Watcher
	Metrics        *metrics.Collector
	MetricsServer  *metrics.Server
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("meridian")
		metricsCollector = app.Metrics
		if cfg.Metrics.Port != 0 {
			app.MetricsServer = metrics.NewServer(cfg.Server.Host, cfg.Metrics.Port, cfg.Metrics.Path, app.Metrics)
		}
	}

	// Initialize definition sources
	if err := app.initSources(ctx, cfg.Definitions); err != nil {
		return nil, fmt.Errorf("initializing definitions: %w", err)
	}

	// Initialize registry and services
	app.Registry = application.NewRegistry(app.Source, metricsCollector, logger, application.RegistryConfig{
		NotFoundTTL:      cfg.Registry.NotFoundTTL,
		NotFoundCapacity: cfg.Registry.NotFoundCapacity,
		LookupTimeout:    cfg.Registry.LookupTimeout,
	})
	app.Composer = transform.NewComposer()
	app.CRSService = application.NewCRSService(app.Registry, app.Composer, metricsCollector, logger)
	app.HealthService = application.NewHealthService(app.Registry, app.Composer, cfg.Registry.ProbeCode)

	// Initialize storage sync for file-backed definitions
	if app.Directory != nil {
		if cfg.Storage.Enabled() {
			store, err := initStorage(ctx, cfg.Storage)
			if err != nil {
				app.closeSources()
				return nil, fmt.Errorf("initializing storage: %w", err)
			}
			app.Storage = store
		}
		app.DefinitionSync = application.NewDefinitionSync(
			app.Storage,
			app.Directory,
			app.Registry,
			metricsCollector,
			logger,
			app.Directory.Path(),
		)
		if app.Storage != nil {
			app.SyncService = application.NewSyncService(app.DefinitionSync, cfg.Definitions.SyncInterval, logger)
		}
	}

	// Initialize HTTP server
	var lister output.DefinitionLister = app.Source
	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		app.CRSService,
		app.Registry,
		app.HealthService,
		app.SyncService,
		lister,
		logger,
	)
	if app.Metrics != nil {
		app.HTTPServer.Use(app.Metrics.Middleware)
		if app.MetricsServer == nil {
			app.HTTPServer.Handle(cfg.Metrics.Path, app.Metrics.Handler())
		}
	}

	// Initialize file watcher for hot-reload
	if cfg.Definitions.Watch && app.Directory != nil {
		w, err := watcher.New(
			watcher.Config{
				Paths:    []string{app.Directory.Path()},
				Debounce: cfg.Definitions.Debounce,
			},
			app.handleFileEvents,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	return app, nil
}

// initSources builds the definition chain. The builtin catalogue is always
// consulted last so that files and databases can shadow its codes.
func (a *App) initSources(ctx context.Context, cfg config.DefinitionsConfig) error {
	builtin, err := definitions.Builtin()
	if err != nil {
		return fmt.Errorf("loading builtin definitions: %w", err)
	}

	switch cfg.Type {
	case config.DefinitionsYAML:
		dir, err := definitions.NewDirectory(ctx, cfg.Path, a.Logger)
		if err != nil {
			return err
		}
		a.Directory = dir
		a.Source = definitions.Chain{dir, builtin}
	case config.DefinitionsSQLite:
		db, err := definitions.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		a.SQLite = db
		a.Source = definitions.Chain{db, builtin}
	default:
		a.Source = definitions.Chain{builtin}
	}
	return nil
}

func (a *App) closeSources() {
	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Logger.Error("failed to close definition database", "error", err)
		}
	}
}

// Start starts all application components.
func (a *App) Start(ctx context.Context) error {
	// Pull definition files before the first lookup
	if a.SyncService != nil {
		if _, err := a.DefinitionSync.Sync(ctx); err != nil {
			a.Logger.Warn("initial definition sync failed", "error", err)
		}
		if a.SyncService.Interval() > 0 {
			a.SyncService.Start(ctx)
		}
	}

	// Warm the registry
	if err := a.Registry.Preload(ctx, a.Config.Registry.Preload...); err != nil {
		a.Logger.Warn("failed to preload CRS definitions", "error", err)
	}

	// Start file watcher
	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	// Start metrics server in background
	if a.MetricsServer != nil {
		go func() {
			a.Logger.Info("starting metrics server", "address", a.MetricsServer.Addr())
			if err := a.MetricsServer.Start(); err != nil {
				a.Logger.Error("metrics server error", "error", err)
			}
		}()
	}

	// Start server
	if err := a.HTTPServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	// Stop background work first so that nothing reloads during shutdown
	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}
	if a.SyncService != nil && a.SyncService.Interval() > 0 {
		a.SyncService.Stop()
	}

	// Shutdown metrics server
	if a.MetricsServer != nil {
		if err := a.MetricsServer.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Shutdown HTTP server
	var shutdownErr error
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown error", "error", err)
		shutdownErr = err
	}

	a.Registry.Close()
	a.closeSources()

	return shutdownErr
}

// handleFileEvents reloads the definition directory after a batch of changes.
func (a *App) handleFileEvents(ctx context.Context, events []watcher.Event) error {
	for _, event := range events {
		a.Logger.Debug("file event", "path", event.Path, "operation", event.Operation.String())
	}

	n, err := a.DefinitionSync.Reload(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info("definitions reloaded after file changes", "files_changed", len(events), "definitions", n)
	return nil
}

// initStorage initializes the appropriate storage adapter.
func initStorage(ctx context.Context, cfg config.StorageConfig) (output.ObjectStorage, error) {
	switch cfg.Type {
	case "local":
		return storage.NewLocalStorage(cfg.LocalPath), nil

	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	case "azure":
		return storage.NewAzureStorage(storage.AzureConfig{
			Container:        cfg.Azure.Container,
			AccountName:      cfg.Azure.AccountName,
			AccountKey:       cfg.Azure.AccountKey,
			ConnectionString: cfg.Azure.ConnectionString,
			Prefix:           cfg.Azure.Prefix,
		})

	case "http":
		return storage.NewHTTPStorage(storage.HTTPConfig{
			BaseURL:   cfg.HTTP.BaseURL,
			IndexFile: cfg.HTTP.IndexFile,
			Timeout:   cfg.HTTP.Timeout,
			Username:  cfg.HTTP.Username,
			Password:  cfg.HTTP.Password,
		}), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
