// Package wire provides dependency injection for the tide application.
// Dependencies are constructed explicitly and passed down; no package
// reaches for a global connection.
package wire

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/tide/internal/adapters/docstore"
	"github.com/example/tide/internal/adapters/hybrid"
	"github.com/example/tide/internal/adapters/memory"
	"github.com/example/tide/internal/adapters/sqlite"
	"github.com/example/tide/internal/app"
	"github.com/example/tide/internal/config"
	"github.com/example/tide/internal/db"
	"github.com/example/tide/internal/ports/primary"
	"github.com/example/tide/internal/ports/secondary"
)

// Container holds the wired services plus the resources they own.
type Container struct {
	Config    *config.Config
	Tides     primary.TideService
	Flows     primary.FlowService
	Integrity primary.IntegrityService

	closers []func() error
}

// Options controls where the container stores its data.
type Options struct {
	// DataDir holds index.db and the documents/ directory.
	DataDir string
	Logger  *slog.Logger
}

// Build constructs a container against on-disk stores.
func Build(cfg *config.Config, opts Options) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	database, err := db.Open(filepath.Join(opts.DataDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if err := db.InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	docs, err := docstore.Open(filepath.Join(opts.DataDir, "documents"), logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	c := assemble(cfg, sqlite.NewIndexStore(database), docs, sqlite.NewAnalyticsStore(database), logger)
	c.closers = append(c.closers, docs.Close, database.Close)
	return c, nil
}

// BuildInMemory constructs a container against in-memory stores. Used
// by tests and by commands that never persist.
func BuildInMemory(cfg *config.Config, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return assemble(cfg, memory.NewIndexStore(), memory.NewDocumentStore(), nil, logger)
}

func assemble(cfg *config.Config, index secondary.IndexStore, docs secondary.DocumentStore, analytics secondary.AnalyticsStore, logger *slog.Logger) *Container {
	engine := hybrid.New(index, docs)
	resolver := app.NewResolver(engine)

	var rollups *app.RollupMaintainer
	if analytics != nil {
		rollups = app.NewRollupMaintainer(analytics, logger)
	}

	return &Container{
		Config:    cfg,
		Tides:     app.NewTideService(engine, resolver),
		Flows:     app.NewFlowService(engine, resolver, rollups, logger),
		Integrity: app.NewIntegrityService(engine, logger),
	}
}

// Close releases store handles in reverse acquisition order.
func (c *Container) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var (
	container *Container
	buildErr  error
	once      sync.Once
)

// Services returns the process-wide container, built from the user's
// config on first use. CLI commands share this instance.
func Services() (*Container, error) {
	once.Do(func() {
		cwd, err := os.Getwd()
		if err != nil {
			buildErr = err
			return
		}
		cfg, err := config.LoadConfig(cwd)
		if err != nil {
			buildErr = fmt.Errorf("no tide configuration found (run 'tide init'): %w", err)
			return
		}
		dataDir, err := cfg.ResolveDataDir()
		if err != nil {
			buildErr = err
			return
		}
		container, buildErr = Build(cfg, Options{DataDir: dataDir})
	})
	return container, buildErr
}
