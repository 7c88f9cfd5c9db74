// Package injector wires configuration, logging, content, the composition
// engine and the snapshot store into an App.
package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/paperdoll/internal/config"
	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/game/rig"
	"github.com/cory-johannsen/paperdoll/internal/observability"
	"github.com/cory-johannsen/paperdoll/internal/storage"
	"github.com/cory-johannsen/paperdoll/internal/storage/file"
	"github.com/cory-johannsen/paperdoll/internal/storage/postgres"
	"github.com/cory-johannsen/paperdoll/internal/storage/sqlite"
)

// App is a fully wired composition session.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Catalog *part.Catalog
	Palette *color.Palette
	Engine  *composition.Engine
	Store   storage.Store
}

// ProviderSet provides every App dependency from a config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideCatalog,
	ProvideSetup,
	ProvidePalette,
	ProvideEngine,
	ProvideStore,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the logger and syncs it on cleanup.
func ProvideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideCatalog loads the part catalog from the configured directory.
func ProvideCatalog(cfg config.Config, logger *zap.Logger) (*part.Catalog, error) {
	c, err := part.LoadCatalog(cfg.Catalog.PartsDir)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("dir", cfg.Catalog.PartsDir),
		zap.Int("parts", c.Len()),
		zap.Strings("packages", c.Packages()),
	)
	return c, nil
}

// ProvideSetup loads the configured rig, or the built-in one.
func ProvideSetup(cfg config.Config) (*rig.Setup, error) {
	if cfg.Catalog.SetupPath == "" {
		return rig.DefaultSetup(), nil
	}
	return rig.LoadSetup(cfg.Catalog.SetupPath)
}

// ProvidePalette loads the configured palette, or the default one.
func ProvidePalette(cfg config.Config) (*color.Palette, error) {
	if cfg.Catalog.PalettePath == "" {
		return color.DefaultPalette(), nil
	}
	return color.LoadPalette(cfg.Catalog.PalettePath)
}

// ProvideEngine builds an empty composition in the configured initial state.
func ProvideEngine(cfg config.Config, catalog *part.Catalog, setup *rig.Setup, logger *zap.Logger) (*composition.Engine, error) {
	body, err := cfg.Composition.Body()
	if err != nil {
		return nil, err
	}
	skin, err := cfg.Composition.Skin()
	if err != nil {
		return nil, err
	}
	tint, err := cfg.Composition.Tint()
	if err != nil {
		return nil, err
	}
	return composition.New(catalog, setup, logger.Named("composition"),
		composition.WithBodyType(body),
		composition.WithInstanceMaterials(cfg.Composition.InstanceMaterials),
		composition.WithSkinColor(skin),
		composition.WithTintColor(tint),
	), nil
}

// ProvideStore opens the configured snapshot store and closes it on cleanup.
func ProvideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	var (
		s   storage.Store
		err error
	)
	logger = logger.Named("storage")
	switch cfg.Storage.Driver {
	case config.DriverFile:
		s, err = file.Open(cfg.Storage.Dir, logger)
	case config.DriverSQLite:
		s, err = sqlite.Open(cfg.Storage.SQLitePath, logger)
	case config.DriverPostgres:
		var pool *postgres.Pool
		pool, err = postgres.NewPool(ctx, cfg.Database, logger)
		if err == nil {
			s = postgres.NewSnapshotRepository(pool.DB(), logger).OwnPool(pool)
		}
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}
	return s, func() {
		if err := s.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}, nil
}
