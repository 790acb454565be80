package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agrolink/agrolink/internal/app"
	"github.com/agrolink/agrolink/internal/config"
	agrolog "github.com/agrolink/agrolink/internal/log"
	"github.com/agrolink/agrolink/internal/storage"
	"github.com/google/uuid"
)

var loadConfigFn = config.Load

type runtimeEnv struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	services *app.Services
}

// withServices loads config, opens the store and waits for its one-time
// initialization before handing the app services to fn. An initialization
// failure stops the command here; past this point the app layer only logs
// storage errors.
func withServices(cmdCtx context.Context, deps commandDeps, fn func(context.Context, *runtimeEnv) error) error {
	timeout := 30 * time.Second
	if deps.globals != nil && deps.globals.Timeout > 0 {
		timeout = deps.globals.Timeout
	}
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(cmdCtx, timeout)
	defer cancel()

	cfg, report, err := loadConfigFn(loadOptions(deps))
	if err != nil {
		return mapCommandError(fmt.Errorf("load config: %w", err))
	}

	logger, closer, err := agrolog.New(cfg.Logging, deps.logOut)
	if err != nil {
		return mapCommandError(fmt.Errorf("%w: logging: %v", config.ErrInvalidConfig, err))
	}
	defer closer.Close()
	logger = logger.With("run_id", uuid.NewString())
	for _, warning := range report.Warnings {
		logger.Warn(warning)
	}
	if report.ConfigPath != "" {
		logger.Debug("loaded config file", "path", report.ConfigPath)
	}

	store, err := storage.Open(cfg.Storage.Path, storage.Options{
		Logger:      logger,
		BusyTimeout: cfg.Storage.BusyTimeout,
	})
	if err != nil {
		return mapCommandError(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	if err := store.Ready(ctx); err != nil {
		logger.Error("store initialization failed", "path", store.Path(), "error", err)
		return mapCommandError(err)
	}

	env := &runtimeEnv{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		services: app.NewServices(store, logger),
	}
	return mapCommandError(fn(ctx, env))
}

func loadOptions(deps commandDeps) config.LoadOptions {
	opts := config.LoadOptions{
		Env:        deps.env,
		DotEnvPath: deps.dotEnv,
	}
	if deps.globals == nil {
		return opts
	}
	if configPath := strings.TrimSpace(deps.globals.ConfigPath); configPath != "" {
		opts.ConfigPath = configPath
	}
	if dbPath := strings.TrimSpace(deps.globals.DBPath); dbPath != "" {
		opts.Flags.DBPath = &dbPath
	}
	if level := strings.TrimSpace(deps.globals.LogLevel); level != "" {
		opts.Flags.LogLevel = &level
	}
	return opts
}
