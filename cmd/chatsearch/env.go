package main

import (
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"chatsearch/internal/backend"
	"chatsearch/internal/config"
	"chatsearch/internal/eventbus"
	"chatsearch/internal/logging"
	"chatsearch/internal/search"
)

// env is what every command needs: configuration, logging and the index
type env struct {
	cfg      *config.Config
	bus      eventbus.EventBus
	logger   *zap.Logger
	index    *backend.SQLite
	closeLog func()
}

// openEnv loads configuration and opens the index. console enables log
// output on stderr, which only commands that do not own the terminal want.
func openEnv(c *cli.Command, console bool) (*env, error) {
	bus := eventbus.New()

	cfg, err := config.NewServiceWithBus(c.String("config"), bus).Load()
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog := logging.New(logging.Options{
		File:    cfg.Log.File,
		Debug:   cfg.Log.Debug || c.Bool("debug"),
		Console: console && c.Bool("debug"),
	})
	zap.ReplaceGlobals(logger)
	logger.Debug("config loaded", zap.String("path", c.String("config")), zap.String("database", cfg.Database))

	bus.Subscribe(eventbus.EventIndexImported, func(ev eventbus.DomainEvent) {
		if imported, ok := ev.(eventbus.IndexImportedEvent); ok {
			logger.Info("index updated", zap.Int("messages", imported.Count))
		}
	})

	index, err := backend.OpenSQLite(cfg.Database, logger.Named("backend"))
	if err != nil {
		closeLog()
		bus.Close()
		return nil, fmt.Errorf("opening index: %w", err)
	}

	return &env{cfg: cfg, bus: bus, logger: logger, index: index, closeLog: closeLog}, nil
}

func (e *env) Close() {
	e.bus.Close()
	if err := e.index.Close(); err != nil {
		e.logger.Warn("closing index", zap.Error(err))
	}
	e.closeLog()
}

// backend is the index behind the configured page cache
func (e *env) backend() *backend.Cached {
	return backend.NewCached(e.index, e.cfg.Search.CacheTTL.Duration)
}

// managerOptions maps the search settings onto Manager options
func (e *env) managerOptions() []search.Option {
	s := e.cfg.Search
	return []search.Option{
		search.WithDebounce(s.Debounce.Duration),
		search.WithPageSize(s.PageSize),
		search.WithLocateMaxPages(s.LocateMaxPages),
		search.WithLogger(e.logger.Named("search")),
	}
}
