package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/pf-fairness-engine/internal/api"
	"github.com/MJE43/pf-fairness-engine/internal/cache"
	"github.com/MJE43/pf-fairness-engine/internal/config"
	"github.com/MJE43/pf-fairness-engine/internal/store"
)

// ServeCmd runs the HTTP API until interrupted
type ServeCmd struct {
	Engine  config.Engine  `embed:""`
	Storage config.Storage `embed:""`
	Server  config.Server  `embed:""`
}

func (c *ServeCmd) Run(logger *log.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := c.Engine.NewEngine(c.Engine.Keys.Keyring())
	if err != nil {
		return err
	}

	db, err := openStore(ctx, c.Storage, logger.WithPrefix("store"))
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(db))

	opts := []api.Option{
		api.WithStore(db),
		api.WithRequestTimeout(c.Server.RequestTimeout),
	}
	if c.Storage.RedisURL != "" {
		tokens, cerr := cache.NewTokenCache(ctx, c.Storage.RedisURL, c.Storage.TokenTTL)
		if cerr != nil {
			return cerr
		}
		defer multierr.AppendInvoke(&err, multierr.Close(tokens))
		opts = append(opts, api.WithCache(tokens))
		logger.WithPrefix("cache").Info("token cache connected", "ttl", c.Storage.TokenTTL)
	}

	srv := &http.Server{
		Addr:              c.Server.Addr,
		Handler:           api.NewServer(engine, logger, opts...).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", c.Server.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore picks Postgres when DATABASE_URL is set and SQLite otherwise, then migrates.
func openStore(ctx context.Context, cfg config.Storage, logger *log.Logger) (store.DB, error) {
	var (
		db  store.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		db, err = store.NewPostgresDB(ctx, cfg.DatabaseURL)
	} else {
		db, err = store.NewSQLiteDB(cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL != "" {
		logger.Info("using postgres")
	} else {
		logger.Info("using sqlite", "path", cfg.SQLitePath)
	}

	if err := db.Migrate(ctx); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	return db, nil
}
