package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ahsanfayaz52/notesapi/internal/config"
	"github.com/ahsanfayaz52/notesapi/internal/db"
	"github.com/ahsanfayaz52/notesapi/internal/handlers"
	"github.com/ahsanfayaz52/notesapi/internal/logging"
	"github.com/ahsanfayaz52/notesapi/internal/middleware"
	"github.com/ahsanfayaz52/notesapi/internal/service"
	"github.com/ahsanfayaz52/notesapi/internal/store"
	"github.com/ahsanfayaz52/notesapi/internal/validation"
)

func run(ctx context.Context, o overrides) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var metrics *middleware.Metrics
	if cfg.MetricsEnabled {
		metrics = middleware.NewMetrics()
	}

	gate := validation.New()
	svc := service.NewNoteService(st, logger,
		service.WithGate(gate),
		service.WithTimeout(cfg.StoreTimeout))
	router := handlers.NewRouter(handlers.RouterConfig{
		APIPrefix:   cfg.APIPrefix,
		Service:     svc,
		Gate:        gate,
		Errors:      middleware.NewErrorResponder(logger, cfg.IsDevelopment()),
		Metrics:     metrics,
		Logger:      logger,
		Development: cfg.IsDevelopment(),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"port", cfg.Port,
			"env", cfg.Env,
			"store", cfg.StoreDriver,
			"prefix", cfg.APIPrefix)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, draining connections", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func (o overrides) apply(cfg *config.Config) {
	if o.port != "" {
		cfg.Port = o.port
	}
	if o.env != "" {
		cfg.Env = o.env
	}
	if o.store != "" {
		cfg.StoreDriver = strings.ToLower(o.store)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.NoteStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := db.ConnectMongo(ctx, cfg.DBURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		}
		m := store.NewMongo(db.OpenCollection(client, cfg.DBName, store.NotesCollection))
		if err := m.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("connected to mongo", "database", cfg.DBName)
		return m, closeFn, nil

	case config.DriverMySQL:
		conn, err := db.OpenMySQL(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to mysql", "host", cfg.DBHost, "database", cfg.DBName)
		return store.NewMySQL(conn), func() { conn.Close() }, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, notes will not survive a restart")
		return store.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
