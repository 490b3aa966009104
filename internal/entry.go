// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/revue/internal/api"
	"github.com/starford/revue/internal/index"
	"github.com/starford/revue/internal/notesapi"
	"github.com/starford/revue/internal/noteservice"
	"github.com/starford/revue/internal/reviews"
	"github.com/starford/revue/internal/sse"
	"github.com/starford/revue/internal/storage"
	"github.com/starford/revue/internal/watchlist"
)

var errConfigRequired = errors.New("config is required")

// Core bundles the components every command needs: the note store, the
// SQLite index, the review history and the service on top of them.
type Core struct {
	Config  *Config
	Logger  *slog.Logger
	Store   storage.Provider
	DB      *index.DB
	History *reviews.History
	Service *noteservice.Service
}

// Close releases the index.
func (c *Core) Close() error {
	return c.DB.Close()
}

// Open builds the Core from cfg and brings the index up to date with the
// note store.
func Open(cfg *Config, logger *slog.Logger) (*Core, error) {
	loc, err := cfg.Review.Location()
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	history := reviews.NewHistory(db)
	svc := noteservice.NewService(store, db, history,
		noteservice.WithLocation(loc),
		noteservice.WithDefaultHours(cfg.Review.DefaultHours),
	)

	return &Core{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		DB:      db,
		History: history,
		Service: svc,
	}, nil
}

func openStore(cfg *Config) (storage.Provider, error) {
	if cfg.Notes.Backend == BackendRemote {
		return notesapi.New(notesapi.Config{
			BaseURL: cfg.Notes.Remote.BaseURL,
			Token:   cfg.Notes.Remote.Token,
			Timeout: cfg.Notes.Remote.Timeout,
		}), nil
	}

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	return storage.NewFS(cfg.Vault.Path)
}

// NewLogger builds the JSON logger used by every command.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Setup applies opts, installs the default logger and opens the Core. It is
// the shared entry for commands that do not serve HTTP.
func Setup(opts ...Option) (*Core, error) {
	app := &application{}
	if err := app.apply(opts); err != nil {
		return nil, err
	}

	logger := NewLogger(app.config, app.logOutput)
	slog.SetDefault(logger)

	return Open(app.config, logger)
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	if err := app.apply(opts); err != nil {
		return err
	}

	cfg := app.config

	logger := NewLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend", cfg.Notes.Backend),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Duration("refresh_interval", cfg.Review.RefreshInterval),
		slog.String("log_level", cfg.App.LogLevel.String()))

	core, err := Open(cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close()

	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	svc := core.Service
	svc.SetOnChange(broker.PublishChange)

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := core.History.Load(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Notes.Backend == BackendRemote {
		g.Go(func() error {
			resync(gCtx, core, cfg.Notes.Remote.SyncInterval)
			return nil
		})
	} else {
		g.Go(func() error {
			if err := index.Watch(gCtx, core.DB, core.Store, cfg.Vault.Path, logger, broker.PublishNoteEvent); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	poller := watchlist.NewPoller(cfg.Review.RefreshInterval, svc.Watchlist, broker.PublishWatchlist, logger)
	g.Go(func() error {
		poller.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the HTTP server has been stopped so the
// watcher and poller exit too.
var errShutdown = errors.New("shutdown")

// resync reconciles the index with a remote note store until ctx is done.
func resync(ctx context.Context, core *Core, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := index.Sync(core.DB, core.Store, core.Logger); err != nil {
				core.Logger.Warn("remote sync failed", slog.String("error", err.Error()))
			}
		}
	}
}
