package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/database"
	"github.com/vancomm/minefield/internal/metrics"
	"github.com/vancomm/minefield/internal/repository"
	"github.com/vancomm/minefield/internal/session"
)

type App struct {
	logger   *slog.Logger
	config   *config.App
	db       *pgxpool.Pool
	repo     *repository.Queries
	cookies  *config.Cookies
	jwt      *config.JWT
	ws       *config.WebSocket
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	sessions *session.Manager
}

func New(logger *slog.Logger, cfg *config.App) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &App{
		logger:   logger,
		config:   cfg,
		registry: registry,
		metrics:  metrics.New(registry),
	}
}

func (a *App) load(ctx context.Context) error {
	db, err := database.ConnectAndMigrate(ctx)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	a.repo = repository.New(db)

	a.jwt, err = config.NewJWT()
	if err != nil {
		return fmt.Errorf("failed to read jwt config: %w", err)
	}

	a.cookies, err = config.NewCookies(a.jwt)
	if err != nil {
		return fmt.Errorf("failed to read cookies config: %w", err)
	}

	a.ws, err = config.NewWebSocket()
	if err != nil {
		return fmt.Errorf("failed to read ws config: %w", err)
	}

	a.sessions = session.NewManager(session.Options{
		Store:       resultStore{a.repo},
		Metrics:     a.metrics,
		TimeLimit:   a.config.TimeLimit,
		IdleTimeout: a.config.IdleTimeout,
	})
	return nil
}

// Start serves until ctx is done, then shuts the server down and drops every
// game session.
func (a *App) Start(ctx context.Context) error {
	if err := a.load(ctx); err != nil {
		return err
	}
	defer a.db.Close()

	server := &http.Server{
		Addr:         a.config.Addr,
		Handler:      a.handler(),
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", a.config.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		return a.sessions.Run(ctx)
	})
	eg.Go(func() error {
		<-ctx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	return eg.Wait()
}

func (a *App) handler() http.Handler {
	router := a.routes()
	if base := strings.TrimSuffix(a.config.BasePath, "/"); base != "" {
		mux := http.NewServeMux()
		mux.Handle(base+"/", http.StripPrefix(base, router))
		return mux
	}
	return router
}
