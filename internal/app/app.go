package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/showgate/internal/config"
	"github.com/kirinyoku/showgate/internal/postgres"
	redisx "github.com/kirinyoku/showgate/internal/redis"
	postgresrepo "github.com/kirinyoku/showgate/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/showgate/internal/repository/redis"
	"github.com/kirinyoku/showgate/internal/service"
	"github.com/kirinyoku/showgate/internal/service/queue"
	"github.com/kirinyoku/showgate/internal/service/wallet"
	httpgin "github.com/kirinyoku/showgate/internal/transport/http/gin"
	"github.com/kirinyoku/showgate/internal/worker"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	sweeper    *worker.QueueSweeper
	reaper     *worker.ReservationReaper
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewSchedulesPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, redisx.RateLimitPrefix("reserve"), 10, time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Services
	services := service.NewServices(store, cache, pubsub, limiter, service.Config{
		Queue: queue.Config{
			MaxActive:       cfg.Queue.MaxActive,
			ActivationBatch: cfg.Queue.ActivationBatch,
		},
		Wallet: wallet.Config{
			LockMode: wallet.LockMode(cfg.Wallet.LockMode),
		},
	})

	// Background workers
	sweeper := worker.NewQueueSweeper(services.Queue, cfg.Queue.SweepInterval, logger)
	reaper := worker.NewReservationReaper(services.Reservation, cfg.Worker.ReaperInterval, logger)

	// Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		sweeper: sweeper,
		reaper:  reaper,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	if err := a.sweeper.Start(gCtx); err != nil {
		return err
	}
	if err := a.reaper.Start(gCtx); err != nil {
		return err
	}

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down")
		a.sweeper.Stop()
		a.reaper.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
