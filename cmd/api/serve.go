package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/jobcard-backend/internal/api"
	"github.com/baharkarakas/jobcard-backend/internal/auth"
	"github.com/baharkarakas/jobcard-backend/internal/config"
	"github.com/baharkarakas/jobcard-backend/internal/db"
	"github.com/baharkarakas/jobcard-backend/internal/events"
	"github.com/baharkarakas/jobcard-backend/internal/metrics"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/repository/memory"
	"github.com/baharkarakas/jobcard-backend/internal/repository/postgres"
	"github.com/baharkarakas/jobcard-backend/internal/services"
	"github.com/baharkarakas/jobcard-backend/internal/storage"
	"github.com/baharkarakas/jobcard-backend/internal/worker"
)

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store repo.Store
		ping  func(context.Context) error
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		store = memory.New()
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		store = postgres.NewStore(pool)
		ping = pool.Ping
	}

	blobs, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}

	var pub events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("amqp: %w", err)
		}
		pub = rp
		log.Info("publishing job card events", "exchange", cfg.AMQPExchange)
	}
	defer pub.Close()

	wp := worker.NewPool(cfg.WorkerCount, 0)
	// pool drains before the publisher closes
	defer wp.Stop()

	metrics.Init()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	dispatcher := services.NewDispatcher(pub, wp, log)
	authSvc := services.NewAuthService(store, tm, log)

	created, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info("bootstrap admin created", "email", cfg.AdminEmail)
	}

	r := api.NewRouter(api.RouterDeps{
		Cfg:             cfg,
		Log:             log,
		TM:              tm,
		AuthSvc:         authSvc,
		CompanySvc:      services.NewCompanyService(store, log),
		UserSvc:         services.NewUserService(store),
		ProviderSvc:     services.NewProviderService(store),
		JobCardSvc:      services.NewJobCardService(store, blobs, dispatcher, cfg.MaxUploadBytes, log),
		NotificationSvc: services.NewNotificationService(store, log),
		DashboardSvc:    services.NewDashboardService(store),
		Ping:            ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
