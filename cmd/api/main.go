package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/config"
	"github.com/folio-labs/portfolio-api/internal/auth"
	authservice "github.com/folio-labs/portfolio-api/internal/auth/service"
	"github.com/folio-labs/portfolio-api/internal/bootstrap"
	"github.com/folio-labs/portfolio-api/internal/logging"
	"github.com/folio-labs/portfolio-api/internal/metrics"
	profilerepo "github.com/folio-labs/portfolio-api/internal/profiles/repository"
	profileservice "github.com/folio-labs/portfolio-api/internal/profiles/service"
	projectrepo "github.com/folio-labs/portfolio-api/internal/projects/repository"
	projectservice "github.com/folio-labs/portfolio-api/internal/projects/service"
	"github.com/folio-labs/portfolio-api/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	app, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return err
	}
	provider, err := auth.NewFirebaseProvider(ctx, app, &cfg.Firebase)
	if err != nil {
		return err
	}

	db, err := bootstrap.OpenDB(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := bootstrap.NewObjectStore(ctx, cfg, app)
	if err != nil {
		return err
	}

	rlStore, closeRL, err := bootstrap.NewRateLimitStore(ctx, &cfg.RateLimit)
	if err != nil {
		return err
	}
	defer closeRL()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	limiter := ratelimit.NewLimiter(rlStore, ratelimit.WithLogger(logger))
	global := ratelimit.NewGlobal(limiter, cfg.RateLimit.GlobalMax, cfg.RateLimit.GlobalWindow)
	janitor, err := ratelimit.NewJanitor(cfg.RateLimit.SweepSpec, limiter, logger)
	if err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
		Provider: provider,
		Limiter:  limiter,
		Global:   global,
		Projects: projectservice.NewProjectService(projectrepo.NewProjectRepository(db.DB), store, projectservice.Options{
			KeyPrefix: cfg.Storage.Prefix,
			Logger:    logger,
			Metrics:   m,
		}),
		Presenter: profileservice.NewPresenterService(profilerepo.NewPresenterRepository(db.DB), logger),
		Users:     authservice.NewAuthService(provider, logger),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("rate_limit_store", cfg.RateLimit.Store))
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
