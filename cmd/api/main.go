package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/wuyan/lifescope/internal/api/http"
	"github.com/wuyan/lifescope/internal/api/http/handlers"
	"github.com/wuyan/lifescope/internal/analytics"
	"github.com/wuyan/lifescope/internal/auth"
	"github.com/wuyan/lifescope/internal/config"
	"github.com/wuyan/lifescope/internal/events"
	"github.com/wuyan/lifescope/internal/messaging"
	"github.com/wuyan/lifescope/internal/observability"
	"github.com/wuyan/lifescope/internal/persistence"
	"github.com/wuyan/lifescope/internal/repository"
	"github.com/wuyan/lifescope/internal/service"
	"github.com/wuyan/lifescope/internal/worker"
	"github.com/wuyan/lifescope/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	signingKey, err := auth.NewSigningKey([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		logger.Fatal("invalid signing key", zap.Error(err))
	}
	tokens := auth.NewTokenCodec(signingKey, cfg.Auth.TokenTTL())
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency)

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	profiles := repository.NewProfileCache(userRepo, redis.Handle(), cfg.Redis.UserCacheTTL(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	publisher := messaging.NewKafkaPublisher(cfg.Kafka, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("closing kafka writer", zap.Error(err))
		}
	}()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Profiles:   profiles,
		Tokens:     tokens,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	dataService := service.NewDataService(publisher, dispatcher, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	authMiddleware := auth.NewAuthMiddleware(tokens, logger, func(o auth.AuthOutcome) {
		metrics.RecordAuthOutcome(string(o))
	})

	app := httptransport.NewApp(logger, metrics)
	httptransport.RegisterMiddlewares(app, httptransport.PipelineConfig{
		Logger:  logger,
		Metrics: metrics,
		Timeout: cfg.App.RequestTimeout(),
		CORS:    cfg.CORS,
		Authn:   authMiddleware,
		Policy:  auth.DefaultPolicy(),
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:    handlers.NewAuthHandler(authService),
		Data:    handlers.NewDataHandler(dataService),
		Reports: handlers.NewReportHandler(analytics.NewClient(cfg.Analytics.BaseURL, cfg.Analytics.Timeout())),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
