package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/breaker"
	"github.com/kailas-cloud/fedsearch/internal/config"
	dbRedis "github.com/kailas-cloud/fedsearch/internal/db/redis"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/fedsearch/internal/logger"
	"github.com/kailas-cloud/fedsearch/internal/metrics"
	searchrepo "github.com/kailas-cloud/fedsearch/internal/repository/search"
	"github.com/kailas-cloud/fedsearch/internal/repository/synonym"
	"github.com/kailas-cloud/fedsearch/internal/tracing"
	chiTransport "github.com/kailas-cloud/fedsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/fedsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/fedsearch/internal/usecase/search"
	"github.com/kailas-cloud/fedsearch/internal/version"
)

func main() {
	printSchema := flag.Bool("schema", false, "print the FT.CREATE command of every entity index and exit")
	flag.Parse()

	if *printSchema {
		for _, s := range searchrepo.Schemas() {
			fmt.Println(s.Index.String())
		}
		return
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting fedsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT secret not set: identity is taken from X-Tenant-ID/X-User-ID/X-Roles headers")
	}

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		Enabled:     cfg.Tracing.Enabled,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	syn := synonym.New(store, cfg.Search.SynonymCacheTTL(), metrics.SynonymCacheTotal, logger)
	repoExecs := searchrepo.NewExecutors(store, syn, searchrepo.Options{
		WindowBuffer: cfg.Search.WindowBuffer,
		MaxWindow:    cfg.Search.MaxWindow,
	})

	bcfg := breaker.Config{
		MaxFailures:  cfg.Breaker.MaxFailures,
		ResetTimeout: cfg.Breaker.ResetTimeout(),
	}
	execs := make([]searchuc.Executor, len(repoExecs))
	breakers := make([]healthuc.BreakerReporter, len(repoExecs))
	targets := make([]healthuc.Index, len(repoExecs))
	for i, e := range repoExecs {
		g := searchuc.Guard(e, bcfg, logger)
		execs[i] = g
		breakers[i] = g
		targets[i] = healthuc.Index{Type: e.EntityType(), Name: e.Schema().Index.Name}
	}

	norm, _ := searchuc.ParseNormalization(cfg.Search.ScoreNormalization)
	coord := searchuc.NewCoordinator(execs, searchuc.CoordinatorOptions{
		Timeout:       cfg.Search.Timeout(),
		MaxConcurrent: cfg.Search.MaxConcurrentFanouts,
	})
	searchSvc := searchuc.New(coord, searchuc.Options{
		Limits: request.Limits{
			DefaultPageSize: cfg.Search.DefaultPageSize,
			MaxPageSize:     cfg.Search.MaxPageSize,
			MaxWindow:       cfg.Search.MaxWindow,
		},
		QuickSearchSize:   cfg.Search.QuickSearchSize,
		EntityMaxPageSize: cfg.Search.EntityMaxPageSize,
		Normalization:     norm,
	})
	healthSvc := healthuc.New(store, store, targets, breakers)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	r := chiTransport.NewRouter(server, chiTransport.AuthConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
