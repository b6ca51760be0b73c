package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"conversation-intel/internal/common/config"
	"conversation-intel/internal/common/database"
	"conversation-intel/internal/common/logger"
	"conversation-intel/internal/common/observability"
	"conversation-intel/internal/inference"
	"conversation-intel/internal/orchestrator"
	"conversation-intel/internal/routing"
	"conversation-intel/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	zapLogger.Info("starting analyzer server",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("addr", cfg.Server.Addr()),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	tracing, err := observability.NewTracing(cfg.App.Name, os.Getenv("JAEGER_ENDPOINT"))
	if err != nil {
		zapLogger.Warn("tracing disabled", zap.Error(err))
		tracing = nil
	} else {
		defer tracing.Shutdown()
	}

	var client inference.Client = inference.NewHTTPClient(&inference.Config{
		BaseURL:   cfg.Inference.BaseURL,
		APIKey:    cfg.Inference.APIKey,
		MiniModel: cfg.Inference.MiniModel,
		FullModel: cfg.Inference.FullModel,
		Timeout:   time.Duration(cfg.Inference.Timeout) * time.Millisecond,
	}, log)

	if cfg.Cache.Enabled {
		redisClient, err := database.NewRedis(cfg.Cache)
		if err != nil {
			zapLogger.Warn("redis unavailable, running without response cache", zap.Error(err))
		} else {
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(pingCtx)
			cancel()
			if pingErr != nil {
				zapLogger.Warn("redis unreachable, running without response cache", zap.Error(pingErr))
			} else {
				defer redisClient.Close()
				client = inference.NewCachedClient(client, redisClient, time.Duration(cfg.Cache.TTL)*time.Second, log)
				zapLogger.Info("inference response cache enabled", zap.String("address", cfg.Cache.Address))
			}
		}
	}

	usage := routing.NewUsageStats()
	orch := orchestrator.New(client, usage, log)
	srv := server.New(orch, obs, tracing, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()
	zapLogger.Info("analyzer server listening", zap.String("addr", cfg.Server.Addr()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLogger.Info("shutting down", zap.String("usage", usage.Summary()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
