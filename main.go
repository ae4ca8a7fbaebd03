package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"idsampler/internal/config"
	"idsampler/internal/container"
	"idsampler/internal/logging"
	"idsampler/internal/profiling"
	"idsampler/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(appConfig.Logging.Level, appConfig.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Fatal("failed to create application container", zap.Error(err))
	}
	if err := appContainer.Init(ctx); err != nil {
		logger.Fatal("failed to initialize container", zap.Error(err))
	}
	defer appContainer.Shutdown(context.Background())

	var debugServer *profiling.DebugServer
	if appConfig.Profiling.Enabled {
		debugServer = profiling.NewDebugServer(":"+appConfig.Profiling.Port, logger)
		debugServer.Start()
	}

	server, err := ui.NewServer(ui.Config{
		Addr:              ":" + appConfig.Server.Port,
		GinMode:           appConfig.Server.GinMode,
		DefaultSampleSize: appConfig.Sampling.DefaultSampleSize,
		MaxUploadBytes:    appConfig.Sampling.MaxUploadBytes,
		Version:           config.Version,
	}, appContainer.Runs, logger)
	if err != nil {
		logger.Fatal("failed to create UI server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if debugServer != nil {
		if err := debugServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("pprof shutdown failed", zap.Error(err))
		}
	}
	logger.Info("server exited")
}
