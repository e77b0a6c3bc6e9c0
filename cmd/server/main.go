// @title QC Insights API
// @version 1.0
// @description Импорт таблиц QC-фидбэка, майнинг паттернов дефектов и рекомендации.

// @BasePath /
// @schemes http https

package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qcinsights/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := server.SetupLogger(cfg.LogLevel)
	logger.Info("starting qcinsights server",
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"tables", cfg.TablesPath,
	)

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	startErr := make(chan error, 1)
	go func() {
		startErr <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-startErr:
		if err != nil {
			logger.Error("server stopped with error", "error", err)
			_ = srv.Shutdown(context.Background())
			os.Exit(1)
		}
		return
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
