package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/denismitr/paysheet"
	"github.com/denismitr/paysheet/export"
	"github.com/denismitr/paysheet/internal/config"
	"github.com/denismitr/paysheet/internal/logging"
	"github.com/denismitr/paysheet/internal/web"
	"github.com/denismitr/paysheet/kv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	dbPath := cfg.Paysheet.DBPath
	if cfg.Paysheet.Headless {
		dbPath = kv.InMemory
	}

	db, closer, err := kv.Open(dbPath, &kv.Config{
		PersistenceStrategy: kv.PersistenceStrategy(cfg.Paysheet.Persistence),
	})
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}

	defer func() {
		if err := closer(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	var downloads paysheet.Downloader
	if cfg.Paysheet.ExportDir != "" {
		downloads = export.Dir{Path: cfg.Paysheet.ExportDir}
	}

	logger.Info("configuration loaded",
		"db", dbPath,
		"persistence", cfg.Paysheet.Persistence,
		"export_dir", cfg.Paysheet.ExportDir,
		"auto_export", cfg.Paysheet.AutoExport,
		"headless", cfg.Paysheet.Headless,
	)

	server := web.NewServer(db, web.Options{
		KeyPrefix:    cfg.Paysheet.KeyPrefix,
		FileName:     cfg.Paysheet.FileName,
		SheetName:    cfg.Paysheet.SheetName,
		AutoExport:   cfg.Paysheet.AutoExport,
		Downloads:    downloads,
		Headless:     cfg.Paysheet.Headless,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Logger:       logger,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		return
	}

	<-done
}
