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

	"shopmetrics/internal/config"
	"shopmetrics/internal/gather"
	"shopmetrics/internal/httpapi"
	"shopmetrics/internal/store"
	"shopmetrics/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/shopmetrics.yaml"
	if p := os.Getenv("SHOPMETRICS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source := gather.NewDirSource(cfg.Storage.DataDir, cfg.Datasets.Dirs(), cfg.Datasets.Ext, logger)
	srv := httpapi.NewServer(source, logger, cfg.Analytics.EngineOptions()...)
	srv.SetReloadLimit(cfg.Server.ReloadLimitPerMin)

	if cfg.Storage.SQLitePath != "" {
		history, err := store.NewSQLiteHistory(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening history: %v", err)
		}
		defer history.Close()
		srv.SetHistory(history)
	}

	// The export share may still be mounting when the service starts.
	err = util.Retry(ctx, max(cfg.Server.InitialLoadRetries, 1), time.Second, srv.Reload)
	if err != nil {
		log.Fatalf("initial load: %v", err)
	}

	if cfg.Storage.ArchiveDir != "" {
		archive := store.NewParquetArchive(cfg.Storage.ArchiveDir)
		n, err := archive.WriteSnapshot(ctx, srv.Engine().Snapshot())
		if err != nil {
			logger.Warn("archiving snapshot", "dir", cfg.Storage.ArchiveDir, "error", err)
		} else {
			logger.Info("snapshot archived", "dir", cfg.Storage.ArchiveDir, "files", n)
		}
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("shopmetrics server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down shopmetrics server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
