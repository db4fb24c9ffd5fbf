// Command studio-server serves an editing session over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-studio/internal/api"
	"image-studio/internal/config"
	"image-studio/internal/store"
	"image-studio/internal/studio"
	"image-studio/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", config.DefaultFile, "Path to studio.yaml")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	dbPath := flag.String("db", "", "SQLite path (overrides store.path)")
	project := flag.String("project", "", "Project id (overrides store.project_id)")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *project != "" {
		cfg.Store.ProjectID = *project
	}

	logger, level := config.NewLeveledLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	log.Printf("Starting %s", version.String())

	adapter, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	sess, err := studio.New(studio.Options{Config: cfg, Store: adapter, Logger: logger})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := sess.Open(ctx); err != nil {
		log.Fatalf("Failed to open project %s: %v", cfg.Store.ProjectID, err)
	}
	sess.On(studio.EventWarning, func(data interface{}) {
		if err, ok := data.(error); ok {
			logger.Warn("session warning", "error", err)
		}
	})

	watcher := config.NewWatcher(*configPath, 2*time.Second, logger)
	watcher.OnChange(func(next *config.Config) {
		level.Set(config.ParseLevel(next.Log.Level))
	})
	watcher.Start()
	defer watcher.Stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.New(sess, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", cfg.Server.Addr, "project", cfg.Store.ProjectID, "store", cfg.Store.Driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sess.Close(closeCtx); err != nil {
		logger.Error("failed to close session", "error", err)
	}
	log.Println("Stopped")
}
