// Package main provides the entry point for the Image Studio desktop application.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2/app"

	"image-studio/internal/config"
	"image-studio/internal/store"
	"image-studio/internal/studio"
	"image-studio/internal/version"
	"image-studio/ui/canvas"
	"image-studio/ui/mainwindow"
	"image-studio/ui/prefs"
)

const appID = "io.imagestudio.desktop"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", config.DefaultFile, "Path to studio.yaml")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, level := config.NewLeveledLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	log.Printf("Starting %s", version.String())

	adapter, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	relay := &canvas.Relay{}
	sess, err := studio.New(studio.Options{Config: cfg, Store: adapter, Surface: relay, Logger: logger})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	ctx := context.Background()
	if err := sess.Open(ctx); err != nil {
		log.Printf("Failed to load stored adjustments: %v", err)
	}

	fyneApp := app.NewWithID(appID)
	fyneApp.Settings().SetTheme(&mainwindow.StudioTheme{})
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, sess, relay, appPrefs)

	// An image path on the command line is opened at startup.
	if path := flag.Arg(0); path != "" {
		if data, err := os.ReadFile(path); err != nil {
			log.Printf("Failed to read %s: %v", path, err)
		} else if _, err := sess.ImportImage(ctx, data); err != nil {
			log.Printf("Failed to import %s: %v", path, err)
		}
	}

	watcher := config.NewWatcher(*configPath, 2*time.Second, logger)
	watcher.OnChange(func(next *config.Config) {
		level.Set(config.ParseLevel(next.Log.Level))
		logger.Info("config reloaded", "path", *configPath, "level", next.Log.Level)
	})
	watcher.Start()

	win.ShowAndRun()

	watcher.Stop()
	win.SavePreferences()
	if err := sess.Close(ctx); err != nil {
		log.Printf("Failed to flush adjustments: %v", err)
	}
}
