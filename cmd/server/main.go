package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"vidshelf-backend/internal/config"
	"vidshelf-backend/internal/handlers"
	"vidshelf-backend/internal/router"
	"vidshelf-backend/internal/storage"
	"vidshelf-backend/internal/store"
	"vidshelf-backend/internal/websocket"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.Info("Starting Vidshelf Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if cfg.Env == "development" {
		log.SetLevel(logrus.DebugLevel)
	}
	log.Info("✓ Environment variables loaded")

	// ──── Step 2: Open Storage ────
	kv, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("✗ Storage initialization failed: %v", err)
	}
	defer kv.Close()
	log.Infof("✓ Storage ready (%s)", cfg.StorageDriver)

	// ──── Step 3: Build Store and Restore State ────
	videoStore := store.New(kv, cfg.StorageKey, cfg.WatchedThreshold, log)
	if err := videoStore.Load(context.Background()); err != nil {
		log.WithError(err).Warn("persisted library was unreadable, recovered with seed data")
	}
	log.Info("✓ Video library loaded")

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(log)
	videoStore.SetNotifier(wsHub)
	log.Info("✓ WebSocket hub started")

	// ──── Step 5: Start HTTP Server ────
	videoHandler := handlers.NewVideoHandler(videoStore)
	r := router.New(videoHandler, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		// Flush the pending snapshot before the storage client closes.
		videoStore.Close()
	}()

	log.Infof("✓ Vidshelf Backend ready on http://localhost:%s", cfg.Port)
	log.Infof("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Infof("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-shutdownDone
}

func openStorage(cfg *config.Config) (storage.KV, error) {
	switch cfg.StorageDriver {
	case "redis":
		return storage.NewRedisKV(cfg.RedisURL)
	case "postgres":
		return storage.NewPostgresKV(cfg.DatabaseURL)
	case "memory":
		return storage.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
