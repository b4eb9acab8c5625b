// Package main provides the studykit HTTP API server entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/studykit/studykit/internal/artifact"
	"github.com/studykit/studykit/internal/cache"
	"github.com/studykit/studykit/internal/config"
	"github.com/studykit/studykit/internal/genai"
	"github.com/studykit/studykit/internal/keypool"
	"github.com/studykit/studykit/internal/server"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.Default()

	cfg, err := config.Load(config.Env("STUDYKIT_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Credentials come from the environment only. At least one is required.
	pool, err := keypool.New(config.Credentials())
	if err != nil {
		log.Fatalf("failed to initialize credential pool: %v (set %s)", err, config.CredentialEnvPrefix)
	}

	// Assemble the generation stack: client -> invoker -> service.
	clientOpts := []genai.ClientOption{}
	if cfg.Generation.Model != "" {
		clientOpts = append(clientOpts, genai.WithModel(cfg.Generation.Model))
	}
	client := genai.NewClient(clientOpts...)
	invoker := genai.NewInvoker(pool,
		genai.WithMaxAttempts(cfg.Generation.MaxAttempts),
		genai.WithBackoffBase(cfg.Generation.BackoffBase()),
	)
	generator := genai.NewService(client, invoker, logger)

	store := cache.New(
		cache.WithCapacity(cfg.Cache.Capacity),
		cache.WithTTL(cfg.Cache.TTL()),
	)

	artifacts := artifact.NewService(generator, store, logger)
	srv := server.New(artifacts, pool, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Shut down cleanly on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting studykit server", "addr", cfg.Server.Addr, "credentials", pool.Status().Total)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
	os.Exit(0)
}
