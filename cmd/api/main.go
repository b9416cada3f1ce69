package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipes-api/config"
	"github.com/pageza/recipes-api/internal/database"
	"github.com/pageza/recipes-api/internal/logger"
	"github.com/pageza/recipes-api/internal/server"
	"github.com/pageza/recipes-api/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, logr); err != nil {
		logr.WithError(err).Fatal("server error")
	}
	logr.Info("server stopped")
}

func run(cfg *config.Config, logr *logrus.Logger) error {
	ctx := context.Background()

	ids, err := store.NewIDGenerator(cfg.IDStrategy)
	if err != nil {
		return err
	}

	// Initialize the recipe store
	recipes, closeStore, err := store.Open(cfg.StoreBackend, ids)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Seed {
		inputs, err := store.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		created, err := store.Seed(ctx, recipes, inputs)
		if err != nil {
			return err
		}
		logr.WithField("count", len(created)).Info("seeded recipes")
	}

	var opts []server.Option
	if cfg.RedisURL != "" && cfg.RateLimitRequests > 0 {
		client, err := database.NewRedisClient(ctx, cfg, logr)
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, server.WithRedis(client))
	}

	logr.WithFields(logrus.Fields{
		"env":         cfg.Environment,
		"backend":     cfg.StoreBackend,
		"id_strategy": cfg.IDStrategy,
	}).Info("configuration loaded")

	srv := server.New(cfg, recipes, logr, opts...)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logr.WithField("signal", sig.String()).Info("received signal")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
