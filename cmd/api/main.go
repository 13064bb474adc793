package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cschleiden/go-workflows/backend"
	"github.com/cschleiden/go-workflows/client"

	"github.com/cschleiden/resume-publisher/internal/api"
	"github.com/cschleiden/resume-publisher/internal/backends"
	"github.com/cschleiden/resume-publisher/internal/config"
	"github.com/cschleiden/resume-publisher/internal/events"
	"github.com/cschleiden/resume-publisher/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*configPath, logger); err != nil {
		logger.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	b, err := backends.New(cfg, backend.WithLogger(logger))
	if err != nil {
		return err
	}

	c := client.New(b)

	eventStore := events.NewStore(cfg.EventStoreCapacity)

	// The consumer runs for the whole process lifetime. Without it the status
	// surface can never show progress, so a consumer that gives up after its
	// connect retries takes the process down.
	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, eventStore, logger)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			logger.Error("worker events consumer failed", "err", err)
			stop()
		}
	}()

	srv := api.NewServer(store, eventStore, c, logger)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: srv.Router(),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("api listening", "addr", httpServer.Addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
