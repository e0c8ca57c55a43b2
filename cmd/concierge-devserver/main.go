package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ConciergeChat/internal/config"
	"ConciergeChat/internal/devbackend"
	"ConciergeChat/internal/telemetry"
)

func main() {
	cfg := config.LoadDevServer()
	var repliesPath string

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database file (empty keeps everything in memory)")
	flag.StringVar(&repliesPath, "replies", "", "YAML persona file (defaults to the built-in receptionist)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.Parse()

	if err := run(cfg, repliesPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.DevServerConfig, repliesPath string) error {
	logger, logCloser, err := telemetry.InitLogger(telemetry.LoggerOptions{
		Dir:     cfg.LogDir,
		File:    "concierge-devserver.log",
		Debug:   cfg.Debug,
		Console: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx, "concierge-devserver", cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer cleanup()

	var store devbackend.Store
	if cfg.DatabasePath != "" {
		store, err = devbackend.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return err
		}
		logger.Info("using sqlite store", "path", cfg.DatabasePath)
	} else {
		store = devbackend.NewMemoryStore()
		logger.Info("using in-memory store")
	}
	defer store.Close()

	persona, err := devbackend.LoadPersona(repliesPath)
	if err != nil {
		return err
	}
	var responder devbackend.Responder
	if cfg.OpenAIAPIKey != "" {
		responder = devbackend.NewOpenAIResponder(openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIModel, persona)
		logger.Info("assistant replies from OpenAI", "model", cfg.OpenAIModel)
	} else {
		responder = devbackend.NewCannedResponder(persona)
		logger.Info("assistant replies from canned persona")
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: devbackend.NewServer(store, responder, devbackend.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
			Tracer:         tracer,
			Meter:          meter,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("could not listen on %s: %w", cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, initiating graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
