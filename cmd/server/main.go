package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Tyrowin/gochat-presence/internal/logging"
	"github.com/Tyrowin/gochat-presence/internal/server"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Presence chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run owns the whole server lifecycle so deferred cleanup happens before the
// process exits.
func run() (int, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg, err := server.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger.Info("Starting presence chat server",
		"port", cfg.Port,
		"origins", cfg.Origins(),
		"notify_drops", cfg.NotifyDrops,
	)

	srv := server.New(cfg, logger)
	srv.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-serveErr:
		if runErr != nil {
			logger.Error("HTTP server stopped", "error", runErr)
		}
	}

	// The hub gets its own timeout inside Shutdown; leave room for HTTP drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	if runErr != nil {
		return exitRuntime, runErr
	}
	return exitOK, nil
}
