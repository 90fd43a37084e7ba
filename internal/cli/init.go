// Package cli provides common initialization utilities shared by
// cmd/expenses and cmd/expensectl.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expenses/internal/config"
	applog "expenses/internal/log"
)

// SetupLogger initializes structured logging at level (debug, info, warn,
// error) and sets it as the default logger. JSON output is used when json
// is true. Unknown levels fall back to info with a warning.
func SetupLogger(level string, json bool) *slog.Logger {
	if level == "" {
		level = "info"
	}
	lvl, err := applog.ParseLevel(level)
	logger := applog.New(applog.Config{Level: lvl, JSON: json, Output: os.Stdout})
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", applog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal handler without logging.
func SignalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	return notifyContext(parent, logger, syscall.SIGINT, syscall.SIGTERM)
}

func notifyContext(parent context.Context, logger *slog.Logger, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case sig := <-ch:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(ch)
		cancel()
	}
}
