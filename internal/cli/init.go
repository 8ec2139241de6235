// Package cli provides common initialization utilities shared by
// cmd/finanzapp, cmd/finanzctl and cmd/alert-worker.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finanzapp/internal/backend"
	"finanzapp/internal/config"
	"finanzapp/internal/core"
	"finanzapp/internal/ledger"
	"finanzapp/internal/log"
	"finanzapp/internal/notify"
)

// SetupLogger initializes structured logging at the given level and makes
// it the process default.
func SetupLogger(level, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// App bundles the ledger with the components it was built from.
type App struct {
	Ledger     *ledger.Ledger
	Dispatcher *notify.Dispatcher
	cleanups   []backend.CleanupFunc
}

// InitApp builds the store, alert sink, dispatcher and ledger from cfg and
// loads the ledger. A failed load is logged and the ledger starts empty.
func InitApp(ctx context.Context, logger *log.Logger, cfg *config.Config) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger)

	storeRes, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	app := &App{cleanups: []backend.CleanupFunc{storeRes.Cleanup}}

	sinkRes, err := factory.CreateSink(ctx, bcfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if sinkRes.Cleanup != nil {
		app.cleanups = append(app.cleanups, sinkRes.Cleanup)
	}

	handler := notify.DefaultHandlerConfig()
	handler.PlaySound = cfg.NotifySound
	handler.SetBadge = cfg.NotifyBadge
	app.Dispatcher = notify.NewDispatcher(sinkRes.Sink, handler, logger)
	if !app.Dispatcher.RequestPermission(ctx) {
		logger.Warn("Alert permission denied, spending alerts are disabled")
	}

	app.Ledger = ledger.New(storeRes.Store, app.Dispatcher, logger)
	if err := app.Ledger.Load(ctx); err != nil {
		var rerr *core.StorageReadError
		if !errors.As(err, &rerr) {
			app.Close()
			return nil, err
		}
		logger.Warn("Starting with an empty ledger", log.FieldError, err)
	}
	return app, nil
}

// Close waits for pending limit checks, then releases the sink and store,
// newest first.
func (a *App) Close() error {
	if a.Ledger != nil {
		a.Ledger.WaitAlerts()
	}
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	return errors.Join(errs...)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup finished or timed out.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
