package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finanzapp/internal/cli"
	apphttp "finanzapp/internal/http"
	"finanzapp/internal/log"
	"finanzapp/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	logger.Info("Starting finanzapp",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"notify", cfg.NotifyBackend)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := cli.InitApp(initCtx, logger, cfg)
	initCancel()
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, app.Ledger, logger, time.Local)
	processor := services.NewRecurringProcessor(app.Ledger, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := app.Close(); err != nil {
			logger.Error("Failed to release backends", log.FieldError, err)
		}
	})

	go runRecurring(ctx, logger, processor, srv, cfg.RecurringInterval)

	logger.Info("HTTP server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// runRecurring materializes due recurring expenses at startup and then on
// every tick until ctx is cancelled.
func runRecurring(ctx context.Context, logger *log.Logger, p *services.RecurringProcessor, srv *apphttp.Server, interval time.Duration) {
	logger = logger.WithComponent(log.ComponentRecurring)

	process := func(now time.Time) {
		count, err := p.ProcessDue(ctx, now)
		// The ledger was refreshed from the store, possibly with other writers' records.
		srv.InvalidateCaches()
		if err != nil {
			logger.Error("Recurring processing failed", log.FieldError, err, log.FieldCount, count)
			return
		}
		logger.Info("Recurring processing complete",
			log.FieldCount, count,
			"next_check", now.Add(interval).Format("15:04:05"))
	}

	process(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			process(now)
		}
	}
}
