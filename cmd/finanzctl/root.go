package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"finanzapp/internal/cli"
	"finanzapp/internal/log"
)

var (
	flagLogLevel string
	flagTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "finanzctl",
	Short:         "Registra gastos y controla el límite diario",
	Long:          "Register expenses, manage the daily spending limit and inspect today's total.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "Timeout for the whole command")
}

// withApp loads configuration, builds the ledger and runs fn with it.
// Backends are released when fn returns.
func withApp(fn func(ctx context.Context, app *cli.App) error) error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(flagLogLevel, log.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	app, err := cli.InitApp(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to release backends", log.FieldError, err)
		}
	}()
	return fn(ctx, app)
}
