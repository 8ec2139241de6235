package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"finanzapp/internal/cli"
	"finanzapp/internal/log"
	"finanzapp/internal/services"
)

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Manage recurring expenses",
}

var recurringRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Materialize recurring expenses that are due now",
	Args:  cobra.NoArgs,
	RunE:  runRecurring,
}

func init() {
	recurringCmd.AddCommand(recurringRunCmd)
	rootCmd.AddCommand(recurringCmd)
}

func runRecurring(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, app *cli.App) error {
		p := services.NewRecurringProcessor(app.Ledger, log.FromContext(ctx))
		count, err := p.ProcessDue(ctx, app.Ledger.Now())
		fmt.Printf("  %d gastos recurrentes generados\n", count)
		return err
	})
}
