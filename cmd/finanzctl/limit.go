package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"finanzapp/internal/cli"
	"finanzapp/internal/core"
)

var limitCmd = &cobra.Command{
	Use:   "limit [value]",
	Short: "Show or set the daily spending limit (0 disables it)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLimit,
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's total against the daily limit",
	Args:  cobra.NoArgs,
	RunE:  runToday,
}

func init() {
	rootCmd.AddCommand(limitCmd, todayCmd)
}

func runLimit(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, app *cli.App) error {
		if len(args) == 1 {
			value, err := core.ParseLimit(args[0])
			if err != nil {
				return err
			}
			if err := app.Ledger.SetDailyLimit(ctx, value); err != nil {
				return err
			}
		}

		limit := app.Ledger.DailyLimit()
		if !limit.IsPositive() {
			fmt.Println("  Sin límite diario")
			return nil
		}
		fmt.Printf("  Límite diario: %s\n", core.FormatCurrency(limit))
		return nil
	})
}

func runToday(_ *cobra.Command, _ []string) error {
	return withApp(func(_ context.Context, app *cli.App) error {
		now := app.Ledger.Now()
		fmt.Println(cli.RenderTitle(now.Format("Monday 2006-01-02")))
		fmt.Println(indent(cli.RenderToday(app.Ledger.TodayTotal(now), app.Ledger.DailyLimit())))
		return nil
	})
}
