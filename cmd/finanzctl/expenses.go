package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finanzapp/internal/cli"
	"finanzapp/internal/core"
)

var (
	flagDescription   string
	flagFrequency     string
	flagOnlyRecurring bool
)

var addCmd = &cobra.Command{
	Use:   "add <category> <amount>",
	Short: "Register a one-off expense",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var addRecurringCmd = &cobra.Command{
	Use:   "add-recurring <category> <amount>",
	Short: "Register a recurring expense template",
	Args:  cobra.ExactArgs(2),
	RunE:  runAddRecurring,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered expenses",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	addCmd.Flags().StringVarP(&flagDescription, "description", "D", "", "Optional description")
	addRecurringCmd.Flags().StringVarP(&flagDescription, "description", "D", "", "Optional description")
	addRecurringCmd.Flags().StringVarP(&flagFrequency, "frequency", "f", "", "daily, weekly, monthly or yearly")
	_ = addRecurringCmd.MarkFlagRequired("frequency")
	listCmd.Flags().BoolVarP(&flagOnlyRecurring, "recurring", "r", false, "Only show recurring templates")

	rootCmd.AddCommand(addCmd, addRecurringCmd, listCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	draft, err := core.NewExpenseDraft(args[0], args[1], flagDescription)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, app *cli.App) error {
		rec, err := app.Ledger.AddExpense(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Printf("  Gasto registrado: %s %s\n\n", rec.Category, core.FormatCurrency(rec.Amount))
		fmt.Println(indent(cli.RenderToday(app.Ledger.TodayTotal(app.Ledger.Now()), app.Ledger.DailyLimit())))
		return nil
	})
}

func runAddRecurring(_ *cobra.Command, args []string) error {
	draft, err := core.NewExpenseDraft(args[0], args[1], flagDescription)
	if err != nil {
		return err
	}
	if draft.Frequency, err = core.ParseFrequency(flagFrequency); err != nil {
		return err
	}
	return withApp(func(ctx context.Context, app *cli.App) error {
		rec, err := app.Ledger.AddRecurringExpense(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Printf("  Gasto recurrente registrado: %s %s (%s)\n",
			rec.Category, core.FormatCurrency(rec.Amount), rec.Frequency)
		return nil
	})
}

func runList(_ *cobra.Command, _ []string) error {
	return withApp(func(_ context.Context, app *cli.App) error {
		expenses := app.Ledger.Expenses()
		title := "Gastos"
		if flagOnlyRecurring {
			expenses = app.Ledger.RecurringTemplates()
			title = "Gastos recurrentes"
		}
		fmt.Println(cli.RenderTitle(title))
		fmt.Println(indent(cli.RenderExpenses(expenses)))
		return nil
	})
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
