package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzapp/internal/core"
	"finanzapp/internal/log"
)

// maxCatchUp bounds the occurrences created for one template in one run.
// Older missed dates are created on the following runs.
const maxCatchUp = 366

// Ledger is the subset of *ledger.Ledger the processor needs.
type Ledger interface {
	Refresh(ctx context.Context) error
	Expenses() []core.Expense
	AddOccurrence(ctx context.Context, template core.Expense, at time.Time) (core.Expense, error)
}

// RecurringProcessor handles the automatic creation of expenses from recurring templates.
type RecurringProcessor struct {
	ledger Ledger
	logger *log.Logger
}

// NewRecurringProcessor creates a new recurring expense processor.
func NewRecurringProcessor(ledger Ledger, logger *log.Logger) *RecurringProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecurringProcessor{
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentRecurring),
	}
}

// ProcessDue materializes every scheduled occurrence up to now that has not
// been recorded yet, each dated at its scheduled time. It returns how many
// occurrences were recorded. A failing template is logged and skipped; the
// first failure is returned after the scan.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	if err := p.ledger.Refresh(ctx); err != nil {
		return 0, fmt.Errorf("refresh ledger: %w", err)
	}

	expenses := p.ledger.Expenses()
	last := lastOccurrences(expenses)

	var (
		processed int
		checked   int
		firstErr  error
	)
	for _, tmpl := range expenses {
		if !tmpl.IsRecurring {
			continue
		}
		checked++

		schedule, err := GetSchedule(tmpl.Frequency)
		if err != nil {
			p.logger.Event(ctx, slog.LevelWarn, "Skipping template with unknown frequency",
				log.NewFields().
					WithOperation(log.OpProcess).
					WithExpense(tmpl.ID, tmpl.Category, tmpl.Amount.String()).
					WithError(err, log.ErrorTypeValidation))
			continue
		}

		lastAt, ok := last[tmpl.ID]
		if !ok {
			lastAt = tmpl.Date
		}

		for _, at := range DueDates(schedule, tmpl.Date, lastAt, now, maxCatchUp) {
			occ, err := p.ledger.AddOccurrence(ctx, tmpl, at)
			if err != nil {
				p.logger.Event(ctx, slog.LevelError, "Failed to create expense from recurring template",
					log.NewFields().
						WithOperation(log.OpProcess).
						WithExpense(tmpl.ID, tmpl.Category, tmpl.Amount.String()).
						WithError(err, log.ErrorTypeStorageWrite))
				if firstErr == nil {
					firstErr = err
				}
				break
			}

			processed++
			p.logger.InfoContext(ctx, "Created expense from recurring template",
				log.FieldExpenseID, occ.ID,
				"recurrence_of", tmpl.ID,
				"scheduled_for", at.Format(time.RFC3339),
				log.FieldAmount, occ.Amount.String(),
				log.FieldFrequency, string(tmpl.Frequency))
		}
	}

	p.logger.InfoContext(ctx, "Recurring expense processing complete",
		"processed", processed,
		"total_checked", checked)

	return processed, firstErr
}

// lastOccurrences maps template IDs to the date of their latest generated record.
func lastOccurrences(expenses []core.Expense) map[string]time.Time {
	last := make(map[string]time.Time)
	for _, e := range expenses {
		if e.RecurrenceOf == "" {
			continue
		}
		if prev, ok := last[e.RecurrenceOf]; !ok || e.Date.After(prev) {
			last[e.RecurrenceOf] = e.Date
		}
	}
	return last
}
