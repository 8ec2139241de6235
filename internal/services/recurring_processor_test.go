package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzapp/internal/core"
	"finanzapp/internal/ledger"
	"finanzapp/internal/storage"
	"finanzapp/internal/storage/memory"
)

func newLedger(t *testing.T, store *memory.Store, now *time.Time) *ledger.Ledger {
	t.Helper()
	l := ledger.New(store, nil, nil, ledger.WithClock(func() time.Time { return *now }))
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return l
}

func addTemplate(t *testing.T, l *ledger.Ledger, freq core.Frequency, amount string) core.Expense {
	t.Helper()
	tmpl, err := l.AddRecurringExpense(context.Background(), core.ExpenseDraft{
		Category:  "subscriptions",
		Amount:    decimal.RequireFromString(amount),
		Frequency: freq,
	})
	if err != nil {
		t.Fatalf("AddRecurringExpense() failed: %v", err)
	}
	return tmpl
}

func TestProcessDue_OncePerPeriod(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	l := newLedger(t, memory.New(), &now)
	tmpl := addTemplate(t, l, core.Daily, "3.50")
	p := NewRecurringProcessor(l, nil)

	steps := []struct {
		name string
		at   time.Time
		want int
	}{
		{"same day as template", now.Add(2 * time.Hour), 0},
		{"next day", now.AddDate(0, 0, 1), 1},
		{"next day again", now.AddDate(0, 0, 1).Add(3 * time.Hour), 0},
		{"two days later", now.AddDate(0, 0, 2), 1},
	}
	for _, s := range steps {
		got, err := p.ProcessDue(ctx, s.at)
		if err != nil {
			t.Fatalf("%s: ProcessDue() error = %v", s.name, err)
		}
		if got != s.want {
			t.Fatalf("%s: ProcessDue() = %d, want %d", s.name, got, s.want)
		}
	}

	var occurrences int
	for _, e := range l.Expenses() {
		if e.RecurrenceOf == tmpl.ID {
			occurrences++
			if e.IsRecurring || !e.Amount.Equal(tmpl.Amount) {
				t.Errorf("unexpected occurrence %+v", e)
			}
		}
	}
	if occurrences != 2 {
		t.Errorf("expected 2 occurrences, got %d", occurrences)
	}
}

func TestProcessDue_MonthlyClampsToMonthEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	l := newLedger(t, memory.New(), &now)
	addTemplate(t, l, core.Monthly, "9.99")
	p := NewRecurringProcessor(l, nil)

	if got, _ := p.ProcessDue(ctx, time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("Feb 28 in a leap year: got %d occurrences, want 0", got)
	}
	if got, _ := p.ProcessDue(ctx, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)); got != 1 {
		t.Errorf("Feb 29: got %d occurrences, want 1", got)
	}
	if got, _ := p.ProcessDue(ctx, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("Mar 1: got %d occurrences, want 0", got)
	}
}

func TestProcessDue_SkipsUnknownFrequency(t *testing.T) {
	store := memory.NewWithValues(map[string]string{
		storage.ExpensesKey: `[{"id":"legacy","category":"gym","amount":"30",` +
			`"date":"2025-01-01T09:00:00Z","isRecurring":true,"frequency":"fortnightly"}]`,
	})
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	l := newLedger(t, store, &now)

	got, err := NewRecurringProcessor(l, nil).ProcessDue(context.Background(), now)
	if err != nil || got != 0 {
		t.Fatalf("ProcessDue() = %d, %v; want 0, nil", got, err)
	}
}

func TestProcessDue_WriteFailure(t *testing.T) {
	store := memory.New()
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	l := newLedger(t, store, &now)
	addTemplate(t, l, core.Weekly, "30")

	store.FailWrites(true)
	got, err := NewRecurringProcessor(l, nil).ProcessDue(context.Background(), now.AddDate(0, 0, 7))

	var werr *core.StorageWriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
	if got != 0 || len(l.Expenses()) != 1 {
		t.Fatalf("failed occurrence must not be recorded: count=%d expenses=%d", got, len(l.Expenses()))
	}
}

func TestProcessDue_NilLedger(t *testing.T) {
	if _, err := NewRecurringProcessor(nil, nil).ProcessDue(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error for uninitialized processor")
	}
}

func TestProcessDue_BackfillsMissedDays(t *testing.T) {
	ctx := context.Background()
	now := date(2025, 6, 1)
	l := newLedger(t, memory.New(), &now)
	tmpl := addTemplate(t, l, core.Daily, "2")
	p := NewRecurringProcessor(l, nil)

	later := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	got, err := p.ProcessDue(ctx, later)
	if err != nil || got != 4 {
		t.Fatalf("ProcessDue() = %d, %v; want 4, nil", got, err)
	}
	if got, _ := p.ProcessDue(ctx, later); got != 0 {
		t.Fatalf("second run created %d occurrences, want 0", got)
	}

	var dates []time.Time
	for _, e := range l.Expenses() {
		if e.RecurrenceOf == tmpl.ID {
			dates = append(dates, e.Date)
		}
	}
	want := []time.Time{date(2025, 6, 2), date(2025, 6, 3), date(2025, 6, 4), date(2025, 6, 5)}
	if len(dates) != len(want) {
		t.Fatalf("occurrence dates = %v, want %v", dates, want)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("occurrence %d dated %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestProcessDue_MonthlyDoesNotDrift(t *testing.T) {
	ctx := context.Background()
	now := date(2025, 1, 10)
	l := newLedger(t, memory.New(), &now)
	tmpl := addTemplate(t, l, core.Monthly, "50")
	p := NewRecurringProcessor(l, nil)

	// Ticks land late in the day; occurrences stay on the 10th at 09:00.
	for _, tick := range []time.Time{
		time.Date(2025, 2, 12, 23, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		time.Date(2025, 4, 9, 23, 0, 0, 0, time.UTC),
	} {
		if _, err := p.ProcessDue(ctx, tick); err != nil {
			t.Fatalf("ProcessDue(%s) error = %v", tick, err)
		}
	}

	var dates []time.Time
	for _, e := range l.Expenses() {
		if e.RecurrenceOf == tmpl.ID {
			dates = append(dates, e.Date)
		}
	}
	want := []time.Time{date(2025, 2, 10), date(2025, 3, 10)}
	if len(dates) != len(want) {
		t.Fatalf("occurrence dates = %v, want %v", dates, want)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("occurrence %d dated %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestProcessDue_SeesTemplatesFromOtherWriters(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := date(2025, 6, 1)
	server := newLedger(t, store, &now)
	cli := newLedger(t, store, &now)
	addTemplate(t, cli, core.Daily, "1")

	got, err := NewRecurringProcessor(server, nil).ProcessDue(ctx, date(2025, 6, 2))
	if err != nil || got != 1 {
		t.Fatalf("ProcessDue() = %d, %v; want 1, nil", got, err)
	}
}

func TestProcessDue_RefreshFailure(t *testing.T) {
	store := memory.New()
	now := date(2025, 6, 1)
	l := newLedger(t, store, &now)
	addTemplate(t, l, core.Daily, "1")

	store.FailReads(true)
	var rerr *core.StorageReadError
	if _, err := NewRecurringProcessor(l, nil).ProcessDue(context.Background(), date(2025, 6, 2)); !errors.As(err, &rerr) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
}
