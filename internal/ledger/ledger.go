// Package ledger owns the in-memory expense list and daily limit, keeps them
// in sync with a storage.Store and runs the daily limit check after each
// committed expense.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finanzapp/internal/core"
	"finanzapp/internal/log"
	"finanzapp/internal/notify"
	"finanzapp/internal/storage"
)

const (
	// maxSummaryDays bounds DayTotals ranges.
	maxSummaryDays = 366
	alertTimeout   = 10 * time.Second
)

// LimitChecker receives today's total after every committed expense.
type LimitChecker interface {
	CheckExpenseLimit(ctx context.Context, spentToday, limit decimal.Decimal) notify.Decision
}

type Option func(*Ledger)

// WithClock overrides time.Now for record timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides UUID generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

type Ledger struct {
	store   storage.Store
	checker LimitChecker
	logger  *log.Logger
	now     func() time.Time
	newID   func() string

	// writeMu serializes load-modify-store cycles; mu guards the fields below.
	writeMu  sync.Mutex
	mu       sync.RWMutex
	expenses []core.Expense
	limit    decimal.Decimal
	loading  bool

	alerts sync.WaitGroup
}

// New returns an empty ledger. Call Load before serving reads.
func New(store storage.Store, checker LimitChecker, logger *log.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = log.Discard()
	}
	l := &Ledger{
		store:    store,
		checker:  checker,
		logger:   logger.WithComponent(log.ComponentLedger),
		now:      time.Now,
		newID:    uuid.NewString,
		expenses: []core.Expense{},
		limit:    decimal.Zero,
		loading:  true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load hydrates the ledger from the store, reading both keys concurrently.
// Missing keys yield an empty list and a zero limit. On failure the ledger
// keeps those defaults and a *core.StorageReadError is returned.
func (l *Ledger) Load(ctx context.Context) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	expenses, limit, err := l.readState(ctx)
	if err != nil {
		expenses, limit = []core.Expense{}, decimal.Zero
	}

	l.mu.Lock()
	l.expenses = expenses
	l.limit = limit
	l.loading = false
	l.mu.Unlock()

	if err != nil {
		l.logger.Event(ctx, slog.LevelError, "Failed to load ledger, using empty defaults",
			log.NewFields().WithOperation(log.OpLoad).WithError(err, log.ErrorTypeStorageRead))
		return err
	}
	l.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldCount, len(expenses),
		log.FieldLimit, limit.String())
	return nil
}

// Refresh re-reads the store so that records written by other processes
// sharing it become visible. On failure the current state is kept.
func (l *Ledger) Refresh(ctx context.Context) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	expenses, limit, err := l.readState(ctx)
	if err != nil {
		l.logger.Event(ctx, slog.LevelWarn, "Failed to refresh ledger",
			log.NewFields().WithOperation(log.OpLoad).WithError(err, log.ErrorTypeStorageRead))
		return err
	}

	l.mu.Lock()
	l.expenses = expenses
	l.limit = limit
	l.loading = false
	l.mu.Unlock()
	return nil
}

// readState fetches and decodes both keys. Callers hold writeMu.
func (l *Ledger) readState(ctx context.Context) ([]core.Expense, decimal.Decimal, error) {
	var rawExpenses, rawLimit string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, _, err := l.store.Get(gctx, storage.ExpensesKey)
		if err != nil {
			return &core.StorageReadError{Key: storage.ExpensesKey, Err: err}
		}
		rawExpenses = v
		return nil
	})
	g.Go(func() error {
		v, _, err := l.store.Get(gctx, storage.DailyLimitKey)
		if err != nil {
			return &core.StorageReadError{Key: storage.DailyLimitKey, Err: err}
		}
		rawLimit = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, decimal.Zero, err
	}

	expenses, skipped, err := decodeExpenses(rawExpenses)
	if err != nil {
		return nil, decimal.Zero, &core.StorageReadError{Key: storage.ExpensesKey, Err: err}
	}
	for _, id := range skipped {
		l.logger.WarnContext(ctx, "Skipping stored expense with negative amount",
			log.FieldExpenseID, id,
			log.FieldKey, storage.ExpensesKey)
	}

	limit, err := decodeLimit(rawLimit)
	if err != nil {
		return nil, decimal.Zero, &core.StorageReadError{Key: storage.DailyLimitKey, Err: err}
	}
	return expenses, limit, nil
}

// AddExpense records a one-off expense dated now. Recurrence fields of the
// draft are ignored; use AddRecurringExpense for templates.
func (l *Ledger) AddExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error) {
	draft.Frequency = ""
	if err := draft.Validate(); err != nil {
		return core.Expense{}, err
	}
	return l.commit(ctx, core.Expense{
		ID:          l.newID(),
		Category:    draft.Category,
		Amount:      draft.Amount,
		Description: draft.Description,
		Date:        l.now(),
	})
}

// AddRecurringExpense records a recurring template. The template itself is
// an expense of today; later occurrences are added by the recurring processor.
func (l *Ledger) AddRecurringExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error) {
	if draft.Frequency == "" {
		return core.Expense{}, &core.ValidationError{Field: "frequency", Err: core.ErrInvalidFrequency}
	}
	if err := draft.Validate(); err != nil {
		return core.Expense{}, err
	}
	return l.commit(ctx, core.Expense{
		ID:          l.newID(),
		Category:    draft.Category,
		Amount:      draft.Amount,
		Description: draft.Description,
		Date:        l.now(),
		IsRecurring: true,
		Frequency:   draft.Frequency,
	})
}

// AddOccurrence records one occurrence of a recurring template dated at.
func (l *Ledger) AddOccurrence(ctx context.Context, template core.Expense, at time.Time) (core.Expense, error) {
	if !template.IsRecurring {
		return core.Expense{}, &core.ValidationError{Field: "template", Err: core.ErrInvalidFrequency}
	}
	return l.commit(ctx, core.Expense{
		ID:           l.newID(),
		Category:     template.Category,
		Amount:       template.Amount,
		Description:  template.Description,
		Date:         at,
		RecurrenceOf: template.ID,
	})
}

// commit persists the stored list with rec appended and only then publishes
// it. The limit check runs after every lock is released.
func (l *Ledger) commit(ctx context.Context, rec core.Expense) (core.Expense, error) {
	spent, limit, err := l.appendAndSave(ctx, rec)
	if err != nil {
		l.logger.Event(ctx, slog.LevelError, "Failed to save expense",
			log.NewFields().
				WithOperation(log.OpAdd).
				WithExpense(rec.ID, rec.Category, rec.Amount.String()).
				WithError(err, log.ErrorTypeStorageWrite))
		return core.Expense{}, err
	}

	l.logger.Event(ctx, slog.LevelInfo, "Expense added",
		log.NewFields().WithOperation(log.OpAdd).WithExpense(rec.ID, rec.Category, rec.Amount.String()))

	if limit.IsPositive() {
		l.checkLimit(ctx, spent, limit)
	}
	return rec, nil
}

// appendAndSave runs one load-modify-store cycle. The list is re-read from
// the store so records written by other processes are kept. It returns
// today's total and the limit as committed.
func (l *Ledger) appendAndSave(ctx context.Context, rec core.Expense) (decimal.Decimal, decimal.Decimal, error) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	stored, limit, err := l.readState(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, &core.StorageWriteError{Key: storage.ExpensesKey, Err: err}
	}
	next := append(stored, rec)

	raw, err := encodeExpenses(next)
	if err == nil {
		err = l.store.Set(ctx, storage.ExpensesKey, raw)
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, &core.StorageWriteError{Key: storage.ExpensesKey, Err: err}
	}

	l.mu.Lock()
	l.expenses = next
	l.limit = limit
	l.mu.Unlock()

	return totalOn(next, l.now()), limit, nil
}

// checkLimit hands the committed total to the checker in the background.
// The caller's cancellation does not reach the sink; alertTimeout bounds it.
func (l *Ledger) checkLimit(ctx context.Context, spent, limit decimal.Decimal) {
	if l.checker == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	l.alerts.Add(1)
	go func() {
		defer l.alerts.Done()
		ctx, cancel := context.WithTimeout(ctx, alertTimeout)
		defer cancel()
		l.checker.CheckExpenseLimit(ctx, spent, limit)
	}()
}

// WaitAlerts blocks until every limit check started so far has returned.
func (l *Ledger) WaitAlerts() {
	l.alerts.Wait()
}

// SetDailyLimit persists and applies a new limit. Zero disables it.
func (l *Ledger) SetDailyLimit(ctx context.Context, value decimal.Decimal) error {
	if err := core.ValidateLimit(value); err != nil {
		return err
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := l.store.Set(ctx, storage.DailyLimitKey, encodeLimit(value)); err != nil {
		werr := &core.StorageWriteError{Key: storage.DailyLimitKey, Err: err}
		l.logger.Event(ctx, slog.LevelError, "Failed to save daily limit",
			log.NewFields().WithOperation(log.OpSetLimit).WithError(werr, log.ErrorTypeStorageWrite))
		return werr
	}

	l.mu.Lock()
	l.limit = value
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Daily limit saved", log.FieldLimit, value.String())
	return nil
}

// TodayTotal sums the expenses created on asOf's local calendar day.
func (l *Ledger) TodayTotal(asOf time.Time) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return totalOn(l.expenses, asOf)
}

// Now returns the ledger's notion of the current time.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Expenses returns a copy of all records in insertion order.
func (l *Ledger) Expenses() []core.Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.expenses)
}

// RecurringTemplates returns the records flagged as recurring.
func (l *Ledger) RecurringTemplates() []core.Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []core.Expense
	for _, e := range l.expenses {
		if e.IsRecurring {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) DailyLimit() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limit
}

// IsLoading is true until the first Load finishes, successfully or not.
func (l *Ledger) IsLoading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

var errBadRange = errors.New("invalid date range")

// DayTotals returns one entry per calendar day from from to to inclusive,
// in from's location.
func (l *Ledger) DayTotals(from, to time.Time) ([]core.DayTotal, error) {
	start := core.StartOfDay(from)
	end := core.StartOfDay(to.In(from.Location()))
	if end.Before(start) || end.Sub(start) > maxSummaryDays*24*time.Hour {
		return nil, &core.ValidationError{Field: "range", Err: errBadRange}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []core.DayTotal
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out = append(out, summarizeDay(l.expenses, day))
	}
	return out, nil
}

func totalOn(expenses []core.Expense, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if core.SameDay(e.Date, asOf) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func summarizeDay(expenses []core.Expense, day time.Time) core.DayTotal {
	dt := core.DayTotal{Day: day, Total: decimal.Zero}
	byCategory := map[string]decimal.Decimal{}
	for _, e := range expenses {
		if !core.SameDay(e.Date, day) {
			continue
		}
		dt.Total = dt.Total.Add(e.Amount)
		dt.Count++
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}
	for name, amount := range byCategory {
		dt.ByCategory = append(dt.ByCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(dt.ByCategory, func(i, j int) bool { return dt.ByCategory[i].Name < dt.ByCategory[j].Name })
	return dt
}
