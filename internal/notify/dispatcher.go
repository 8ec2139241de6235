package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"finanzapp/internal/log"
)

var (
	hundred      = decimal.NewFromInt(100)
	warningFloor = decimal.NewFromInt(80)
)

const (
	permissionUnknown int32 = iota
	permissionGranted
	permissionDenied
)

// Decision is the classification of one spend/limit pair.
type Decision struct {
	Band       Band
	Percentage decimal.Decimal // exact spent/limit*100, zero when the limit is unset
	Display    int64           // Percentage truncated toward zero
}

// Classify maps spending to a band. A limit <= 0 means no limit is set.
// Percentages in [80, 100) warn and >= 100 means the limit was reached.
func Classify(spent, limit decimal.Decimal) Decision {
	if !limit.IsPositive() {
		return Decision{Band: BandNone}
	}
	pct := spent.Div(limit).Mul(hundred)
	d := Decision{Percentage: pct, Display: pct.Truncate(0).IntPart()}
	switch {
	case pct.GreaterThanOrEqual(hundred):
		d.Band = BandReached
	case pct.GreaterThanOrEqual(warningFloor):
		d.Band = BandWarning
	default:
		d.Band = BandNone
	}
	return d
}

// Dispatcher turns limit checks into alerts. It keeps no memory of alerts
// already sent, so the same qualifying check alerts again.
type Dispatcher struct {
	sink       Sink
	cfg        HandlerConfig
	logger     *log.Logger
	now        func() time.Time
	permission atomic.Int32
}

func NewDispatcher(sink Sink, cfg HandlerConfig, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Discard()
	}
	return &Dispatcher{
		sink:   sink,
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentNotify),
		now:    time.Now,
	}
}

// RequestPermission asks the sink once. A denial suppresses later dispatches;
// checks are still classified.
func (d *Dispatcher) RequestPermission(ctx context.Context) bool {
	if d.sink == nil {
		return false
	}
	granted := d.sink.RequestPermission(ctx)
	if granted {
		d.permission.Store(permissionGranted)
	} else {
		d.permission.Store(permissionDenied)
	}
	d.logger.InfoContext(ctx, "Notification permission requested", "granted", granted)
	return granted
}

// CheckExpenseLimit classifies spentToday against limit and emits one alert
// for the warning and reached bands. Sink failures are not retried.
func (d *Dispatcher) CheckExpenseLimit(ctx context.Context, spentToday, limit decimal.Decimal) Decision {
	decision := Classify(spentToday, limit)
	if decision.Band == BandNone {
		return decision
	}

	fields := log.NewFields().
		WithOperation(log.OpCheck).
		WithLimitCheck(spentToday.String(), limit.String(), decision.Percentage.StringFixed(2), string(decision.Band))

	if d.sink == nil || d.permission.Load() == permissionDenied {
		d.logger.Event(ctx, slog.LevelDebug, "Alert suppressed", fields)
		return decision
	}

	alert := d.buildAlert(decision, spentToday, limit)
	if err := d.sink.Dispatch(ctx, alert); err != nil {
		d.logger.Event(ctx, slog.LevelDebug, "Alert dispatch failed", fields.WithError(err, log.ErrorTypeNetwork))
		return decision
	}

	d.logger.Event(ctx, slog.LevelInfo, "Alert dispatched", fields)
	return decision
}

func (d *Dispatcher) buildAlert(decision Decision, spent, limit decimal.Decimal) Alert {
	alert := Alert{
		Band:      decision.Band,
		Payload:   Payload{Spent: spent, Limit: limit},
		Sound:     d.cfg.PlaySound,
		Badge:     d.cfg.SetBadge,
		Priority:  d.cfg.Priority,
		CreatedAt: d.now(),
	}
	if decision.Band == BandWarning {
		alert.Title = "Alerta de Gastos - 80%"
		alert.Body = fmt.Sprintf("Has alcanzado el %d%% de tu límite diario de gastos.", decision.Display)
	} else {
		alert.Title = "Límite de Gastos Alcanzado"
		alert.Body = "Has alcanzado el límite de gastos diario establecido."
	}
	if !d.cfg.ShowAlert {
		// Silent delivery: the payload still reaches the app, the banner does not.
		alert.Title, alert.Body = "", ""
	}
	return alert
}
