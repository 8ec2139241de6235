package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type recordingSink struct {
	granted bool
	err     error
	alerts  []Alert
}

func (s *recordingSink) RequestPermission(context.Context) bool { return s.granted }

func (s *recordingSink) Dispatch(_ context.Context, a Alert) error {
	s.alerts = append(s.alerts, a)
	return s.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		spent   string
		limit   string
		band    Band
		display int64
	}{
		{"limit unset", "0", "0", BandNone, 0},
		{"negative limit", "10", "-5", BandNone, 0},
		{"below warning", "12.50", "50", BandNone, 25},
		{"just below warning", "79.99", "100", BandNone, 79},
		{"warning inclusive", "80", "100", BandWarning, 80},
		{"warning truncates", "89.99", "100", BandWarning, 89},
		{"just below reached", "99.99", "100", BandWarning, 99},
		{"reached exactly", "100", "100", BandReached, 100},
		{"over the limit", "55", "50", BandReached, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(dec(tt.spent), dec(tt.limit))
			if got.Band != tt.band {
				t.Errorf("Classify(%s, %s).Band = %v, want %v", tt.spent, tt.limit, got.Band, tt.band)
			}
			if got.Display != tt.display {
				t.Errorf("Classify(%s, %s).Display = %d, want %d", tt.spent, tt.limit, got.Display, tt.display)
			}
		})
	}
}

func TestCheckExpenseLimitIdempotent(t *testing.T) {
	sink := &recordingSink{granted: true}
	d := NewDispatcher(sink, DefaultHandlerConfig(), nil)

	first := d.CheckExpenseLimit(context.Background(), dec("85"), dec("100"))
	second := d.CheckExpenseLimit(context.Background(), dec("85"), dec("100"))

	if first.Band != second.Band || first.Display != second.Display {
		t.Fatalf("same inputs gave different decisions: %+v vs %+v", first, second)
	}
	// No memory of previous alerts: both checks notify.
	if len(sink.alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(sink.alerts))
	}
}

func TestCheckExpenseLimitAlerts(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("warning", func(t *testing.T) {
		sink := &recordingSink{granted: true}
		d := NewDispatcher(sink, DefaultHandlerConfig(), nil)
		d.now = func() time.Time { return fixed }

		d.CheckExpenseLimit(context.Background(), dec("42.75"), dec("50"))
		if len(sink.alerts) != 1 {
			t.Fatalf("expected one alert, got %d", len(sink.alerts))
		}
		a := sink.alerts[0]
		if a.Band != BandWarning || a.Title != "Alerta de Gastos - 80%" {
			t.Fatalf("unexpected alert: %+v", a)
		}
		if a.Body != "Has alcanzado el 85% de tu límite diario de gastos." {
			t.Fatalf("unexpected body %q", a.Body)
		}
		if !a.Payload.Spent.Equal(dec("42.75")) || !a.Payload.Limit.Equal(dec("50")) {
			t.Fatalf("unexpected payload %+v", a.Payload)
		}
		if !a.Sound || a.Priority != "high" || !a.CreatedAt.Equal(fixed) {
			t.Fatalf("handler config not applied: %+v", a)
		}
	})

	t.Run("reached", func(t *testing.T) {
		sink := &recordingSink{granted: true}
		d := NewDispatcher(sink, DefaultHandlerConfig(), nil)

		got := d.CheckExpenseLimit(context.Background(), dec("55"), dec("50"))
		if got.Band != BandReached || len(sink.alerts) != 1 {
			t.Fatalf("expected one reached alert, got %+v / %d", got, len(sink.alerts))
		}
		if sink.alerts[0].Title != "Límite de Gastos Alcanzado" {
			t.Fatalf("unexpected title %q", sink.alerts[0].Title)
		}
	})

	t.Run("below warning sends nothing", func(t *testing.T) {
		sink := &recordingSink{granted: true}
		d := NewDispatcher(sink, DefaultHandlerConfig(), nil)

		d.CheckExpenseLimit(context.Background(), dec("12.50"), dec("50"))
		d.CheckExpenseLimit(context.Background(), dec("0"), dec("0"))
		if len(sink.alerts) != 0 {
			t.Fatalf("expected no alerts, got %d", len(sink.alerts))
		}
	})
}

func TestCheckExpenseLimitSwallowsSinkErrors(t *testing.T) {
	sink := &recordingSink{granted: true, err: errors.New("broker down")}
	d := NewDispatcher(sink, DefaultHandlerConfig(), nil)

	got := d.CheckExpenseLimit(context.Background(), dec("100"), dec("100"))
	if got.Band != BandReached {
		t.Fatalf("classification must survive sink errors, got %v", got.Band)
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("dispatch must not be retried, got %d attempts", len(sink.alerts))
	}
}

func TestPermissionDeniedSuppressesDispatch(t *testing.T) {
	sink := &recordingSink{granted: false}
	d := NewDispatcher(sink, DefaultHandlerConfig(), nil)

	if d.RequestPermission(context.Background()) {
		t.Fatal("expected permission to be denied")
	}
	got := d.CheckExpenseLimit(context.Background(), dec("90"), dec("100"))
	if got.Band != BandWarning {
		t.Fatalf("expected warning classification, got %v", got.Band)
	}
	if len(sink.alerts) != 0 {
		t.Fatalf("denied permission must suppress alerts, got %d", len(sink.alerts))
	}
}

func TestSilentHandlerConfig(t *testing.T) {
	sink := &recordingSink{granted: true}
	cfg := DefaultHandlerConfig()
	cfg.ShowAlert = false
	d := NewDispatcher(sink, cfg, nil)

	d.CheckExpenseLimit(context.Background(), dec("100"), dec("100"))
	if len(sink.alerts) != 1 || sink.alerts[0].Title != "" {
		t.Fatalf("expected one silent alert, got %+v", sink.alerts)
	}
}
