package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"finanzapp/internal/notify"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Dispatch(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "alerts", nil)
	alert := notify.Alert{
		Title:     "Alerta de Gastos - 80%",
		Band:      notify.BandWarning,
		Payload:   notify.Payload{Spent: decimal.NewFromInt(40), Limit: decimal.NewFromInt(50)},
		CreatedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	if !p.RequestPermission(context.Background()) {
		t.Fatal("RequestPermission() = false, want true")
	}
	if err := p.Dispatch(context.Background(), alert); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "warning" {
		t.Errorf("Key = %q, want %q", msg.Key, "warning")
	}
	var got notify.Alert
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("message value is not an alert: %v", err)
	}
	if got.Title != alert.Title || !got.Payload.Spent.Equal(alert.Payload.Spent) {
		t.Errorf("decoded alert = %+v, want %+v", got, alert)
	}
}

func TestPublisher_DispatchError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newPublisher(w, "alerts", nil)

	err := p.Dispatch(context.Background(), notify.Alert{Band: notify.BandReached})
	if err == nil || !strings.Contains(err.Error(), "alerts") {
		t.Fatalf("expected wrapped write error naming the topic, got %v", err)
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close() = %v, closed = %v", err, w.closed)
	}
}
