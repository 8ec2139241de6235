// Package notify classifies daily spending against the configured limit and
// emits at most one alert per check to a notification sink.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Band is the outcome of a limit check.
type Band string

const (
	BandNone    Band = "none"
	BandWarning Band = "warning"
	BandReached Band = "reached"
)

// Payload travels with every alert for the presentation layer.
type Payload struct {
	Spent decimal.Decimal `json:"spent"`
	Limit decimal.Decimal `json:"limit"`
}

// Alert is a single local notification.
type Alert struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Band      Band      `json:"band"`
	Payload   Payload   `json:"data"`
	Sound     bool      `json:"sound"`
	Badge     bool      `json:"badge"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// HandlerConfig controls how alerts are presented. It is built once at
// startup and handed to the Dispatcher.
type HandlerConfig struct {
	ShowAlert bool
	PlaySound bool
	SetBadge  bool
	Priority  string
}

// DefaultHandlerConfig shows, sounds and badges every alert at high priority.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		ShowAlert: true,
		PlaySound: true,
		SetBadge:  true,
		Priority:  "high",
	}
}

// Sink delivers alerts. Dispatch is fire-and-forget from the caller's view.
type Sink interface {
	RequestPermission(ctx context.Context) bool
	Dispatch(ctx context.Context, alert Alert) error
}
