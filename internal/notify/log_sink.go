package notify

import (
	"context"

	"finanzapp/internal/log"
)

// LogSink writes alerts to the structured log. It always grants permission.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogSink{logger: logger.WithComponent(log.ComponentNotify)}
}

func (s *LogSink) RequestPermission(context.Context) bool { return true }

func (s *LogSink) Dispatch(ctx context.Context, alert Alert) error {
	s.logger.InfoContext(ctx, "Spending alert",
		"title", alert.Title,
		"body", alert.Body,
		log.FieldBand, string(alert.Band),
		log.FieldSpent, alert.Payload.Spent.String(),
		log.FieldLimit, alert.Payload.Limit.String(),
		"priority", alert.Priority)
	return nil
}
