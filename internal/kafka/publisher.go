// Package kafka publishes spending alerts to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"finanzapp/internal/log"
	"finanzapp/internal/notify"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is a notify.Sink backed by a kafka.Writer. Alerts are keyed by
// band so all alerts of one kind land on the same partition.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *log.Logger
}

var _ notify.Sink = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string, logger *log.Logger) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, topic, logger)
}

func newPublisher(w messageWriter, topic string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Discard()
	}
	return &Publisher{writer: w, topic: topic, logger: logger.WithComponent(log.ComponentKafka)}
}

func (p *Publisher) RequestPermission(context.Context) bool { return true }

func (p *Publisher) Dispatch(ctx context.Context, alert notify.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.Band),
		Value: data,
		Time:  alert.CreatedAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
	if err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	p.logger.DebugContext(ctx, "Published alert", "topic", p.topic, log.FieldBand, string(alert.Band))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
