package backend

import (
	"fmt"
	"time"

	"finanzapp/internal/config"
)

// Config holds the subset of application settings the factory needs.
type Config struct {
	Store        StoreType
	SQLiteDBPath string
	PostgresURL  string
	StoreTimeout time.Duration

	Sink         SinkType
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	KafkaBrokers []string
	KafkaTopic   string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Store:        StoreType(appConfig.StoreBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresURL:  appConfig.PostgresURL,
		StoreTimeout: appConfig.StoreTimeout,

		Sink:         SinkType(appConfig.NotifyBackend),
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		KafkaBrokers: appConfig.KafkaBrokers,
		KafkaTopic:   appConfig.KafkaTopic,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Store.IsValid() {
		return fmt.Errorf("invalid store type: %s", c.Store)
	}
	if !c.Sink.IsValid() {
		return fmt.Errorf("invalid sink type: %s", c.Sink)
	}

	switch c.Store {
	case SQLiteStore:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite store")
		}
	case PostgresStore:
		if c.PostgresURL == "" {
			return fmt.Errorf("Postgres URL is required for postgres store")
		}
	}

	switch c.Sink {
	case AMQPSink:
		if c.AMQPURL == "" || c.AMQPExchange == "" || c.AMQPQueue == "" {
			return fmt.Errorf("AMQP URL, exchange and queue are required for amqp sink")
		}
	case KafkaSink:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("Kafka brokers and topic are required for kafka sink")
		}
	}
	return nil
}
