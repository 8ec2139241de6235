package backend

import (
	"context"
	"fmt"

	"finanzapp/internal/amqp"
	"finanzapp/internal/kafka"
	"finanzapp/internal/log"
	"finanzapp/internal/notify"
	"finanzapp/internal/storage"
	"finanzapp/internal/storage/memory"
	"finanzapp/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateStore opens the configured store and bounds its calls by StoreTimeout.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	var (
		store storage.Store
		err   error
	)
	switch config.Store {
	case SQLiteStore:
		store, err = storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
	case PostgresStore:
		store, err = postgres.Open(ctx, config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres store")
	case MemoryStore:
		store = memory.New()
		f.logger.Warn("Using in-memory store, data is lost on exit")
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Store)
	}

	return &StoreResult{
		Store:   storage.WithTimeout(store, config.StoreTimeout),
		Cleanup: store.Close,
	}, nil
}

// CreateSink connects the configured alert sink. A broker that cannot be
// reached degrades to the log sink so expense entry keeps working.
func (f *DefaultFactory) CreateSink(ctx context.Context, config Config) (*SinkResult, error) {
	switch config.Sink {
	case LogSink:
		return &SinkResult{Sink: notify.NewLogSink(f.logger)}, nil
	case AMQPSink:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, alerts go to the log", log.FieldError, err)
			return &SinkResult{Sink: notify.NewLogSink(f.logger)}, nil
		}
		f.logger.InfoContext(ctx, "Initialized AMQP alert sink",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return &SinkResult{Sink: client, Cleanup: client.Close}, nil
	case KafkaSink:
		pub := kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic, f.logger)
		f.logger.InfoContext(ctx, "Initialized Kafka alert sink", "topic", config.KafkaTopic)
		return &SinkResult{Sink: pub, Cleanup: pub.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", config.Sink)
	}
}
