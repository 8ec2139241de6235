// Package backend builds the ledger's storage and alert sink from configuration.
package backend

import (
	"context"

	"finanzapp/internal/notify"
	"finanzapp/internal/storage"
)

// CleanupFunc releases resources held by a created component.
type CleanupFunc func() error

// StoreResult contains the store instance and optional cleanup function
type StoreResult struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// SinkResult contains the alert sink and optional cleanup function
type SinkResult struct {
	Sink    notify.Sink
	Cleanup CleanupFunc
}

// Factory creates ledger dependencies based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	CreateSink(ctx context.Context, config Config) (*SinkResult, error)
}

// StoreType selects the key-value store implementation.
type StoreType string

const (
	SQLiteStore   StoreType = "sqlite"
	PostgresStore StoreType = "postgres"
	MemoryStore   StoreType = "memory"
)

func (t StoreType) String() string { return string(t) }

func (t StoreType) IsValid() bool {
	switch t {
	case SQLiteStore, PostgresStore, MemoryStore:
		return true
	default:
		return false
	}
}

// SinkType selects where spending alerts go.
type SinkType string

const (
	LogSink   SinkType = "log"
	AMQPSink  SinkType = "amqp"
	KafkaSink SinkType = "kafka"
)

func (t SinkType) String() string { return string(t) }

func (t SinkType) IsValid() bool {
	switch t {
	case LogSink, AMQPSink, KafkaSink:
		return true
	default:
		return false
	}
}
