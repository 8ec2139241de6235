package memory

import (
	"context"
	"errors"
	"sync"

	"finanzapp/internal/storage"
)

// ErrInjected is returned by a Store configured to fail.
var ErrInjected = errors.New("memory store: injected failure")

type Store struct {
	mu         sync.Mutex
	items      map[string]string
	failReads  bool
	failWrites bool
	writes     int
}

func New() *Store {
	return &Store{items: make(map[string]string)}
}

// NewWithValues returns a store pre-populated with a copy of values.
func NewWithValues(values map[string]string) *Store {
	s := New()
	for k, v := range values {
		s.items[k] = v
	}
	return s
}

// Get implements storage.Store
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return "", false, ErrInjected
	}
	v, ok := s.items[key]
	return v, ok, nil
}

// Set implements storage.Store
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrInjected
	}
	s.items[key] = value
	s.writes++
	return nil
}

func (s *Store) Close() error { return nil }

// FailReads makes subsequent Get calls fail until reset.
func (s *Store) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = fail
}

// FailWrites makes subsequent Set calls fail until reset.
func (s *Store) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// Writes returns the number of successful Set calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

var _ storage.Store = (*Store)(nil)
