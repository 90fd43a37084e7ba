package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"expenses/internal/core"
	"expenses/internal/storage"
)

// Store keeps expenses in process memory. It is not durable and exists for
// tests and local demos.
type Store struct {
	mu    sync.RWMutex
	items []core.Expense // insertion order
}

func New(seed ...core.Expense) *Store {
	return &Store{items: append([]core.Expense(nil), seed...)}
}

// Create validates the input and appends the record.
func (s *Store) Create(_ context.Context, in core.NewExpense) (core.Expense, error) {
	e, err := in.Build(uuid.NewString(), time.Now())
	if err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return e, nil
}

func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	s.mu.RUnlock()
	storage.SortByDate(out)
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) indexOf(id string) int {
	for i, e := range s.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}
