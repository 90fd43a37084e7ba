package view

import (
	"context"
	"log/slog"
	"sync"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

// API is the remote side of a session. *client.Client implements it.
type API interface {
	List(ctx context.Context) ([]core.Expense, error)
	Create(ctx context.Context, in core.NewExpense) (core.Expense, error)
	Delete(ctx context.Context, id string) error
}

// Session is the client state: records fetched once, then kept in sync with
// the responses of local mutations. Network calls happen outside the lock,
// so concurrent mutations are allowed and the last response wins.
type Session struct {
	api    API
	logger *slog.Logger

	mu       sync.Mutex
	records  []core.Expense
	loaded   bool
	search   string
	category string
	formOpen bool
}

func NewSession(api API, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		api:      api,
		logger:   applog.WithComponent(logger, "view"),
		records:  []core.Expense{},
		category: core.AllCategories,
	}
}

// Load fetches the records on first call. Later calls are no-ops. On
// failure the error is logged and returned, and the list stays empty.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}

	list, err := s.api.List(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch expenses", applog.FieldError, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.records = list
		s.loaded = true
	}
	return nil
}

func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	s.search = term
	s.mu.Unlock()
}

// SetCategory sets the category filter. "" resets it to AllCategories.
func (s *Session) SetCategory(category string) {
	if category == "" {
		category = core.AllCategories
	}
	s.mu.Lock()
	s.category = category
	s.mu.Unlock()
}

func (s *Session) OpenForm() {
	s.mu.Lock()
	s.formOpen = true
	s.mu.Unlock()
}

func (s *Session) CloseForm() {
	s.mu.Lock()
	s.formOpen = false
	s.mu.Unlock()
}

func (s *Session) FormOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formOpen
}

// Add creates the expense remotely and inserts the returned record locally.
// The form closes on success and stays as it was on failure.
func (s *Session) Add(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	e, err := s.api.Create(ctx, in)
	if err != nil {
		s.logger.Error("Failed to add expense", applog.FieldError, err)
		return core.Expense{}, err
	}

	s.mu.Lock()
	s.records = insertByDate(s.records, e)
	s.formOpen = false
	s.mu.Unlock()

	s.logger.Debug("Expense added", applog.NewFields().WithExpense(e.ID, e.Category, e.Amount).ToSlice()...)
	return e, nil
}

// Remove deletes the expense remotely, then drops it from the local list
// without refetching.
func (s *Session) Remove(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete expense", applog.FieldExpenseID, id, applog.FieldError, err)
		return err
	}

	s.mu.Lock()
	s.records = removeByID(s.records, id)
	s.mu.Unlock()
	return nil
}

// Records returns a copy of the local list.
func (s *Session) Records() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.records))
	copy(out, s.records)
	return out
}

// Snapshot derives the current view.
func (s *Session) Snapshot() Snapshot {
	records := s.Records()
	s.mu.Lock()
	search, category := s.search, s.category
	s.mu.Unlock()
	return Derive(records, search, category)
}
