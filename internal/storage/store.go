// Package storage defines the expense store contract shared by every backend.
package storage

import (
	"context"
	"slices"

	"expenses/internal/core"
)

// Store persists expense records. Every operation touches at most one record
// and is durable before it returns.
type Store interface {
	// Create validates in, assigns id and timestamps, and persists the record.
	Create(ctx context.Context, in core.NewExpense) (core.Expense, error)
	// List returns every record, most recent date first. Records sharing a
	// date keep insertion order. An empty store yields an empty, non-nil slice.
	List(ctx context.Context) ([]core.Expense, error)
	// Get returns core.ErrNotFound when no record has id.
	Get(ctx context.Context, id string) (core.Expense, error)
	// Delete removes the record permanently, or returns core.ErrNotFound.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// SortByDate orders items by date descending, stable on ties.
func SortByDate(items []core.Expense) {
	slices.SortStableFunc(items, func(a, b core.Expense) int {
		return b.Date.Compare(a.Date)
	})
}
