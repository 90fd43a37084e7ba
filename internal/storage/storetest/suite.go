// Package storetest holds the behavioural suite every storage.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"expenses/internal/core"
	"expenses/internal/storage"
)

// Factory returns an empty store. The suite closes it after each test.
type Factory func(t *testing.T) storage.Store

// Run executes the store suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	suite.Run(t, &StoreSuite{newStore: newStore})
}

type StoreSuite struct {
	suite.Suite
	newStore Factory
	store    storage.Store
	ctx      context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		s.NoError(s.store.Close())
	}
}

func amount(v float64) *float64 { return &v }

func date(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func (s *StoreSuite) mustCreate(in core.NewExpense) core.Expense {
	e, err := s.store.Create(s.ctx, in)
	s.Require().NoError(err)
	return e
}

func (s *StoreSuite) TestCreateAssignsIdentityAndTimestamps() {
	before := time.Now().Add(-time.Second)
	e := s.mustCreate(core.NewExpense{
		Description: "Coffee",
		Amount:      amount(4.5),
		Category:    "Food & Dining",
		Date:        date("2024-03-01T00:00:00Z"),
	})

	s.NotEmpty(e.ID)
	s.Equal("Coffee", e.Description)
	s.Equal(4.5, e.Amount)
	s.Equal("Food & Dining", e.Category)
	s.True(e.Date.Equal(*date("2024-03-01T00:00:00Z")))
	s.False(e.CreatedAt.Before(before))
	s.True(e.CreatedAt.Equal(e.UpdatedAt))

	got, err := s.store.Get(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.ID, got.ID)
	s.True(e.Date.Equal(got.Date))
	s.True(e.CreatedAt.Equal(got.CreatedAt))
}

func (s *StoreSuite) TestCreateDefaultsDateToNow() {
	before := time.Now().Add(-time.Second)
	e := s.mustCreate(core.NewExpense{Description: "Lunch", Amount: amount(12), Category: "Food & Dining"})
	after := time.Now().Add(time.Second)

	s.True(e.Date.After(before) && e.Date.Before(after), "date %v not within creation window", e.Date)
}

func (s *StoreSuite) TestCreateRejectsMissingFields() {
	cases := []struct {
		name    string
		in      core.NewExpense
		missing []string
	}{
		{"no description", core.NewExpense{Amount: amount(1), Category: "Shopping"}, []string{"description"}},
		{"no amount", core.NewExpense{Description: "Shoes", Category: "Shopping"}, []string{"amount"}},
		{"no category", core.NewExpense{Description: "Shoes", Amount: amount(1)}, []string{"category"}},
		{"empty", core.NewExpense{}, []string{"description", "amount", "category"}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.store.Create(s.ctx, tc.in)
			var verr *core.ValidationError
			s.Require().True(errors.As(err, &verr), "expected ValidationError, got %v", err)
			for _, p := range tc.missing {
				s.True(verr.Has(p), "missing path %s not reported", p)
			}
		})
	}

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *StoreSuite) TestListEmptyIsNotNil() {
	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Len(list, 0)
}

func (s *StoreSuite) TestListSortsByDateDescending() {
	s.mustCreate(core.NewExpense{Description: "old", Amount: amount(1), Category: "Utilities", Date: date("2024-01-01T00:00:00Z")})
	s.mustCreate(core.NewExpense{Description: "new", Amount: amount(2), Category: "Utilities", Date: date("2024-03-01T00:00:00Z")})
	s.mustCreate(core.NewExpense{Description: "mid", Amount: amount(3), Category: "Utilities", Date: date("2024-02-01T00:00:00Z")})

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"new", "mid", "old"}, descriptions(list))
	for i := 1; i < len(list); i++ {
		s.False(list[i].Date.After(list[i-1].Date))
	}
}

func (s *StoreSuite) TestListKeepsInsertionOrderForEqualDates() {
	d := date("2024-05-05T10:00:00Z")
	s.mustCreate(core.NewExpense{Description: "first", Amount: amount(1), Category: "Transport", Date: d})
	s.mustCreate(core.NewExpense{Description: "second", Amount: amount(1), Category: "Transport", Date: d})
	s.mustCreate(core.NewExpense{Description: "third", Amount: amount(1), Category: "Transport", Date: d})

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"first", "second", "third"}, descriptions(list))
}

func (s *StoreSuite) TestGetUnknownID() {
	_, err := s.store.Get(s.ctx, "does-not-exist")
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *StoreSuite) TestDeleteRemovesExactlyOne() {
	a := s.mustCreate(core.NewExpense{Description: "A", Amount: amount(1), Category: "Shopping", Date: date("2024-01-01T00:00:00Z")})
	b := s.mustCreate(core.NewExpense{Description: "B", Amount: amount(2), Category: "Shopping", Date: date("2024-01-02T00:00:00Z")})

	s.Require().NoError(s.store.Delete(s.ctx, a.ID))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(b.ID, list[0].ID)

	_, err = s.store.Get(s.ctx, a.ID)
	s.ErrorIs(err, core.ErrNotFound)

	s.ErrorIs(s.store.Delete(s.ctx, a.ID), core.ErrNotFound)
}

func (s *StoreSuite) TestDeleteUnknownIDLeavesStoreUnchanged() {
	s.mustCreate(core.NewExpense{Description: "keep", Amount: amount(1), Category: "Shopping"})

	s.ErrorIs(s.store.Delete(s.ctx, "not-an-id"), core.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, "000000000000000000000000"), core.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, "00000000-0000-0000-0000-000000000000"), core.ErrNotFound)

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *StoreSuite) TestCoffeeAndBusScenario() {
	coffee := s.mustCreate(core.NewExpense{Description: "Coffee", Amount: amount(4.5), Category: "Food & Dining", Date: date("2024-03-01T00:00:00Z")})
	bus := s.mustCreate(core.NewExpense{Description: "Bus", Amount: amount(2), Category: "Transport", Date: date("2024-03-02T00:00:00Z")})

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{bus.ID, coffee.ID}, ids(list))
	s.Equal("6.50", core.Sum(list).StringFixed(2))

	s.Require().NoError(s.store.Delete(s.ctx, coffee.ID))
	list, err = s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{bus.ID}, ids(list))
}

func (s *StoreSuite) TestConcurrentCreatesYieldUniqueIDs() {
	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, n)
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := s.store.Create(s.ctx, core.NewExpense{Description: "parallel", Amount: amount(1), Category: "Shopping"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seen[e.ID] = true
		}()
	}
	wg.Wait()

	require.Empty(s.T(), errs)
	s.Len(seen, n)

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, n)
}

func descriptions(list []core.Expense) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Description
	}
	return out
}

func ids(list []core.Expense) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}
