package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

type fakeAPI struct {
	mu        sync.Mutex
	list      []core.Expense
	listCalls int
	nextID    int
	failWith  error
}

func (f *fakeAPI) List(ctx context.Context) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]core.Expense{}, f.list...), nil
}

func (f *fakeAPI) Create(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return core.Expense{}, f.failWith
	}
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	f.nextID++
	e := core.Expense{
		ID:          "new-" + string(rune('0'+f.nextID)),
		Description: in.Description,
		Amount:      *in.Amount,
		Category:    in.Category,
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	return e, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, e := range f.list {
		if e.ID == id {
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeAPI) fail(err error) {
	f.mu.Lock()
	f.failWith = err
	f.mu.Unlock()
}

func amount(v float64) *float64 { return &v }

func TestSessionLoadsOnce(t *testing.T) {
	api := &fakeAPI{list: sample()}
	s := NewSession(api, nil)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Load(ctx))

	assert.Equal(t, 1, api.listCalls)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(s.Records()))
}

func TestSessionLoadFailureLeavesEmptyList(t *testing.T) {
	api := &fakeAPI{failWith: errors.New("connection refused")}
	s := NewSession(api, nil)

	assert.Error(t, s.Load(context.Background()))
	assert.Empty(t, s.Records())
	assert.True(t, s.Snapshot().GrandTotal.IsZero())
}

func TestSessionFiltersAndTotals(t *testing.T) {
	s := NewSession(&fakeAPI{list: sample()}, nil)
	require.NoError(t, s.Load(context.Background()))

	s.SetCategory("Shopping")
	snap := s.Snapshot()
	assert.Equal(t, []string{"4", "3"}, ids(snap.Filtered))
	assert.Equal(t, "105.25", snap.FilteredTotal.StringFixed(2))
	assert.Equal(t, "111.75", snap.GrandTotal.StringFixed(2))

	s.SetSearch("SHOE")
	assert.Equal(t, []string{"4"}, ids(s.Snapshot().Filtered))

	s.SetCategory("")
	s.SetSearch("")
	snap = s.Snapshot()
	assert.Equal(t, core.AllCategories, snap.Category)
	assert.Equal(t, 4, snap.FilteredCount)
}

func TestSessionAddInsertsAndClosesForm(t *testing.T) {
	api := &fakeAPI{list: sample()}
	s := NewSession(api, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	s.OpenForm()
	d := sample()[2].Date
	e, err := s.Add(ctx, core.NewExpense{Description: "Snack", Amount: amount(3), Category: "Food & Dining", Date: &d})
	require.NoError(t, err)

	assert.False(t, s.FormOpen())
	assert.Equal(t, []string{"4", "3", e.ID, "2", "1"}, ids(s.Records()))
	assert.Equal(t, "114.75", s.Snapshot().GrandTotal.StringFixed(2))
	assert.Equal(t, 1, api.listCalls, "add must not refetch")
}

func TestSessionAddFailureKeepsState(t *testing.T) {
	api := &fakeAPI{list: sample()}
	s := NewSession(api, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	s.OpenForm()

	_, err := s.Add(ctx, core.NewExpense{Description: "no amount", Category: "Shopping"})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))

	api.fail(errors.New("timeout"))
	_, err = s.Add(ctx, core.NewExpense{Description: "x", Amount: amount(1), Category: "Shopping"})
	require.Error(t, err)

	assert.True(t, s.FormOpen())
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(s.Records()))
}

func TestSessionRemove(t *testing.T) {
	api := &fakeAPI{list: sample()}
	s := NewSession(api, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Remove(ctx, "3"))
	assert.Equal(t, []string{"4", "2", "1"}, ids(s.Records()))

	assert.ErrorIs(t, s.Remove(ctx, "missing"), core.ErrNotFound)
	assert.Equal(t, []string{"4", "2", "1"}, ids(s.Records()))

	api.fail(errors.New("network down"))
	assert.Error(t, s.Remove(ctx, "4"))
	assert.Equal(t, []string{"4", "2", "1"}, ids(s.Records()))
	assert.Equal(t, 1, api.listCalls, "remove must not refetch")
}

func TestSessionConcurrentMutations(t *testing.T) {
	s := NewSession(&fakeAPI{list: sample()}, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add(ctx, core.NewExpense{Description: "parallel", Amount: amount(1), Category: "Utilities"})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Remove(ctx, "1")
	}()
	wg.Wait()

	records := s.Records()
	assert.Len(t, records, 8)
	assert.Equal(t, "112.25", s.Snapshot().GrandTotal.StringFixed(2))
}
