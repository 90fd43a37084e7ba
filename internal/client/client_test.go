package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
	apphttp "expenses/internal/http"
	"expenses/internal/services"
	"expenses/internal/storage/memory"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	svc := services.NewExpenseService(memory.New(), nil)
	srv := apphttp.NewServer(apphttp.Options{RateLimitPerMinute: 1000}, svc)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return New(ts.URL, ts.Client(), nil)
}

func amount(v float64) *float64 { return &v }

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	created, err := c.Create(ctx, core.NewExpense{
		Description: "Coffee",
		Amount:      amount(4.5),
		Category:    "Food & Dining",
		Date:        &d,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 4.5, created.Amount)
	assert.True(t, created.Date.Equal(d))

	list, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	require.NoError(t, c.Delete(ctx, created.ID))
	assert.ErrorIs(t, c.Delete(ctx, created.ID), core.ErrNotFound)
}

func TestClientCreateValidationError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Create(context.Background(), core.NewExpense{Description: "Shoes"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "Path `amount` is required.")
	assert.Contains(t, apiErr.Message, "Path `category` is required.")
}

func TestClientServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database is down"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, ts.Client(), nil)
	_, err := c.List(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "database is down", apiErr.Message)
	assert.False(t, IsValidation(err))
}

func TestClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(url, nil, nil)
	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}

func TestClientListSurvivesRejectedDates(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for _, body := range []string{
		`{"description":"Far future","amount":1,"category":"Utilities","date":253402300800000}`,
		`{"description":"Overflow","amount":1,"category":"Utilities","date":1e20}`,
	} {
		resp, err := http.Post(c.baseURL+"/api/expenses", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	last := time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC)
	created, err := c.Create(ctx, core.NewExpense{Description: "Edge", Amount: amount(1), Category: "Utilities", Date: &last})
	require.NoError(t, err)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.True(t, list[0].Date.Equal(last))
}
