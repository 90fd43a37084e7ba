package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
	"expenses/internal/services"
	"expenses/internal/storage"
	"expenses/internal/storage/memory"
)

// brokenStore fails every operation, standing in for an unreachable database.
type brokenStore struct{ err error }

func (b brokenStore) Create(context.Context, core.NewExpense) (core.Expense, error) {
	return core.Expense{}, b.err
}

func (b brokenStore) List(context.Context) ([]core.Expense, error) { return nil, b.err }

func (b brokenStore) Get(context.Context, string) (core.Expense, error) {
	return core.Expense{}, b.err
}

func (b brokenStore) Delete(context.Context, string) error { return b.err }

func (b brokenStore) Ping(context.Context) error { return b.err }

func (b brokenStore) Close() error { return nil }

func newTestServer(t *testing.T, store storage.Store) *Server {
	t.Helper()
	srv := NewServer(Options{
		Addr:               ":0",
		RateLimitPerMinute: 1000,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, services.NewExpenseService(store, nil))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m.Message
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []core.Expense {
	t.Helper()
	var list []core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list), "body: %s", rec.Body.String())
	return list
}

func TestProbes(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := do(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is running...", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/expenses/test", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is working", decodeMessage(t, rec))

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestReadyzReportsStoreFailure(t *testing.T) {
	srv := newTestServer(t, brokenStore{err: errors.New("connection refused")})

	rec := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListEmpty(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := do(t, srv, http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestCreateReturnsRecord(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Coffee","amount":4.5,"category":"Food & Dining","date":"2024-03-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, k := range []string{"_id", "description", "amount", "category", "date", "createdAt", "updatedAt"} {
		assert.Contains(t, raw, k)
	}
	assert.Equal(t, 4.5, raw["amount"])
	assert.Equal(t, "2024-03-01T00:00:00.000Z", raw["date"])
	assert.NotEmpty(t, raw["_id"])
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{
			name:    "missing description",
			body:    `{"amount":1,"category":"Shopping"}`,
			status:  http.StatusBadRequest,
			message: "Expense validation failed: description: Path `description` is required.",
		},
		{
			name:    "missing everything",
			body:    `{}`,
			status:  http.StatusBadRequest,
			message: "Expense validation failed: description: Path `description` is required., amount: Path `amount` is required., category: Path `category` is required.",
		},
		{
			name:    "empty body",
			body:    "",
			status:  http.StatusBadRequest,
			message: "Expense validation failed: description: Path `description` is required.",
		},
		{
			name:    "amount not numeric",
			body:    `{"description":"Shoes","amount":"abc","category":"Shopping"}`,
			status:  http.StatusBadRequest,
			message: `Expense validation failed: amount: Cast to Number failed for value "abc" (type string) at path "amount"`,
		},
		{
			name:    "amount boolean",
			body:    `{"description":"Shoes","amount":true,"category":"Shopping"}`,
			status:  http.StatusBadRequest,
			message: `amount: Cast to Number failed for value true (type boolean) at path "amount"`,
		},
		{
			name:    "bad date",
			body:    `{"description":"Shoes","amount":3,"category":"Shopping","date":"next tuesday"}`,
			status:  http.StatusBadRequest,
			message: `date: Cast to date failed for value "next tuesday" (type string) at path "date"`,
		},
		{
			name:    "malformed json",
			body:    `{"description":`,
			status:  http.StatusBadRequest,
			message: "malformed request body",
		},
		{
			name:    "array body",
			body:    `[1,2]`,
			status:  http.StatusBadRequest,
			message: "expected a JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, memory.New())

			rec := do(t, srv, http.MethodPost, "/api/expenses", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decodeMessage(t, rec), tt.message)

			list := decodeList(t, do(t, srv, http.MethodGet, "/api/expenses", ""))
			assert.Empty(t, list, "rejected create must not change the store")
		})
	}
}

func TestCreateAcceptsNumericStringAmount(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Taxi","amount":"12.75","category":"Transport"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var e core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, 12.75, e.Amount)
	assert.WithinDuration(t, time.Now(), e.Date, 5*time.Second, "omitted date defaults to now")
}

// Coffee is created first with today's date, Bus second with an earlier date:
// the list still shows Coffee first.
func TestScenario_NewerDateListedFirst(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Coffee","amount":4.50,"category":"Food & Dining"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	list := decodeList(t, do(t, srv, http.MethodGet, "/api/expenses", ""))
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, 4.50, list[0].Amount)

	rec = do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Bus","amount":2.00,"category":"Transport","date":"2020-01-01T08:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	list = decodeList(t, do(t, srv, http.MethodGet, "/api/expenses", ""))
	require.Len(t, list, 2)
	assert.Equal(t, "Coffee", list[0].Description)
	assert.Equal(t, "Bus", list[1].Description)
}

func TestScenario_DeleteTwice(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Lamp","amount":30,"category":"Shopping"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Expense removed", decodeMessage(t, rec))

	assert.Empty(t, decodeList(t, do(t, srv, http.MethodGet, "/api/expenses", "")))

	rec = do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Expense not found", decodeMessage(t, rec))
}

func TestStoreErrorsBecome500(t *testing.T) {
	srv := newTestServer(t, brokenStore{err: errors.New("db unreachable")})

	rec := do(t, srv, http.MethodGet, "/api/expenses", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeMessage(t, rec), "db unreachable")

	rec = do(t, srv, http.MethodPost, "/api/expenses", `{"description":"x","amount":1,"category":"y"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/expenses/abc", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNoUpdateEndpoint(t *testing.T) {
	srv := newTestServer(t, memory.New())

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		rec := do(t, srv, method, "/api/expenses/abc", `{"description":"x"}`)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	srv := newTestServer(t, memory.New())

	req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	req.Header.Set("Origin", "https://example.org")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	srv := NewServer(Options{
		RateLimitPerMinute: 2,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, services.NewExpenseService(memory.New(), nil))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	body := `{"description":"x","amount":1,"category":"y"}`
	assert.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", body).Code)
	assert.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", body).Code)

	rec := do(t, srv, http.MethodPost, "/api/expenses", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, MsgRateLimited, decodeMessage(t, rec))

	// Reads are never limited.
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/expenses", "").Code)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := do(t, srv, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgNotFound, decodeMessage(t, rec))
}
