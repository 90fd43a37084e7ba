package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"expenses/internal/core"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        &core.ValidationError{Fields: []core.FieldError{core.Required("amount")}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Expense validation failed: amount: Path `amount` is required.",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("delete expense: %w", core.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    MsgExpenseNotFound,
		},
		{
			name:       "malformed body",
			err:        fmt.Errorf("%w: unexpected EOF", ErrMalformedBody),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "malformed request body: unexpected EOF",
		},
		{
			name:       "store failure",
			err:        errors.New("list expenses: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "list expenses: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), "test", tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body MessageResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMsg)
			}
		})
	}
}
