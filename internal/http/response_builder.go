package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

// Fixed response messages of the expenses API.
const (
	MsgAPIWorking      = "API is working"
	MsgAPIRunning      = "API is running..."
	MsgExpenseRemoved  = "Expense removed"
	MsgExpenseNotFound = "Expense not found"
	MsgRateLimited     = "Rate limit exceeded. Please try again later."
	MsgNotFound        = "Not found"
)

// MessageResponse is the body of every non-record response.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageResponse{Message: msg})
}

// writeError maps err to a status: validation 400, not found 404, malformed
// body 400, anything else 500. Only 500s are logged at error level.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := applog.FromContext(r.Context())

	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.WarnContext(r.Context(), "Expense rejected",
			applog.FieldOperation, op,
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeValidation)
		writeMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, ErrMalformedBody):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeMessage(w, http.StatusNotFound, MsgExpenseNotFound)
	default:
		logger.ErrorContext(r.Context(), "Expense operation failed",
			applog.FieldOperation, op,
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
