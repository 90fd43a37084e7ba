package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AllCategories is the category filter sentinel meaning "no filter".
const AllCategories = "All Categories"

// TimeLayout is the wire format for timestamps: UTC, millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Categories is the suggestion set offered by clients. Category values are free-form.
var Categories = []string{
	"Food & Dining",
	"Shopping",
	"Transport",
	"Entertainment",
	"Utilities",
}

type (
	// Expense is a stored expense record.
	Expense struct {
		ID          string
		Description string
		Amount      float64
		Category    string
		Date        time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// NewExpense is the validated input for creating an expense.
	// Nil pointers mean the field was absent from the request.
	NewExpense struct {
		Description string
		Amount      *float64
		Category    string
		Date        *time.Time
	}
)

var (
	ErrNotFound = errors.New("expense not found")
)

// Dates are kept within four-digit years so every backend and the wire
// format can represent them.
var (
	MinDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, time.December, 31, 23, 59, 59, 999_000_000, time.UTC)
)

// DateInRange reports whether t, at millisecond precision, lies in
// [MinDate, MaxDate].
func DateInRange(t time.Time) bool {
	t = Normalize(t)
	return !t.Before(MinDate) && !t.After(MaxDate)
}

// Normalize truncates t to millisecond precision in UTC, which every store keeps.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Validate checks required fields and returns a *ValidationError listing every problem.
func (n NewExpense) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(n.Description) == "" {
		fields = append(fields, Required("description"))
	}
	if n.Amount == nil {
		fields = append(fields, Required("amount"))
	}
	if strings.TrimSpace(n.Category) == "" {
		fields = append(fields, Required("category"))
	}
	if n.Date != nil && !n.Date.IsZero() && !DateInRange(*n.Date) {
		fields = append(fields, CastError("date", "date", n.Date.UTC().Format(time.RFC3339)))
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Build validates the input and produces the record a store persists under id.
// A missing date defaults to now.
func (n NewExpense) Build(id string, now time.Time) (Expense, error) {
	if err := n.Validate(); err != nil {
		return Expense{}, err
	}
	now = Normalize(now)
	date := now
	if n.Date != nil && !n.Date.IsZero() {
		date = Normalize(*n.Date)
	}
	return Expense{
		ID:          id,
		Description: strings.TrimSpace(n.Description),
		Amount:      *n.Amount,
		Category:    strings.TrimSpace(n.Category),
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type expenseJSON struct {
	ID          string  `json:"_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        formatTime(e.Date),
		CreatedAt:   formatTime(e.CreatedAt),
		UpdatedAt:   formatTime(e.UpdatedAt),
	})
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	parsed := Expense{
		ID:          raw.ID,
		Description: raw.Description,
		Amount:      raw.Amount,
		Category:    raw.Category,
	}
	if parsed.Date, err = parseTime(raw.Date); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if parsed.CreatedAt, err = parseTime(raw.CreatedAt); err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	if parsed.UpdatedAt, err = parseTime(raw.UpdatedAt); err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}
	*e = parsed
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
