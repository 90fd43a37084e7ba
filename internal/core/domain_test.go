package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func amount(v float64) *float64 { return &v }

func datePtr(t time.Time) *time.Time { return &t }

func TestNewExpenseValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      NewExpense
		missing []string
	}{
		{"complete", NewExpense{Description: "Coffee", Amount: amount(4.5), Category: "Food & Dining"}, nil},
		{"zero amount is present", NewExpense{Description: "Gift", Amount: amount(0), Category: "Shopping"}, nil},
		{"missing description", NewExpense{Amount: amount(1), Category: "Shopping"}, []string{"description"}},
		{"blank description", NewExpense{Description: "   ", Amount: amount(1), Category: "Shopping"}, []string{"description"}},
		{"missing amount", NewExpense{Description: "x", Category: "Shopping"}, []string{"amount"}},
		{"missing everything", NewExpense{}, []string{"description", "amount", "category"}},
		{"date past year 9999", NewExpense{Description: "x", Amount: amount(1), Category: "Shopping", Date: datePtr(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC))}, []string{"date"}},
		{"date before year 1", NewExpense{Description: "x", Amount: amount(1), Category: "Shopping", Date: datePtr(time.Date(0, 12, 31, 0, 0, 0, 0, time.UTC))}, []string{"date"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if len(tc.missing) == 0 {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tc.missing) {
				t.Fatalf("expected %d field errors, got %v", len(tc.missing), verr.Fields)
			}
			for _, path := range tc.missing {
				if !verr.Has(path) {
					t.Fatalf("expected %s in %v", path, verr.Fields)
				}
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewExpense{Amount: amount(1), Category: "Shopping"}.Validate()
	want := "Expense validation failed: description: Path `description` is required."
	if err == nil || err.Error() != want {
		t.Fatalf("got %v, want %q", err, want)
	}

	cast := &ValidationError{Fields: []FieldError{CastError("amount", "Number", "abc")}}
	if !strings.Contains(cast.Error(), `Cast to Number failed for value "abc" (type string) at path "amount"`) {
		t.Fatalf("unexpected cast message: %s", cast.Error())
	}
}

func TestBuildDefaultsDate(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)
	e, err := NewExpense{Description: " Coffee ", Amount: amount(4.5), Category: "Food & Dining"}.Build("id1", now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !e.Date.Equal(Normalize(now)) || !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Fatalf("unexpected timestamps: %+v", e)
	}
	if e.Description != "Coffee" || e.ID != "id1" {
		t.Fatalf("unexpected record: %+v", e)
	}

	date := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	e, err = NewExpense{Description: "Bus", Amount: amount(2), Category: "Transport", Date: &date}.Build("id2", now)
	if err != nil || !e.Date.Equal(date) {
		t.Fatalf("expected explicit date kept, got %v err=%v", e.Date, err)
	}
}

func TestExpenseJSONShape(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	e := Expense{ID: "abc", Description: "Coffee", Amount: 4.5, Category: "Food & Dining", Date: ts, CreatedAt: ts, UpdatedAt: ts}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, part := range []string{`"_id":"abc"`, `"amount":4.5`, `"date":"2025-01-02T03:04:05.006Z"`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(string(b), part) {
			t.Fatalf("missing %s in %s", part, b)
		}
	}

	var back Expense
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != e.ID || !back.Date.Equal(e.Date) {
		t.Fatalf("decoded %+v, want %+v", back, e)
	}
}

func TestDateInRange(t *testing.T) {
	if !DateInRange(MinDate) || !DateInRange(MaxDate) {
		t.Fatal("bounds must be in range")
	}
	if DateInRange(MaxDate.Add(time.Millisecond)) {
		t.Error("year 10000 accepted")
	}
	if DateInRange(MinDate.Add(-time.Millisecond)) {
		t.Error("year 0 accepted")
	}
}

func TestBuildTrimsPadding(t *testing.T) {
	e, err := NewExpense{Description: "  Coffee ", Amount: amount(4.5), Category: " Food & Dining "}.Build("id", time.Now())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if e.Description != "Coffee" || e.Category != "Food & Dining" {
		t.Errorf("Build() = %q/%q, want trimmed values", e.Description, e.Category)
	}
}
