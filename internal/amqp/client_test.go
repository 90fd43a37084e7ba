package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"expenses/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "closed connection error", err: errors.New("connection closed"), expected: true},
		{name: "EOF error", err: errors.New("unexpected EOF"), expected: true},
		{name: "broken pipe error", err: errors.New("broken pipe"), expected: true},
		{name: "amqp closed", err: fmt.Errorf("publish message: %w", amqp091.ErrClosed), expected: true},
		{name: "other error", err: errors.New("some other error"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestNewExpenseCreatedEvent(t *testing.T) {
	e := core.Expense{ID: "abc", Description: "Coffee", Amount: 4.5, Category: "Food & Dining"}

	msg := NewExpenseCreatedEvent(e)

	if msg.Type != RoutingExpenseCreated {
		t.Errorf("Type = %q, want %q", msg.Type, RoutingExpenseCreated)
	}
	if msg.ID != "abc" {
		t.Errorf("ID = %q, want abc", msg.ID)
	}
	if msg.Expense == nil || msg.Expense.Description != "Coffee" {
		t.Errorf("Expense = %+v, want Coffee record", msg.Expense)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestExpenseEvent_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ExpenseEvent{
		Type:      RoutingExpenseDeleted,
		ID:        "65f0c0ffee",
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseEventFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ExpenseEventFromJSON() error = %v", err)
	}
	if parsed.Type != msg.Type || parsed.ID != msg.ID {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
	if parsed.Expense != nil {
		t.Errorf("deleted event should not carry a record, got %+v", parsed.Expense)
	}
	if !parsed.Timestamp.Equal(timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, timestamp)
	}
}

func TestExpenseEvent_InvalidJSON(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte(`{"id": 12`)); err == nil {
		t.Error("ExpenseEventFromJSON() should fail with invalid JSON")
	}
}
