package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Path    string
	Message string
}

// ValidationError is returned when an expense input is missing required fields
// or carries values that cannot be cast to the field type.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "Expense validation failed: " + strings.Join(parts, ", ")
}

// Has reports whether path is among the rejected fields.
func (e *ValidationError) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

// Required builds the error for a missing required field.
func Required(path string) FieldError {
	return FieldError{Path: path, Message: fmt.Sprintf("Path `%s` is required.", path)}
}

// CastError builds the error for a value that cannot be converted to kind.
func CastError(path, kind string, value any) FieldError {
	return FieldError{
		Path:    path,
		Message: fmt.Sprintf("Cast to %s failed for value %s (type %s) at path %q", kind, quoteValue(value), typeName(value), path),
	}
}

func quoteValue(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case nil:
		return "null"
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case map[string]any:
		return "Object"
	case []any:
		return "Array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
