package http

// Create-expense request bodies become core.NewExpense values in two steps.
// A JSON schema checks field types, then accepted values are cast: numeric
// strings become numbers and several date spellings are accepted.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"expenses/internal/core"
)

const maxBodyBytes = 1 << 20

// ErrMalformedBody is returned for bodies that are not a JSON object.
var ErrMalformedBody = errors.New("malformed request body")

const newExpenseSchema = `{
  "type": "object",
  "properties": {
    "description": {"type": ["string", "number", "null"]},
    "amount":      {"type": ["number", "string", "null"]},
    "category":    {"type": ["string", "number", "null"]},
    "date":        {"type": ["string", "number", "null"]}
  }
}`

// fieldKinds names the cast target reported in cast errors, in field order.
var fieldKinds = []struct{ path, kind string }{
	{"description", "string"},
	{"amount", "Number"},
	{"category", "string"},
	{"date", "date"},
}

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("new-expense.json", strings.NewReader(newExpenseSchema)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("new-expense.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// ParseNewExpense decodes body into a NewExpense. Type mismatches and
// uncastable values come back as *core.ValidationError; anything that is not
// a JSON object wraps ErrMalformedBody. Required-field checks are left to
// NewExpense.Validate, which callers run next.
func ParseNewExpense(body []byte) (core.NewExpense, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		// An empty body behaves like {}: every required field is missing.
		return core.NewExpense{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return core.NewExpense{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return core.NewExpense{}, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedBody)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return core.NewExpense{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedBody)
	}

	var fields []core.FieldError
	if err := compiledSchema.Validate(raw); err != nil {
		bad := schemaFailures(err)
		for _, fk := range fieldKinds {
			if bad[fk.path] {
				fields = append(fields, core.CastError(fk.path, fk.kind, plain(obj[fk.path])))
			}
		}
		if len(fields) == 0 {
			return core.NewExpense{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		return core.NewExpense{}, &core.ValidationError{Fields: fields}
	}

	var in core.NewExpense
	in.Description = castString(obj["description"])
	in.Category = castString(obj["category"])

	if v, present := obj["amount"]; present {
		amt, ok, err := castAmount(v)
		if err != nil {
			fields = append(fields, core.CastError("amount", "Number", plain(v)))
		} else if ok {
			in.Amount = &amt
		}
	}

	if v, present := obj["date"]; present {
		d, ok, err := castDate(v)
		if err != nil {
			fields = append(fields, core.CastError("date", "date", plain(v)))
		} else if ok {
			in.Date = &d
		}
	}

	if len(fields) > 0 {
		return core.NewExpense{}, &core.ValidationError{Fields: fields}
	}
	return in, nil
}

// schemaFailures collects the top-level property names the schema rejected.
func schemaFailures(err error) map[string]bool {
	out := make(map[string]bool)
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return out
	}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		loc := strings.TrimPrefix(e.InstanceLocation, "/")
		if loc != "" {
			name, _, _ := strings.Cut(loc, "/")
			out[name] = true
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return out
}

func castString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(sanitizeInput(val))
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// castAmount returns ok=false for null and blank strings, which count as absent.
func castAmount(v any) (float64, bool, error) {
	switch val := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil || math.IsInf(f, 0) {
			return 0, false, core.ErrInvalidAmount
		}
		return f, true, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false, core.ErrInvalidAmount
		}
		return f, true, nil
	default:
		return 0, false, core.ErrInvalidAmount
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// castDate accepts RFC 3339, YYYY-MM-DD (UTC midnight) and epoch
// milliseconds. Numbers must be whole milliseconds, and every date must fall
// in years 1 through 9999.
func castDate(v any) (time.Time, bool, error) {
	var t time.Time
	switch val := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case json.Number:
		ms, err := epochMillis(val)
		if err != nil {
			return time.Time{}, false, err
		}
		t = time.UnixMilli(ms).UTC()
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false, nil
		}
		parsed, err := parseDateString(s)
		if err != nil {
			return time.Time{}, false, err
		}
		t = parsed
	default:
		return time.Time{}, false, fmt.Errorf("unsupported date type %T", v)
	}
	if !core.DateInRange(t) {
		return time.Time{}, false, fmt.Errorf("date %v out of range", v)
	}
	return t, true, nil
}

func epochMillis(n json.Number) (int64, error) {
	if ms, err := n.Int64(); err == nil {
		if ms < core.MinDate.UnixMilli() || ms > core.MaxDate.UnixMilli() {
			return 0, fmt.Errorf("epoch milliseconds %d out of range", ms)
		}
		return ms, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("epoch milliseconds %s not a whole number", n)
	}
	if f < float64(core.MinDate.UnixMilli()) || f > float64(core.MaxDate.UnixMilli()) {
		return 0, fmt.Errorf("epoch milliseconds %s out of range", n)
	}
	return int64(f), nil
}

func parseDateString(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// plain converts decoder values back to the types used in error messages.
func plain(v any) any {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
