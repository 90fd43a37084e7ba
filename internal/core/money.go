// Package core provides money parsing and handling utilities.
//
// This file contains the decimal arithmetic used for totals and the
// currency formatting used when totals are displayed.
package core

import (
	"errors"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency matches the peso display used by the expense page.
const DefaultCurrency = "PHP"

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a user-typed decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative values are accepted: the amount is not range-checked.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// Sum adds amounts with decimal arithmetic so totals do not drift.
func Sum(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}

// FormatAmount renders amount in currency, e.g. "₱1,234.50".
// Unknown currency codes fall back to a plain two-decimal string.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
