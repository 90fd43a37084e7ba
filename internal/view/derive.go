// Package view holds the client-side expense list state and the figures
// derived from it.
package view

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// Snapshot is the derived view of a record list under a search term and a
// category filter.
type Snapshot struct {
	Search   string
	Category string

	Filtered      []core.Expense
	FilteredTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	TotalCount    int
	FilteredCount int
}

// CategoryAmount is the sum of one category.
type CategoryAmount struct {
	Category string
	Count    int
	Total    decimal.Decimal
}

// Matches reports whether e passes the search term and category filter.
// The search is a case-insensitive substring match on the description; an
// empty term matches everything. AllCategories (or "") disables the
// category filter.
func Matches(e core.Expense, search, category string) bool {
	if search != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(search)) {
		return false
	}
	if category == "" || category == core.AllCategories {
		return true
	}
	return e.Category == category
}

// Filter returns the records matching search and category, in input order.
func Filter(records []core.Expense, search, category string) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if Matches(e, search, category) {
			out = append(out, e)
		}
	}
	return out
}

// Total sums amounts exactly.
func Total(records []core.Expense) decimal.Decimal {
	return core.Sum(records)
}

// Derive computes the full snapshot. records is not modified.
func Derive(records []core.Expense, search, category string) Snapshot {
	if category == "" {
		category = core.AllCategories
	}
	filtered := Filter(records, search, category)
	return Snapshot{
		Search:        search,
		Category:      category,
		Filtered:      filtered,
		FilteredTotal: Total(filtered),
		GrandTotal:    Total(records),
		TotalCount:    len(records),
		FilteredCount: len(filtered),
	}
}

// ByCategory groups records per category, largest total first. Equal totals
// are ordered by category name.
func ByCategory(records []core.Expense) []CategoryAmount {
	idx := make(map[string]int)
	var out []CategoryAmount
	for _, e := range records {
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, CategoryAmount{Category: e.Category, Total: decimal.Zero})
		}
		out[i].Count++
		out[i].Total = out[i].Total.Add(decimal.NewFromFloat(e.Amount))
	}
	sort.SliceStable(out, func(a, b int) bool {
		if c := out[a].Total.Cmp(out[b].Total); c != 0 {
			return c > 0
		}
		return out[a].Category < out[b].Category
	})
	return out
}

// insertByDate places e before the first record not newer than it, so a new
// record leads among equal dates. records must already be date-descending.
func insertByDate(records []core.Expense, e core.Expense) []core.Expense {
	i := sort.Search(len(records), func(i int) bool {
		return !records[i].Date.After(e.Date)
	})
	out := make([]core.Expense, 0, len(records)+1)
	out = append(out, records[:i]...)
	out = append(out, e)
	return append(out, records[i:]...)
}

func removeByID(records []core.Expense, id string) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
