// Package report renders an expense view as a markdown summary.
package report

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/view"
)

// Options controls what Markdown includes.
type Options struct {
	Currency string
	// SkipExpenses omits the per-record table.
	SkipExpenses bool
}

// Markdown renders snap as a markdown document: overall totals, a breakdown
// by category of the filtered records and the filtered records themselves.
func Markdown(snap view.Snapshot, opts Options) string {
	currency := opts.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}
	money := func(d decimal.Decimal) string { return core.FormatAmount(d, currency) }

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Expense Report")
	if snap.Search != "" || snap.Category != core.AllCategories {
		doc.PlainText(fmt.Sprintf("Filtered by search %q in %s.", snap.Search, snap.Category))
	}

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Spent"), md.Bold(money(snap.GrandTotal))},
		Rows: [][]string{
			{"Filtered Total", money(snap.FilteredTotal)},
			{"Records", fmt.Sprintf("%d", snap.TotalCount)},
			{"Shown", fmt.Sprintf("%d", snap.FilteredCount)},
		},
	})

	if snap.FilteredCount == 0 {
		doc.PlainText("No expenses found.")
		return doc.String()
	}

	doc.H2("By Category")
	cats := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Category", "Count", "Total", "Share"},
	}
	for _, c := range view.ByCategory(snap.Filtered) {
		cats.Rows = append(cats.Rows, []string{
			c.Category,
			fmt.Sprintf("%d", c.Count),
			money(c.Total),
			share(c.Total, snap.FilteredTotal),
		})
	}
	doc.Table(cats)

	if !opts.SkipExpenses {
		doc.H2("Expenses")
		rows := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Date", "Description", "Category", "Amount"},
		}
		for _, e := range snap.Filtered {
			rows.Rows = append(rows.Rows, []string{
				e.Date.Format("2006-01-02"),
				e.Description,
				e.Category,
				money(decimal.NewFromFloat(e.Amount)),
			})
		}
		doc.Table(rows)
	}

	return doc.String()
}

func share(part, whole decimal.Decimal) string {
	if whole.IsZero() {
		return "-"
	}
	return part.Div(whole).Shift(2).StringFixed(1) + "%"
}

// Render formats a markdown document for the terminal. style is a glamour
// standard style name ("dark", "light", "notty", ...); empty picks one from
// the terminal background.
func Render(markdown, style string, wordWrap int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
