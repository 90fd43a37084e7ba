package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"expenses/internal/client"
	"expenses/internal/core"
	"expenses/internal/view"
)

// As a short-lived CLI, global flags are fine.
var (
	apiURL   = flag.String("api", envOr("EXPENSES_API_URL", client.DefaultBaseURL), "Base URL of the expenses API")
	currency = flag.String("currency", envOr("EXPENSES_CURRENCY", core.DefaultCurrency), "ISO currency code used to display amounts")
	logLevel = flag.String("log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newClient() *client.Client {
	return client.New(*apiURL, nil, slog.Default())
}

// loadSession fetches the records once and applies the view filters.
func loadSession(ctx context.Context, search, category string) (*view.Session, error) {
	sess := view.NewSession(newClient(), slog.Default())
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	sess.SetSearch(search)
	sess.SetCategory(category)
	return sess, nil
}

type filterFlags struct {
	search   string
	category string
}

func (f *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.search, "search", "", "Case-insensitive description filter")
	fs.StringVar(&f.category, "category", core.AllCategories, "Category filter")
}

func money(amount float64) string {
	return core.FormatAmount(decimal.NewFromFloat(amount), *currency)
}

func printExpenses(w io.Writer, list []core.Expense) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT\t")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", e.ID, e.Date.Format("2006-01-02"), e.Description, e.Category, money(e.Amount))
	}
	tw.Flush()
}

func printTotals(w io.Writer, snap view.Snapshot) {
	fmt.Fprintf(w, "Total spent: %s (%d records)\n", core.FormatAmount(snap.GrandTotal, *currency), snap.TotalCount)
	if snap.FilteredCount != snap.TotalCount {
		fmt.Fprintf(w, "Filtered:    %s (%d shown)\n", core.FormatAmount(snap.FilteredTotal, *currency), snap.FilteredCount)
	}
}

// parseDate accepts YYYY-MM-DD and RFC 3339.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return &t, nil
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
