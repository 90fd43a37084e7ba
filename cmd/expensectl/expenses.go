package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"expenses/internal/core"
)

type listCmd struct {
	filters filterFlags
	json    bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "lists expenses, most recent first" }
func (*listCmd) Usage() string {
	return `expensectl list [-search <term>] [-category <name>] [-json]

  Fetches every expense and prints those matching the filters, followed by
  the grand total and the filtered total.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.BoolVar(&c.json, "json", false, "Print the filtered records as JSON")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, err := loadSession(ctx, c.filters.search, c.filters.category)
	if err != nil {
		return fail("could not fetch expenses: %v", err)
	}
	snap := sess.Snapshot()

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap.Filtered); err != nil {
			return fail("%v", err)
		}
		return subcommands.ExitSuccess
	}

	if snap.FilteredCount == 0 {
		fmt.Println("No expenses found.")
	} else {
		printExpenses(os.Stdout, snap.Filtered)
	}
	fmt.Println()
	printTotals(os.Stdout, snap)
	return subcommands.ExitSuccess
}

type addCmd struct {
	description string
	amount      string
	category    string
	date        string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "records a new expense" }
func (*addCmd) Usage() string {
	return `expensectl add -d <description> -a <amount> -c <category> [-date YYYY-MM-DD]

  Creates an expense. The date defaults to now. Suggested categories:
  ` + strings.Join(core.Categories, ", ") + `
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "d", "", "Description")
	f.StringVar(&c.amount, "a", "", "Amount, e.g. 12.50 or 12,50")
	f.StringVar(&c.category, "c", "", "Category")
	f.StringVar(&c.date, "date", "", "Date (YYYY-MM-DD or RFC 3339), defaults to now")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := core.NewExpense{Description: c.description, Category: c.category}
	if c.amount != "" {
		a, err := core.ParseAmount(c.amount)
		if err != nil {
			return fail("invalid amount %q", c.amount)
		}
		in.Amount = &a
	}
	d, err := parseDate(c.date)
	if err != nil {
		return fail("%v", err)
	}
	in.Date = d

	// Checked locally first so obvious mistakes skip the round trip.
	if err := in.Validate(); err != nil {
		return fail("%v", err)
	}

	e, err := newClient().Create(ctx, in)
	if err != nil {
		return fail("could not add expense: %v", err)
	}
	fmt.Printf("Added %s: %s (%s) %s on %s\n", e.ID, e.Description, e.Category, money(e.Amount), e.Date.Format("2006-01-02"))
	return subcommands.ExitSuccess
}

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "deletes expenses by id" }
func (*deleteCmd) Usage() string {
	return `expensectl delete <id> [<id>...]
`
}
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return subcommands.ExitUsageError
	}
	c := newClient()
	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		switch err := c.Delete(ctx, id); {
		case err == nil:
			fmt.Printf("Removed %s\n", id)
		case errors.Is(err, core.ErrNotFound):
			fmt.Fprintf(os.Stderr, "Error: expense %s not found\n", id)
			status = subcommands.ExitFailure
		default:
			fmt.Fprintf(os.Stderr, "Error: could not delete %s: %v\n", id, err)
			status = subcommands.ExitFailure
		}
	}
	return status
}

type healthCmd struct{}

func (*healthCmd) Name() string           { return "health" }
func (*healthCmd) Synopsis() string       { return "checks that the API is reachable" }
func (*healthCmd) Usage() string          { return "expensectl health\n" }
func (*healthCmd) SetFlags(*flag.FlagSet) {}

func (*healthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := newClient().Health(ctx); err != nil {
		return fail("API at %s is not healthy: %v", *apiURL, err)
	}
	fmt.Printf("API at %s is up\n", *apiURL)
	return subcommands.ExitSuccess
}
