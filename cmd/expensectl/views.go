package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"expenses/internal/export"
	"expenses/internal/report"
)

type reportCmd struct {
	filters      filterFlags
	raw          bool
	style        string
	width        int
	skipExpenses bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "prints a summary of spending by category" }
func (*reportCmd) Usage() string {
	return `expensectl report [-search <term>] [-category <name>] [-raw] [-style dark|light|notty]

  Renders totals, a per-category breakdown and the matching expenses.
  Use -raw to print the markdown source instead of the terminal rendering.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.BoolVar(&c.raw, "raw", false, "Print raw markdown")
	f.StringVar(&c.style, "style", "", "glamour style; auto-detected when empty")
	f.IntVar(&c.width, "width", 100, "Word wrap width")
	f.BoolVar(&c.skipExpenses, "summary", false, "Omit the per-expense table")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, err := loadSession(ctx, c.filters.search, c.filters.category)
	if err != nil {
		return fail("could not fetch expenses: %v", err)
	}

	md := report.Markdown(sess.Snapshot(), report.Options{Currency: *currency, SkipExpenses: c.skipExpenses})
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := report.Render(md, c.style, c.width)
	if err != nil {
		return fail("%v", err)
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	filters filterFlags
	output  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "writes the filtered expenses to an XLSX workbook" }
func (*exportCmd) Usage() string {
	return `expensectl export -o <file.xlsx> [-search <term>] [-category <name>]
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.StringVar(&c.output, "o", "expenses.xlsx", "Output file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, err := loadSession(ctx, c.filters.search, c.filters.category)
	if err != nil {
		return fail("could not fetch expenses: %v", err)
	}
	snap := sess.Snapshot()

	f, err := os.Create(c.output)
	if err != nil {
		return fail("%v", err)
	}
	if err := export.WriteXLSX(f, snap); err != nil {
		f.Close()
		return fail("could not write %s: %v", c.output, err)
	}
	if err := f.Close(); err != nil {
		return fail("%v", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d expenses to %s\n", snap.FilteredCount, c.output)
	return subcommands.ExitSuccess
}
