package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/subcommands"

	"expenses/internal/core"
	"expenses/internal/view"
)

type shellCmd struct{}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "interactive session over the expense list" }
func (*shellCmd) Usage() string {
	return `expensectl shell

  Fetches the expenses once, then keeps the list in sync locally as you add
  and delete. Type "help" for commands.
`
}
func (*shellCmd) SetFlags(*flag.FlagSet) {}

func (*shellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess := view.NewSession(newClient(), slog.Default())
	if err := sess.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not fetch expenses: %v\n", err)
	}
	sh := newShell(sess, os.Stdin, os.Stdout)
	if err := sh.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

const shellHelp = `Commands:
  list                     show matching expenses and totals
  search [term]            filter by description, empty clears
  category [name|all]      filter by category
  categories               totals per category of the matching expenses
  add                      open the form to record an expense
  delete <id>              remove an expense
  totals                   show totals only
  help                     this text
  quit                     leave
`

type shell struct {
	sess *view.Session
	in   *bufio.Scanner
	out  io.Writer
}

func newShell(sess *view.Session, in io.Reader, out io.Writer) *shell {
	return &shell{sess: sess, in: bufio.NewScanner(in), out: out}
}

func (s *shell) prompt(p string) (string, bool) {
	fmt.Fprint(s.out, p)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *shell) run(ctx context.Context) error {
	fmt.Fprintf(s.out, "%d expenses loaded. Type \"help\" for commands.\n", len(s.sess.Records()))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := s.prompt("> ")
		if !ok {
			return s.in.Err()
		}
		if line == "" {
			continue
		}
		if quit := s.exec(ctx, line); quit {
			return nil
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "list", "ls":
		snap := s.sess.Snapshot()
		if snap.FilteredCount == 0 {
			fmt.Fprintln(s.out, "No expenses found.")
		} else {
			printExpenses(s.out, snap.Filtered)
		}
		printTotals(s.out, snap)
	case "totals":
		printTotals(s.out, s.sess.Snapshot())
	case "search":
		s.sess.SetSearch(arg)
		printTotals(s.out, s.sess.Snapshot())
	case "category":
		if strings.EqualFold(arg, "all") {
			arg = core.AllCategories
		}
		s.sess.SetCategory(arg)
		printTotals(s.out, s.sess.Snapshot())
	case "categories":
		for _, c := range view.ByCategory(s.sess.Snapshot().Filtered) {
			fmt.Fprintf(s.out, "%-20s %3d  %s\n", c.Category, c.Count, core.FormatAmount(c.Total, *currency))
		}
	case "add":
		s.add(ctx)
	case "delete", "rm":
		if arg == "" {
			fmt.Fprintln(s.out, "usage: delete <id>")
			return false
		}
		if err := s.sess.Remove(ctx, arg); err != nil {
			fmt.Fprintf(s.out, "Could not delete %s: %v\n", arg, err)
			return false
		}
		fmt.Fprintf(s.out, "Removed %s\n", arg)
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type \"help\".\n", cmd)
	}
	return false
}

// add keeps the form open until a create succeeds or the user leaves the
// description empty.
func (s *shell) add(ctx context.Context) {
	s.sess.OpenForm()
	for s.sess.FormOpen() {
		desc, ok := s.prompt("description (empty cancels): ")
		if !ok || desc == "" {
			s.sess.CloseForm()
			return
		}
		amountText, ok := s.prompt("amount: ")
		if !ok {
			s.sess.CloseForm()
			return
		}
		category, ok := s.prompt("category [" + strings.Join(core.Categories, ", ") + "]: ")
		if !ok {
			s.sess.CloseForm()
			return
		}
		dateText, ok := s.prompt("date (YYYY-MM-DD, empty for now): ")
		if !ok {
			s.sess.CloseForm()
			return
		}

		in := core.NewExpense{Description: desc, Category: category}
		if amountText != "" {
			a, err := core.ParseAmount(amountText)
			if err != nil {
				fmt.Fprintf(s.out, "Invalid amount %q\n", amountText)
				continue
			}
			in.Amount = &a
		}
		d, err := parseDate(dateText)
		if err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		in.Date = d

		e, err := s.sess.Add(ctx, in)
		if err != nil {
			fmt.Fprintf(s.out, "Could not add expense: %v\n", err)
			continue
		}
		fmt.Fprintf(s.out, "Added %s: %s %s\n", e.ID, e.Description, money(e.Amount))
	}
}
