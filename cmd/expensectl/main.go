// Command expensectl is a terminal client for the expenses API.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"expenses/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&listCmd{}, "expenses")
	commander.Register(&addCmd{}, "expenses")
	commander.Register(&deleteCmd{}, "expenses")

	commander.Register(&reportCmd{}, "views")
	commander.Register(&exportCmd{}, "views")
	commander.Register(&shellCmd{}, "views")

	commander.Register(&healthCmd{}, "ops")
	commander.Register(&watchCmd{}, "ops")

	flag.Parse()

	logger := cli.SetupLogger(*logLevel, false)
	ctx, stop := cli.SignalContext(context.Background(), logger)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
