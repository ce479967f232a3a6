// Command homefin works on the household ledger from a terminal, against
// the same storage and change broadcast as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"homefinances/internal/cli"
	"homefinances/internal/log"
	"homefinances/internal/services"
)

var plain = flag.Bool("plain", false, "print markdown without terminal styling")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&accountsCmd{}, "accounts")
	commander.Register(&accountAddCmd{}, "accounts")
	commander.Register(&accountRenameCmd{}, "accounts")

	commander.Register(&importCmd{}, "transactions")
	commander.Register(&registerCmd{}, "transactions")
	commander.Register(&dashboardCmd{}, "transactions")

	commander.Register(&reportNewCmd{}, "reports")
	commander.Register(&reportsCmd{}, "reports")
	commander.Register(&exportCmd{}, "reports")
	commander.Register(&restoreCmd{}, "reports")
	commander.Register(&planCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// withLedger opens the configured ledger for one command. Logs go to
// stderr so stdout carries only the command output.
func withLedger(ctx context.Context, run func(ctx context.Context, l *services.LedgerService) error) subcommands.ExitStatus {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(nil, os.Stderr))
	logger := cli.SetupLogger(cfg, os.Stderr).WithComponent(log.ComponentCLI)

	rt, err := cli.OpenLedger(ctx, cfg, logger, "cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rt.Close()

	if err := run(ctx, rt.Ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if rt.Ledger.PersistWarning() {
		fmt.Fprintln(os.Stderr, "Warning: changes could not be saved to storage.")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

func usageError(f *flag.FlagSet, format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	f.Usage()
	return subcommands.ExitUsageError
}
