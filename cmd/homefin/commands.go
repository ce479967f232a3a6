package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"homefinances/internal/core"
	"homefinances/internal/register"
	"homefinances/internal/report"
	"homefinances/internal/services"
	"homefinances/internal/state"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with their balances" }
func (*accountsCmd) Usage() string {
	return `homefin accounts

  Lists every account with its group, type, institution and balance.
`
}
func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		balances := map[string]float64{}
		for _, b := range l.Dashboard(time.Now()).Accounts {
			balances[b.Name] = b.Balance
		}
		accounts := l.Accounts()
		rows := make([][]string, 0, len(accounts))
		for _, a := range accounts {
			rows = append(rows, []string{a.Name, a.Group, a.Type, a.Institution, core.FormatCurrency(balances[a.Name])})
		}
		printMarkdown(report.MarkdownTable([]string{"Account", "Group", "Type", "Institution", "Balance"}, 4, rows))
		return nil
	})
}

type accountAddCmd struct {
	in state.AccountInput
}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "add an account" }
func (*accountAddCmd) Usage() string {
	return `homefin account-add -name <name> [-group <group>] [-type <type>] [-institution <bank>] [-opening <amount>]

  A non-zero opening balance is recorded as a first transaction.
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in.Name, "name", "", "account name (required, unique)")
	f.StringVar(&c.in.Group, "group", "", "account group")
	f.StringVar(&c.in.Type, "type", "", "account type")
	f.StringVar(&c.in.Institution, "institution", "", "financial institution")
	f.StringVar(&c.in.OpeningBalance, "opening", "", "opening balance")
}

func (c *accountAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.in.Name) == "" {
		return usageError(f, "-name is required")
	}
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		a, err := l.AddAccount(ctx, c.in)
		if err != nil {
			return err
		}
		fmt.Printf("Added account %s (%s)\n", a.Name, a.ID)
		return nil
	})
}

type accountRenameCmd struct{}

func (*accountRenameCmd) Name() string     { return "account-rename" }
func (*accountRenameCmd) Synopsis() string { return "rename an account and its transactions" }
func (*accountRenameCmd) Usage() string {
	return `homefin account-rename <from> <to>

  Renames the account and rewrites the account of every transaction
  recorded against the old name.
`
}
func (*accountRenameCmd) SetFlags(*flag.FlagSet) {}

func (*accountRenameCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usageError(f, "expected <from> and <to>")
	}
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		a, err := l.RenameAccount(ctx, f.Arg(0), f.Arg(1))
		if err != nil {
			return err
		}
		fmt.Printf("Renamed %s to %s\n", f.Arg(0), a.Name)
		return nil
	})
}

type importCmd struct {
	account string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import bank statement CSV files" }
func (*importCmd) Usage() string {
	return `homefin import [-account <name>] <file.csv>...

  Imports the CSV files in order. Rows without a known account go to
  -account, or to the first account when it is not set.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "default account for rows without one")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError(f, "no files given")
	}
	files := make([]services.ImportFile, 0, f.NArg())
	for _, name := range f.Args() {
		fh, err := os.Open(name)
		if err != nil {
			files = append(files, services.ImportFile{Name: name, Err: err})
			continue
		}
		files = append(files, services.ReadImportFile(name, fh))
		fh.Close()
	}
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		sum := l.ImportFiles(ctx, files, c.account)
		if sum.Status.Tone == services.ToneError {
			return fmt.Errorf("%s", sum.Status.Message)
		}
		fmt.Println(sum.Status.Message)
		if sum.AccountFallbacks > 0 {
			fmt.Printf("%d rows used the default account.\n", sum.AccountFallbacks)
		}
		return nil
	})
}

type registerCmd struct {
	filters register.Filters
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "show the transaction register" }
func (*registerCmd) Usage() string {
	return `homefin register [-account <name>] [-type inflow|outflow] [-q <text>]
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.filters.Account, "account", "", "only this account")
	f.StringVar(&c.filters.Type, "type", "", "only inflow or outflow rows")
	f.StringVar(&c.filters.Search, "q", "", "search payee, category and memo")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		view := l.Register("", c.filters)
		if view.Empty() {
			fmt.Println(view.Placeholder)
			return nil
		}
		visible := view.VisibleRows()
		rows := make([][]string, 0, len(visible))
		for _, r := range visible {
			rows = append(rows, []string{r.Date, r.Account, r.Payee, r.CategoryLabel(), r.Memo,
				amountCell(r.Outflow()), amountCell(r.Inflow()), core.FormatCurrency(r.Balance)})
		}
		var b strings.Builder
		b.WriteString(report.MarkdownTable(
			[]string{"Date", "Account", "Payee", "Category", "Memo", "Outflow", "Inflow", "Balance"}, 5, rows))
		fmt.Fprintf(&b, "\nInflow **%s**, outflow **%s**, net **%s**\n",
			core.FormatCurrency(view.Totals.Inflow), core.FormatCurrency(view.Totals.Outflow), core.FormatCurrency(view.Totals.Net))
		printMarkdown(b.String())
		return nil
	})
}

func amountCell(v float64) string {
	if v == 0 {
		return ""
	}
	return core.Fixed2(v)
}

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show the last 30 days at a glance" }
func (*dashboardCmd) Usage() string {
	return `homefin dashboard
`
}
func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (*dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		d := l.Dashboard(time.Now())
		var b strings.Builder
		b.WriteString("# Dashboard\n\n")
		fmt.Fprintf(&b, "- Net cash flow: **%s** (%s)\n", d.NetLabel(), d.NetTrend())
		fmt.Fprintf(&b, "- Total balance: **%s** (%s)\n", d.TotalLabel(), d.TotalTrend())
		fmt.Fprintf(&b, "- Budget used: **%s** (%s)\n\n", d.BudgetLabel(), d.BudgetTrend())

		accounts := make([][]string, 0, len(d.Accounts))
		for _, a := range d.Accounts {
			accounts = append(accounts, []string{a.Name, core.FormatCurrency(a.Balance)})
		}
		b.WriteString("## Accounts\n\n")
		b.WriteString(report.MarkdownTable([]string{"Account", "Balance"}, 1, accounts))

		if len(d.TopCategories) > 0 {
			cats := make([][]string, 0, len(d.TopCategories))
			for _, c := range d.TopCategories {
				cats = append(cats, []string{c.Category, core.FormatCurrency(c.Total)})
			}
			b.WriteString("\n## Top categories\n\n")
			b.WriteString(report.MarkdownTable([]string{"Category", "Spent"}, 1, cats))
		}
		printMarkdown(b.String())
		return nil
	})
}

type reportNewCmd struct{}

func (*reportNewCmd) Name() string     { return "report-new" }
func (*reportNewCmd) Synopsis() string { return "create a monthly report" }
func (*reportNewCmd) Usage() string {
	return `homefin report-new <YYYY-MM>
`
}
func (*reportNewCmd) SetFlags(*flag.FlagSet) {}

func (*reportNewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "expected one month")
	}
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		_, status, err := l.CreateReport(ctx, f.Arg(0))
		if err != nil {
			return fmt.Errorf("%s", status.Message)
		}
		fmt.Println(status.Message)
		return nil
	})
}

type reportsCmd struct{}

func (*reportsCmd) Name() string     { return "reports" }
func (*reportsCmd) Synopsis() string { return "list monthly reports with their totals" }
func (*reportsCmd) Usage() string {
	return `homefin reports
`
}
func (*reportsCmd) SetFlags(*flag.FlagSet) {}

func (*reportsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		if len(l.Reports()) == 0 {
			fmt.Println("No reports yet.")
			return nil
		}
		printMarkdown(l.ReportsMarkdown())
		return nil
	})
}

type exportCmd struct {
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the reports" }
func (*exportCmd) Usage() string {
	return `homefin export [-format csv|pdf|archive|sheets] [-o <file>]

  csv writes to stdout unless -o is set. pdf writes a print-ready HTML
  document and archive a JSON dump of all data, both to their default
  file names unless -o is set. sheets pushes the table to Google Sheets.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "csv", "csv, pdf, archive or sheets")
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.format {
	case "csv", "pdf", "archive", "sheets":
	default:
		return usageError(f, "unknown format %q", c.format)
	}
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		now := time.Now()
		switch c.format {
		case "sheets":
			ref, err := l.ExportToSheets(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Reports exported to Google Sheets (%s)\n", ref)
			return nil
		case "pdf":
			out, err := l.ExportPrintable(now)
			if err != nil {
				return err
			}
			return c.write(out, report.PrintableFilename(now))
		case "archive":
			out, err := l.ExportArchive(now)
			if err != nil {
				return err
			}
			return c.write(out, report.ArchiveFilename(now))
		default:
			out, err := l.ExportCSV()
			if err != nil {
				return err
			}
			return c.write([]byte(out), "")
		}
	})
}

// write saves data to -o, else to fallback, else to stdout.
func (c *exportCmd) write(data []byte, fallback string) error {
	name := c.output
	if name == "" {
		name = fallback
	}
	if name == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", name)
	return nil
}

type restoreCmd struct{}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace all data with an archive export" }
func (*restoreCmd) Usage() string {
	return `homefin restore <archive.json>

  Replaces every account, transaction and report with the archive content.
`
}
func (*restoreCmd) SetFlags(*flag.FlagSet) {}

func (*restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "expected one archive file")
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return withLedger(ctx, func(ctx context.Context, l *services.LedgerService) error {
		if err := l.RestoreArchive(ctx, data); err != nil {
			return err
		}
		snap := l.Snapshot()
		fmt.Printf("Restored %d accounts, %d transactions and %d reports\n",
			len(snap.Accounts), len(snap.Transactions), len(snap.Reports))
		return nil
	})
}

type planCmd struct {
	income, expenses, growth, months string
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "project cash flow over the coming months" }
func (*planCmd) Usage() string {
	return `homefin plan [-income n] [-expenses n] [-growth pct] [-months n]
`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.income, "income", "0", "monthly income")
	f.StringVar(&c.expenses, "expenses", "0", "monthly expenses")
	f.StringVar(&c.growth, "growth", "0", "monthly income growth in percent")
	f.StringVar(&c.months, "months", "12", "months to project")
}

func (c *planCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	plan := report.ParsePlan(c.income, c.expenses, c.growth, c.months)
	p := plan.Project()
	printMarkdown(fmt.Sprintf("# Plan over %d months\n\n- Total net: **%s**\n- Final income: **%s**\n- Average net: **%s**\n",
		plan.Months, core.FormatCurrency(p.TotalNet), core.FormatCurrency(p.FinalIncome), core.FormatCurrency(p.AverageNet)))
	return subcommands.ExitSuccess
}
