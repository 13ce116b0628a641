package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/findash/config"
	"github.com/etnz/findash/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	file   string
	window int
	rows   int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the dashboard as a report" }
func (*reportCmd) Usage() string {
	return `fdash report [-f <file>] [-window <days>] [-rows <n>]

  Displays the indicators, a summary of each chart and the latest records.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV data file. Defaults to the configured data file.")
	f.IntVar(&c.window, "window", 0, "Number of days summed by the rolling charts.")
	f.IntVar(&c.rows, "rows", 0, "Number of records in the table.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.file != "" {
			cfg.Data.File = c.file
		}
		if isSet(f, "window") {
			cfg.Dashboard.RollingWindow = c.window
		}
		if isSet(f, "rows") {
			cfg.Dashboard.TableRows = c.rows
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	d, err := loadDashboard(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.DashboardMarkdown(d))
	return subcommands.ExitSuccess
}
