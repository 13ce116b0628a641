package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/findash"
	"github.com/etnz/findash/config"
	"github.com/etnz/findash/renderer"
	"github.com/google/subcommands"
)

// kpiCmd holds the flags for the 'kpi' subcommand.
type kpiCmd struct {
	file string
	json bool
}

func (*kpiCmd) Name() string     { return "kpi" }
func (*kpiCmd) Synopsis() string { return "display the key performance indicators" }
func (*kpiCmd) Usage() string {
	return `fdash kpi [-f <file>] [-json]

  Displays total revenue, total profit, total expenses and net cash flow.
`
}

func (c *kpiCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV data file. Defaults to the configured data file.")
	f.BoolVar(&c.json, "json", false, "Print the indicators as JSON.")
}

func (c *kpiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.file != "" {
			cfg.Data.File = c.file
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		return subcommands.ExitFailure
	}
	k := findash.ComputeKPIs(ds)

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(k); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding indicators: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.KPIMarkdown(k))
	return subcommands.ExitSuccess
}
