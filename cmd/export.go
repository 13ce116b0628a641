package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/findash"
	"github.com/etnz/findash/config"
	"github.com/google/subcommands"
)

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	file   string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the dataset to a spreadsheet" }
func (*exportCmd) Usage() string {
	return `fdash export [-f <file>] [-o <out.xlsx>]

  Writes the dataset and its indicators to an Excel workbook.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV data file. Defaults to the configured data file.")
	f.StringVar(&c.output, "o", "financial_database.xlsx", "Output workbook.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	out, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	err = findash.EncodeXLSX(out, ds)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Exported %d records to %s\n", ds.Len(), c.output)
	return subcommands.ExitSuccess
}
