package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/findash/config"
	"github.com/etnz/findash/sqlstore"
	"github.com/google/subcommands"
)

// generateCmd holds the flags for the 'generate' subcommand.
type generateCmd struct {
	output     string
	days       int
	seed       uint64
	database   string
	categories string
}

func (*generateCmd) Name() string     { return "generate" }
func (*generateCmd) Synopsis() string { return "generate a synthetic financial dataset" }
func (*generateCmd) Usage() string {
	return `fdash generate [-o <file>] [-days <n>] [-seed <s>] [-db <path>] [-categories <a,b>]

  Generates one record per day, ending yesterday, and writes them to a CSV file.
  With -db, the dataset is also stored in a SQLite database.
`
}

func (c *generateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output CSV file. Defaults to the configured data file.")
	f.IntVar(&c.days, "days", 0, "Number of days to generate. Defaults to the configured number of days.")
	f.Uint64Var(&c.seed, "seed", 0, "Random seed, 0 for a time based seed.")
	f.StringVar(&c.database, "db", "", "Also store the dataset in this SQLite database.")
	f.StringVar(&c.categories, "categories", "", "Comma separated expense categories.")
}

func (c *generateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.output != "" {
			cfg.Data.File = c.output
		}
		if c.days != 0 {
			cfg.Generate.Days = c.days
		}
		if c.seed != 0 {
			cfg.Generate.Seed = c.seed
		}
		if c.database != "" {
			cfg.Data.Database = c.database
		}
		if c.categories != "" {
			cfg.Generate.Categories = config.SplitList(c.categories)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	ds, err := cfg.Generator().Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating dataset: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := cfg.CSVFile().Save(ctx, ds); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", cfg.Data.File, err)
		return subcommands.ExitFailure
	}

	if cfg.Data.Database != "" {
		db, err := sqlstore.Open(cfg.Data.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database %q: %v\n", cfg.Data.Database, err)
			return subcommands.ExitFailure
		}
		defer db.Close()
		if err := db.Save(ctx, ds); err != nil {
			fmt.Fprintf(os.Stderr, "Error storing dataset in %q: %v\n", cfg.Data.Database, err)
			return subcommands.ExitFailure
		}
	}

	span, _ := ds.Span()
	fmt.Fprintf(stdout, "Generated %d records (%s) into %s\n", ds.Len(), span, cfg.Data.File)
	return subcommands.ExitSuccess
}
