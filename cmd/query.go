package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/findash"
	"github.com/etnz/findash/config"
	"github.com/google/subcommands"
)

// queryCmd holds the flags for the 'query' subcommand.
type queryCmd struct {
	file string
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "query the dashboard with a JSONPath expression" }
func (*queryCmd) Usage() string {
	return `fdash query [-f <file>] <jsonpath>

  Evaluates a JSONPath expression against the dashboard JSON document, as
  served by /api/dashboard, and prints the result. For instance:

    fdash query '$.kpis.totalRevenue.display'
    fdash query '$.charts[?(@.id=="monthly-profit")].data[0].y'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV data file. Defaults to the configured data file.")
}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting exactly one JSONPath expression")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.file != "" {
			cfg.Data.File = c.file
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

	val, err := query(d, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(val); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// query evaluates a JSONPath expression against the JSON form of d.
func query(d *findash.Dashboard, path string) (any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, err
	}
	return jsonpath.Get(path, jobj)
}
