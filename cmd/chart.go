package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/findash/config"
	"github.com/etnz/findash/renderer"
	"github.com/google/subcommands"
)

// chartCmd holds the flags for the 'chart' subcommand.
type chartCmd struct {
	file  string
	dir   string
	theme string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render the dashboard charts as SVG files" }
func (*chartCmd) Usage() string {
	return `fdash chart [-f <file>] [-o <dir>] [-theme dark|light]

  Writes one <chart id>.svg file per chart in the output directory.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV data file. Defaults to the configured data file.")
	f.StringVar(&c.dir, "o", ".", "Output directory.")
	f.StringVar(&c.theme, "theme", "", "Chart theme, dark or light. Defaults to the configured theme.")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.file != "" {
			cfg.Data.File = c.file
		}
		if c.theme != "" {
			cfg.Dashboard.Theme = c.theme
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
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.dir, err)
		return subcommands.ExitFailure
	}

	for _, fig := range d.Charts {
		name := filepath.Join(c.dir, fig.ID+".svg")
		out, err := os.Create(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		err = renderer.ChartSVG(out, fig, cfg.Options().Theme)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, name)
	}
	return subcommands.ExitSuccess
}
