// Package cmd implements the fdash command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/findash"
	"github.com/etnz/findash/config"
	"github.com/etnz/findash/sqlstore"
	"github.com/google/subcommands"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&generateCmd{}, "data")
	c.Register(&exportCmd{}, "data")

	c.Register(&serveCmd{}, "dashboard")
	c.Register(&kpiCmd{}, "dashboard")
	c.Register(&reportCmd{}, "dashboard")
	c.Register(&chartCmd{}, "dashboard")
	c.Register(&queryCmd{}, "dashboard")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the YAML configuration file. Defaults to "+config.DefaultFile+" if it exists.")

// Verbose enables debug logging.
var Verbose = flag.Bool("v", false, "Verbose logging.")

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// loadConfig loads and validates the configuration. apply is called before
// validation, to override values with command flags.
func loadConfig(apply func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the application logger.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if *Verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// loadDataset reads the configured CSV file. When it does not exist, the
// dataset is read from the configured database, if any.
func loadDataset(ctx context.Context, cfg *config.Config) (*findash.Dataset, error) {
	ds, err := cfg.CSVFile().Load(ctx)
	if err == nil || !errors.Is(err, fs.ErrNotExist) || cfg.Data.Database == "" {
		return ds, err
	}
	db, err := sqlstore.Open(cfg.Data.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Load(ctx)
}

// loadDashboard computes the dashboard of the configured dataset.
func loadDashboard(ctx context.Context, cfg *config.Config) (*findash.Dashboard, error) {
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return findash.NewDashboard(ds, cfg.Options())
}

// isSet reports whether the flag name was set on the command line.
func isSet(f *flag.FlagSet, name string) (set bool) {
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// printMarkdown renders markdown for the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
