package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/findash"
	"github.com/etnz/findash/config"
	"github.com/etnz/findash/server"
	"github.com/etnz/findash/sqlstore"
	"github.com/etnz/findash/watch"
	"github.com/google/subcommands"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	addr     string
	file     string
	database string
	watch    bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard over HTTP" }
func (*serveCmd) Usage() string {
	return `fdash serve [-addr <addr>] [-f <file>] [-db <path>] [-watch]

  Serves the dashboard web page and its JSON API.

  The dashboard is recomputed whenever the data file changes, and open pages
  refresh themselves. A missing data file is generated first.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on. Defaults to the configured address.")
	f.StringVar(&c.file, "f", "", "CSV data file. Defaults to the configured data file.")
	f.StringVar(&c.database, "db", "", "SQLite database mirroring the dataset.")
	f.BoolVar(&c.watch, "watch", true, "Reload the dataset when the data file changes.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if c.addr != "" {
			cfg.Server.Addr = c.addr
		}
		if c.file != "" {
			cfg.Data.File = c.file
		}
		if c.database != "" {
			cfg.Data.Database = c.database
		}
		if isSet(f, "watch") {
			cfg.Server.Watch = c.watch
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serve runs the dashboard server, the file watcher and the database mirror
// until ctx is done or one of them fails.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store := findash.NewStore(cfg.Options(), logger)
	defer store.Close()

	file := cfg.CSVFile()
	ds, err := loadDataset(ctx, cfg)
	// no data file, and no dataset in the database either
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, findash.ErrEmptyDataset) && cfg.Data.Database != "" {
		logger.Info("data file not found, generating one", zap.String("file", file.Path))
		ds, err = cfg.Generator().Generate()
		if err == nil {
			err = file.Save(ctx, ds)
		}
	}
	if err != nil {
		return err
	}
	store.Set(ds)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Data.Database != "" {
		db, err := sqlstore.Open(cfg.Data.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Save(ctx, ds); err != nil {
			return err
		}
		revs := store.Subscribe(ctx)
		g.Go(func() error {
			for rev := range revs {
				ds, _ := store.Dataset()
				if err := db.Save(ctx, ds); err != nil {
					logger.Warn("cannot mirror dataset", zap.Uint64("revision", rev.N), zap.Error(err))
				}
			}
			return nil
		})
	}

	if cfg.Server.Watch {
		w := watch.New(file, store, logger)
		g.Go(func() error { return w.Run(ctx) })
	}

	srv := server.New(store, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Generator:      cfg.Generator(),
		Sinks:          []findash.Sink{file},
	}, logger)
	g.Go(func() error { return srv.Run(ctx, cfg.Server.Addr) })

	return g.Wait()
}
