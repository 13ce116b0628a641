package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/findash/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the commander's commands and flags.
//
// Install it with COMP_INSTALL=1 fdash.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs)}
		if cmd.Name() == "topic" {
			sub.Args = predict.Set(docs.Topics())
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		flags[f.Name] = flagPredictor(f)
	})
	return flags
}

// flagPredictor guesses what a flag value is from its name and usage.
func flagPredictor(f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	usage := strings.ToLower(f.Usage)
	switch {
	case f.Name == "theme":
		return predict.Set{"dark", "light"}
	case f.Name == "config":
		return predict.Files("*.yaml")
	case strings.Contains(usage, "directory"):
		return predict.Dirs("*")
	case strings.Contains(usage, "file"), strings.Contains(usage, "database"), strings.Contains(usage, "workbook"):
		return predict.Files("*")
	}
	return predict.Something
}
