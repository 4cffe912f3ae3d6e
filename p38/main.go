package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"pit38/cmd"
)

func main() {
	// Shell completion runs first: when invoked by the shell's completion
	// hook the process prints candidates and exits here.
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"compute": {
				Flags: map[string]complete.Predictor{
					"year":   predict.Something,
					"method": predict.Set{"fifo", "custom"},
					"lots":   predict.Files("*"),
					"config": predict.Files("*.yaml"),
				},
				Args: predict.Files("*.csv"),
			},
			"transactions": {
				Flags: map[string]complete.Predictor{
					"year":   predict.Something,
					"config": predict.Files("*.yaml"),
				},
				Args: predict.Files("*.csv"),
			},
			"rates": {
				Flags: map[string]complete.Predictor{
					"year": predict.Something,
					"s":    predict.Something,
					"d":    predict.Something,
				},
			},
		},
	}
	completion.Complete("p38")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
