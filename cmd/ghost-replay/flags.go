package main

import "github.com/urfave/cli/v2"

var (
	// scenarioFlag points at the YAML scenario to replay.
	scenarioFlag = &cli.StringFlag{
		Name:     "scenario",
		Usage:    "Path to a YAML fork choice scenario",
		Required: true,
	}
	// dataDirFlag enables persisting every store commit to a bolt database in this directory.
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the fork choice database. Nothing is persisted when empty",
	}
	// dotOutFlag writes the final fork choice tree as a Graphviz file.
	dotOutFlag = &cli.StringFlag{
		Name:  "dot-out",
		Usage: "Write the final fork choice tree in Graphviz dot format to this file",
	}
	// minimalConfigFlag selects the minimal preset.
	minimalConfigFlag = &cli.BoolFlag{
		Name:  "minimal-config",
		Usage: "Use the minimal preset (8 slots per epoch, 6 seconds per slot)",
	}
	// chainConfigFileFlag loads a chain config yaml on top of the selected preset.
	chainConfigFileFlag = &cli.StringFlag{
		Name:  "chain-config-file",
		Usage: "The path to a YAML file with chain config values",
	}
	// verbosityFlag defines the logrus configuration.
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (trace, debug, info=default, warn, error, fatal, panic)",
		Value: "info",
	}
	// logFormatFlag specifies the log output format.
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Specify log formatting. Supports: text, json, fluentd.",
		Value: "text",
	}
	// logFileFlag specifies the log output file name.
	logFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "Specify log file name, relative or absolute",
	}
)

var appFlags = []cli.Flag{
	scenarioFlag,
	dataDirFlag,
	dotOutFlag,
	minimalConfigFlag,
	chainConfigFileFlag,
	verbosityFlag,
	logFormatFlag,
	logFileFlag,
}
