// Package main defines ghost-replay, a tool that replays a YAML fork choice scenario
// through the LMD-GHOST core and reports the outcome of every step.
package main

import (
	"os"

	"github.com/prysmaticlabs/ghost/runtime/logging"
	"github.com/prysmaticlabs/ghost/runtime/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

var log = logrus.WithField("prefix", "main")

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ghost-replay"
	app.Usage = "replays a fork choice scenario and reports the outcome of every step"
	app.Version = version.Version()
	app.Flags = appFlags
	app.Action = replay
	app.Before = func(ctx *cli.Context) error {
		return logging.Configure(
			ctx.String(verbosityFlag.Name),
			ctx.String(logFormatFlag.Name),
			ctx.String(logFileFlag.Name),
		)
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
