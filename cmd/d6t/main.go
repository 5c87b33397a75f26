package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/d6t/cmd/d6t/console"
	"github.com/mklimuk/d6t/config"
)

var commit string
var date string

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := cli.NewApp()
	app.Name = "d6t"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", config.Version, date, commit)
	app.Usage = "Omron D6T thermal sensor cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML configuration file",
			EnvVars: []string{"D6T_CONFIG"},
		},
	}
	app.Before = func(ctx *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stderr, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Prefix:          "d6t",
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if ctx.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
		}
		slog.SetDefault(slog.New(charm))
		return nil
	}
	app.Commands = cli.Commands{
		&readCmd,
		&watchCmd,
		&sensorsCmd,
		&usbCmd,
		&mcp2221Cmd,
	}
	// exit codes are handled below instead of calling os.Exit inside the app
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			if msg := exerr.Error(); msg != "" {
				console.Errorf("%s", msg)
			}
			return exerr.ExitCode()
		}
		console.Errorf("unexpected error: %v", err)
		return 1
	}
	return 0
}
