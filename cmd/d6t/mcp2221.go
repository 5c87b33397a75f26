package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/d6t/adapter"
	"github.com/mklimuk/d6t/cmd/d6t/console"
	"github.com/mklimuk/d6t/snsctx"
)

var adapterIndexFlag = &cli.IntFlag{
	Name:  "index",
	Value: -1,
	Usage: "adapter index when several are connected",
}

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "MCP2221 USB-I2C bridge diagnostics",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Flags: []cli.Flag{adapterIndexFlag},
	Action: func(c *cli.Context) error {
		a := newAdapter(c)
		ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
		status, err := a.Status(ctx)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel the current I2C transfer",
	Flags: []cli.Flag{adapterIndexFlag},
	Action: func(c *cli.Context) error {
		a := newAdapter(c)
		ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
		status, err := a.ReleaseBus(ctx)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}

func newAdapter(c *cli.Context) *adapter.MCP2221 {
	if index := c.Int("index"); index >= 0 {
		return adapter.NewMCP2221(adapter.WithDeviceIndex(index))
	}
	return adapter.NewMCP2221()
}

func encodeYAML(v any) error {
	enc := yaml.NewEncoder(console.Writer())
	defer func() { _ = enc.Close() }()
	err := enc.Encode(v)
	if err != nil {
		return console.Exit(1, "encoding error: %s", console.Red(err))
	}
	return nil
}
