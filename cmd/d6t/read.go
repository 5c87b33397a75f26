package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/cmd/d6t/console"
	"github.com/mklimuk/d6t/snsctx"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "read one frame from the sensor",
	Flags: deviceFlags,
	Action: func(c *cli.Context) error {
		ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
		dev, _, done, err := session(ctx, c)
		if err != nil {
			return err
		}
		defer done()
		frame, err := dev.ReadFrame(ctx)
		if err != nil {
			return console.Exit(1, "error getting frame: %s", console.Red(err))
		}
		return printFrame(console.Writer(), c.String("format"), frame)
	},
}

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "read frames periodically until interrupted",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "time between reads (default from config, 1s)",
		},
	}, deviceFlags...),
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = snsctx.SetVerbose(ctx, c.Bool("verbose"))
		dev, cfg, done, err := session(ctx, c)
		if err != nil {
			return err
		}
		defer done()
		return watch(ctx, dev, cfg.Interval, func(frame d6t.Frame) error {
			return printFrame(console.Writer(), c.String("format"), frame)
		})
	},
}

// watch reads a frame every interval until ctx is done. Failed reads are
// logged and skipped.
func watch(ctx context.Context, dev *d6t.Device, interval time.Duration, emit func(d6t.Frame) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ctx.Err() == nil {
		frame, err := dev.ReadFrame(ctx)
		if err != nil {
			slog.Error("read failed", "sensor", dev.Sensor().String(), "error", err)
		} else if err := emit(frame); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func printFrame(w io.Writer, format string, frame d6t.Frame) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		err := enc.Encode(frame)
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	case "text", "":
		renderFrame(w, frame)
		return nil
	}
	return console.Exit(1, "unknown format %q", format)
}
