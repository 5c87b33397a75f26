package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/adapter"
	"github.com/mklimuk/d6t/busdriver"
	"github.com/mklimuk/d6t/cmd/d6t/console"
	"github.com/mklimuk/d6t/config"
	"github.com/mklimuk/d6t/i2c"
	"github.com/mklimuk/d6t/libd6t"
)

var deviceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "i2c, mcp2221, nanopi, libd6t or mock",
	},
	&cli.StringFlag{
		Name:    "sensor",
		Aliases: []string{"s"},
		Usage:   "sensor type name or ordinal (see 'd6t sensors')",
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "i2c device node, bus number or adapter index; empty selects the default",
	},
	&cli.StringFlag{
		Name:  "library",
		Usage: "path to libd6t shared library",
	},
	&cli.BoolFlag{
		Name:  "void-read",
		Usage: "libd6t d6t_read returns void",
	},
	&cli.StringFlag{
		Name:  "format",
		Value: "text",
		Usage: "output format: text or yaml",
	},
}

// loadConfig merges the configuration file with command flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet("adapter") {
		cfg.Adapter = config.Adapter(c.String("adapter"))
	}
	if c.IsSet("sensor") {
		cfg.Sensor = c.String("sensor")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("library") {
		cfg.Library = c.String("library")
	}
	if c.IsSet("void-read") {
		cfg.VoidRead = c.Bool("void-read")
	}
	if c.IsSet("interval") {
		cfg.Interval = c.Duration("interval")
	}
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// sensorType returns the configured sensor or asks for one.
func sensorType(cfg *config.Config) (d6t.SensorType, error) {
	if cfg.Sensor != "" || !console.Interactive() {
		return cfg.SensorType()
	}
	var names []string
	for _, s := range d6t.SensorTypes() {
		names = append(names, s.String())
	}
	answer, err := console.Prompt("sensor type", names...)
	if err != nil {
		return 0, fmt.Errorf("could not read sensor type: %w", err)
	}
	return d6t.ParseSensorType(answer)
}

// openDriver builds the driver selected by the configuration. The returned
// function releases what the driver holds on to.
func openDriver(cfg *config.Config) (d6t.Driver, func(), error) {
	noop := func() {}
	opts := []busdriver.Option{busdriver.WithAddress(cfg.Address)}
	switch cfg.Adapter {
	case config.AdapterI2C:
		return busdriver.New(i2c.Opener{}, opts...), noop, nil
	case config.AdapterMCP2221:
		return busdriver.New(adapter.MCP2221Opener{}, opts...), noop, nil
	case config.AdapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		err := npi.I2cBusAdaptor.Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		release := func() {
			err := npi.I2cBusAdaptor.Finalize()
			if err != nil {
				slog.Warn("could not finalize adaptor", "error", err)
			}
		}
		return busdriver.New(i2c.GobotOpener{Connector: npi}, opts...), release, nil
	case config.AdapterLibD6T:
		var libOpts []libd6t.Option
		if cfg.VoidRead {
			libOpts = append(libOpts, libd6t.WithVoidRead())
		}
		lib, err := libd6t.Load(cfg.Library, libOpts...)
		if err != nil {
			return nil, nil, err
		}
		release := func() {
			err := lib.Unload()
			if err != nil {
				slog.Warn("could not unload library", "error", err)
			}
		}
		return lib, release, nil
	case config.AdapterMock:
		return d6t.NewGradientMockDriver(22, 8), noop, nil
	}
	return nil, nil, fmt.Errorf("unsupported adapter %q", cfg.Adapter)
}

// session opens the configured device. Callers must call the returned
// function once done.
func session(ctx context.Context, c *cli.Context) (*d6t.Device, *config.Config, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, console.Exit(1, "configuration error: %s", console.Red(err))
	}
	sensor, err := sensorType(cfg)
	if err != nil {
		return nil, nil, nil, console.Exit(1, "sensor selection error: %s", console.Red(err))
	}
	driver, release, err := openDriver(cfg)
	if err != nil {
		return nil, nil, nil, console.Exit(1, "adapter initialization error: %s", console.Red(err))
	}
	dev := d6t.NewDevice(driver, sensor, d6t.WithPath(cfg.Device), d6t.WithLogger(slog.Default()))
	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = dev.Open(openCtx)
	if err != nil {
		release()
		return nil, nil, nil, console.Exit(1, "could not open %s: %s", sensor, console.Red(err))
	}
	closer := func() {
		err := dev.Close(context.Background())
		if err != nil {
			slog.Warn("could not close device", "error", err)
		}
		release()
	}
	return dev, cfg, closer, nil
}
