package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/karalabe/hid"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/d6t/adapter"
	"github.com/mklimuk/d6t/cmd/d6t/console"
)

var usbCmd = cli.Command{
	Name:  "usb",
	Usage: "inspect USB HID devices",
	Subcommands: cli.Commands{
		&usbLsCmd,
		&usbDetectCmd,
	},
}

var usbLsCmd = cli.Command{
	Name:  "ls",
	Usage: "list all HID devices",
	Action: func(c *cli.Context) error {
		if !hid.Supported() {
			return console.Exit(1, "HID is not supported on this platform")
		}
		devices := hid.Enumerate(0, 0)

		w := tabwriter.NewWriter(console.Writer(), 24, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "PATH\tSERIAL\tVENDOR\tPRODUCT ID\tMANUFACTURER\tPRODUCT\n")
		for _, dev := range devices {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%#x\t%#x\t%s\t%s\n",
				dev.Path, dev.Serial, dev.VendorID, dev.ProductID, dev.Manufacturer, dev.Product)
		}
		return w.Flush()
	},
}

var usbDetectCmd = cli.Command{
	Name:  "detect",
	Usage: "list I2C bridges usable with --adapter",
	Action: func(c *cli.Context) error {
		devices := hid.Enumerate(adapter.VendorID, adapter.ProductID)
		if len(devices) == 0 {
			console.PInfof(console.PictoStop, "no MCP2221 adapter found")
			return nil
		}
		w := tabwriter.NewWriter(console.Writer(), 12, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "INDEX\tVENDOR\tPRODUCT\tDEVICE\tPATH\n")
		for i, dev := range devices {
			_, _ = fmt.Fprintf(w, "%d\t%#x\t%#x\tMCP2221\t%s\n", i, dev.VendorID, dev.ProductID, dev.Path)
		}
		return w.Flush()
	},
}
