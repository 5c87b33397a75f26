package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/cmd/d6t/console"
)

var sensorsCmd = cli.Command{
	Name:  "sensors",
	Usage: "list supported sensor types",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(console.Writer(), 12, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "ORDINAL\tNAME\tPIXELS\tGRID\tBUFFER\n")
		for _, s := range d6t.SensorTypes() {
			rows := s.Pixels() / s.Columns()
			_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%dx%d\t%d\n", int32(s), s, s.Pixels(), s.Columns(), rows, s.BufferSize())
		}
		return w.Flush()
	},
}
