package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/cmd/d6t/console"
)

func renderFrame(w io.Writer, frame d6t.Frame) {
	_, _ = fmt.Fprintf(w, "%s %s reference %s°C  pec %#02x\n",
		console.PictoThermometer, console.White(frame.Sensor), console.White(console.FormatTemp(frame.Reference)), frame.PEC)
	for _, row := range frame.Rows() {
		cells := make([]string, len(row))
		for i, p := range row {
			cells[i] = console.Heat(p, frame.Reference)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, " "))
	}
}
