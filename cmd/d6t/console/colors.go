package console

import "github.com/fatih/color"

// Available ANSI colors
var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
)

// Heat colors a pixel temperature by its distance to the reference
// temperature of the sensor.
func Heat(value, reference float64) string {
	text := FormatTemp(value)
	delta := value - reference
	switch {
	case delta < -1:
		return Cyan(text)
	case delta < 2:
		return Green(text)
	case delta < 5:
		return Yellow(text)
	default:
		return Red(text)
	}
}
