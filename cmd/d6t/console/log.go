package console

import (
	"fmt"
	"io"
	"os"
)

const PictoThermometer = "🌡"
const PictoStop = "🚫"

var writer io.Writer
var errWriter io.Writer

func init() {
	writer = os.Stdout
	errWriter = os.Stderr
}

func SetOutput(w, errw io.Writer) {
	writer = w
	errWriter = errw
}

// Writer is the current standard output.
func Writer() io.Writer {
	return writer
}

func Errorf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Red("ERROR"), fmt.Sprintf(msg, args...))
}

func PInfof(picto, msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", picto, fmt.Sprintf(msg, args...))
}

// FormatTemp renders a temperature with one decimal, right aligned.
func FormatTemp(value float64) string {
	return fmt.Sprintf("%6.1f", value)
}
