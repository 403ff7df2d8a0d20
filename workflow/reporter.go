package workflow

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/meikuraledutech/pipeline"
)

// ConsoleReporter prints reports to a terminal. Errors go to their own
// stream and are shown in red when that stream supports colour.
type ConsoleReporter struct {
	out    *termenv.Output
	errOut *termenv.Output
}

var _ pipeline.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a ConsoleReporter.
func NewConsoleReporter(stdout, stderr io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:    termenv.NewOutput(stdout),
		errOut: termenv.NewOutput(stderr),
	}
}

// ReportSuccess prints message on the standard output writer.
func (r *ConsoleReporter) ReportSuccess(message string) {
	fmt.Fprintln(r.out, message)
}

// ReportError prints message in red on the error output.
func (r *ConsoleReporter) ReportError(message string) {
	fmt.Fprintln(r.errOut, r.errOut.String(message).Foreground(r.errOut.Color("1")))
}

// ReporterFunc adapts two functions to pipeline.Reporter.
type ReporterFunc struct {
	Success func(message string)
	Error   func(message string)
}

// ReportSuccess calls f.Success when set.
func (f ReporterFunc) ReportSuccess(message string) {
	if f.Success != nil {
		f.Success(message)
	}
}

// ReportError calls f.Error when set.
func (f ReporterFunc) ReportError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}
