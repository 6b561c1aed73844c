package writers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/licensemap"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
	"github.com/felixgeelhaar/licensemap/pkg/redact"
)

// ConsoleWriter writes human-readable output to the console.
type ConsoleWriter struct {
	out       io.Writer
	err       io.Writer
	color     bool
	verbosity ports.Verbosity

	// Color functions
	red    func(a ...interface{}) string
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	bold   func(a ...interface{}) string
	dim    func(a ...interface{}) string
}

// NewConsoleWriter creates a new console writer.
func NewConsoleWriter(opts ...ConsoleOption) *ConsoleWriter {
	w := &ConsoleWriter{
		out:       os.Stdout,
		err:       os.Stderr,
		color:     true,
		verbosity: ports.VerbosityNormal,
	}

	for _, opt := range opts {
		opt(w)
	}

	w.initColors()
	return w
}

// ConsoleOption configures the console writer.
type ConsoleOption func(*ConsoleWriter)

// WithOutput sets the output writer.
func WithOutput(out io.Writer) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.out = out
	}
}

// WithErrorOutput sets the error output writer.
func WithErrorOutput(err io.Writer) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.err = err
	}
}

// WithColor enables or disables colored output.
func WithColor(enabled bool) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.color = enabled
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v ports.Verbosity) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.verbosity = v
	}
}

// initColors initializes color functions based on color setting.
func (w *ConsoleWriter) initColors() {
	if w.color {
		w.red = color.New(color.FgRed).SprintFunc()
		w.green = color.New(color.FgGreen).SprintFunc()
		w.yellow = color.New(color.FgYellow).SprintFunc()
		w.cyan = color.New(color.FgCyan).SprintFunc()
		w.bold = color.New(color.Bold).SprintFunc()
		w.dim = color.New(color.Faint).SprintFunc()
	} else {
		noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
		w.red = noColor
		w.green = noColor
		w.yellow = noColor
		w.cyan = noColor
		w.bold = noColor
		w.dim = noColor
	}
}

// SetColor enables or disables colored output.
func (w *ConsoleWriter) SetColor(enabled bool) {
	w.color = enabled
	w.initColors()
}

// SetVerbosity sets the output detail level.
func (w *ConsoleWriter) SetVerbosity(v ports.Verbosity) {
	w.verbosity = v
}

// WriteReport writes the license map grouped by key, then the summary.
func (w *ConsoleWriter) WriteReport(r *report.Report) error {
	w.writeHeader(r)

	if w.verbosity != ports.VerbosityQuiet {
		w.writeLicenses(r)
	}

	w.writeSummary(r)
	return nil
}

// WriteProgress writes a progress message.
func (w *ConsoleWriter) WriteProgress(message string) error {
	if w.verbosity == ports.VerbosityQuiet {
		return nil
	}

	fmt.Fprintf(w.out, "%s %s\n", w.dim(">>>"), message)
	return nil
}

// WriteError writes an error message.
func (w *ConsoleWriter) WriteError(err error) error {
	fmt.Fprintf(w.err, "%s %s\n", w.red("ERROR:"), redact.Default.RedactString(err.Error()))
	return nil
}

// Flush ensures all output is written.
func (w *ConsoleWriter) Flush() error {
	return nil
}

func (w *ConsoleWriter) writeHeader(r *report.Report) {
	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "%s\n", w.bold("License Report"))
	fmt.Fprintf(w.out, "%s\n", strings.Repeat("=", 40))
	fmt.Fprintf(w.out, "Project: %s\n", w.cyan(r.Project.String()))

	if w.isVerbose() {
		fmt.Fprintf(w.out, "Modules: %d\n", len(r.Modules))
		for _, m := range r.Modules {
			fmt.Fprintf(w.out, "  %s\n", w.dim(m.String()))
		}
		fmt.Fprintf(w.out, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintln(w.out)
}

func (w *ConsoleWriter) writeLicenses(r *report.Report) {
	fmt.Fprintf(w.out, "%s\n", w.bold("Licenses"))
	fmt.Fprintf(w.out, "%s\n", strings.Repeat("-", 40))

	ordered := r.Licenses.ToLicenseMapOrderByName()
	for _, key := range ordered.Keys() {
		if key == licensemap.UnknownLicense {
			continue
		}
		members := ordered.Get(key)
		fmt.Fprintf(w.out, "%s %s\n", w.green(key), w.dim(fmt.Sprintf("(%d)", len(members))))
		for _, a := range members {
			w.writeArtifact(r, a)
		}
	}

	if unknown := r.Unknown(); len(unknown) > 0 {
		fmt.Fprintf(w.out, "%s %s\n", w.yellow(licensemap.UnknownLicense), w.dim(fmt.Sprintf("(%d)", len(unknown))))
		for _, a := range unknown {
			w.writeArtifact(r, a)
		}
	}
	fmt.Fprintln(w.out)
}

func (w *ConsoleWriter) writeArtifact(r *report.Report, a artifact.Artifact) {
	fmt.Fprintf(w.out, "  - %s\n", a.Label())
	if !w.isVerbose() {
		return
	}

	res, ok := r.Resolutions[a.ID()]
	if !ok {
		return
	}
	fmt.Fprintf(w.out, "      %s %s\n", w.dim("source:"), res.Source)
	if len(res.Raw) > 0 {
		fmt.Fprintf(w.out, "      %s %s\n", w.dim("found:"), strings.Join(res.Raw, ", "))
	}
	if w.verbosity == ports.VerbosityDebug && len(res.Matchers) > 0 {
		fmt.Fprintf(w.out, "      %s %s\n", w.dim("matchers:"), strings.Join(res.Matchers, ", "))
	}
}

func (w *ConsoleWriter) writeSummary(r *report.Report) {
	s := r.Summary()

	fmt.Fprintf(w.out, "%s\n", w.bold("Summary"))
	fmt.Fprintf(w.out, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(w.out, "Dependencies: %d\n", s.Artifacts)
	fmt.Fprintf(w.out, "Licenses:     %d\n", s.Licenses)

	if s.Unknown > 0 {
		fmt.Fprintf(w.out, "Unknown:      %s\n", w.yellow(s.Unknown))
	} else {
		fmt.Fprintf(w.out, "Unknown:      %s\n", w.green(0))
	}
	fmt.Fprintln(w.out)
}

func (w *ConsoleWriter) isVerbose() bool {
	return w.verbosity == ports.VerbosityVerbose || w.verbosity == ports.VerbosityDebug
}

var _ ports.ReportWriter = (*ConsoleWriter)(nil)
