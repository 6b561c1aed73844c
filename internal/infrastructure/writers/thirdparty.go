package writers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
)

// ThirdPartyWriter writes the THIRD-PARTY text listing, one line per
// dependency:
//
//	     (Apache-2.0) (MIT) Guava (com.google.guava:guava:32.1.3-jre - https://github.com/google/guava)
type ThirdPartyWriter struct {
	out      io.Writer
	progress io.Writer
}

// ThirdPartyOption configures the third-party writer.
type ThirdPartyOption func(*ThirdPartyWriter)

// WithThirdPartyOutput sets the output writer.
func WithThirdPartyOutput(out io.Writer) ThirdPartyOption {
	return func(w *ThirdPartyWriter) {
		w.out = out
	}
}

// WithThirdPartyProgress sets where progress and errors go. Nil discards them.
func WithThirdPartyProgress(progress io.Writer) ThirdPartyOption {
	return func(w *ThirdPartyWriter) {
		w.progress = progress
	}
}

// NewThirdPartyWriter creates a new third-party writer.
func NewThirdPartyWriter(opts ...ThirdPartyOption) *ThirdPartyWriter {
	w := &ThirdPartyWriter{out: os.Stdout, progress: os.Stderr}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteReport writes the listing. An empty project gets a fixed line.
func (w *ThirdPartyWriter) WriteReport(r *report.Report) error {
	deps := r.Licenses.ToDependencyMap()
	if len(deps) == 0 {
		_, err := fmt.Fprintln(w.out, "The project has no dependencies.")
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nLists of %d third-party dependencies.\n", len(deps))
	for _, dl := range deps {
		sb.WriteString("     ")
		for _, l := range dl.Licenses {
			sb.WriteString("(")
			sb.WriteString(l)
			sb.WriteString(") ")
		}
		sb.WriteString(dl.Artifact.Label())
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w.out, sb.String())
	return err
}

// WriteProgress writes a progress message.
func (w *ThirdPartyWriter) WriteProgress(message string) error {
	if w.progress == nil {
		return nil
	}
	_, err := fmt.Fprintln(w.progress, message)
	return err
}

// WriteError writes an error message.
func (w *ThirdPartyWriter) WriteError(err error) error {
	if w.progress == nil {
		return nil
	}
	_, werr := fmt.Fprintf(w.progress, "ERROR: %s\n", err)
	return werr
}

// Flush ensures all output is written.
func (w *ThirdPartyWriter) Flush() error {
	return nil
}

var _ ports.ReportWriter = (*ThirdPartyWriter)(nil)
