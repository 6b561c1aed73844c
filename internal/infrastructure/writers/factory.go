package writers

import (
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/pkg/pathutil"
)

// Factory creates writers based on configuration.
type Factory struct {
	stdout io.Writer
	stderr io.Writer
}

// FactoryOption configures the factory.
type FactoryOption func(*Factory)

// WithStreams replaces stdout and stderr.
func WithStreams(stdout, stderr io.Writer) FactoryOption {
	return func(f *Factory) {
		f.stdout = stdout
		f.stderr = stderr
	}
}

// NewFactory creates a new writer factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a writer for config.Format. A non-empty config.Path
// sends the report to that file.
func (f *Factory) Create(config ports.OutputConfig) (ports.ReportWriter, error) {
	if config.Path != "" {
		return f.CreateToFile(config)
	}
	return f.create(config, f.stdout)
}

func (f *Factory) create(config ports.OutputConfig, out io.Writer) (ports.ReportWriter, error) {
	switch config.Format {
	case ports.OutputFormatConsole, "":
		return f.CreateConsole(out, config), nil
	case ports.OutputFormatJSON:
		return f.CreateJSON(out, true), nil
	case ports.OutputFormatThirdParty:
		return f.CreateThirdParty(out), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", config.Format)
	}
}

// CreateConsole returns a console writer.
func (f *Factory) CreateConsole(out io.Writer, config ports.OutputConfig) *ConsoleWriter {
	return NewConsoleWriter(
		WithOutput(out),
		WithErrorOutput(f.stderr),
		WithColor(config.Color),
		WithVerbosity(config.Verbosity),
	)
}

// CreateJSON returns a JSON writer.
func (f *Factory) CreateJSON(out io.Writer, pretty bool) *JSONWriter {
	return NewJSONWriter(
		WithJSONOutput(out),
		WithJSONEvents(f.stderr),
		WithPrettyPrint(pretty),
	)
}

// CreateThirdParty returns a THIRD-PARTY text writer.
func (f *Factory) CreateThirdParty(out io.Writer) *ThirdPartyWriter {
	return NewThirdPartyWriter(
		WithThirdPartyOutput(out),
		WithThirdPartyProgress(f.stderr),
	)
}

// CreateToFile creates a writer that outputs to config.Path.
func (f *Factory) CreateToFile(config ports.OutputConfig) (ports.ReportWriter, error) {
	// Validate path to prevent path traversal attacks
	cleanPath, err := pathutil.ValidatePath(config.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid output path: %w", err)
	}

	switch config.Format {
	case ports.OutputFormatConsole, ports.OutputFormatJSON, ports.OutputFormatThirdParty, "":
	default:
		return nil, fmt.Errorf("unsupported format for file output: %s", config.Format)
	}

	file, err := os.Create(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	// No colors in file output
	config.Color = false
	w, err := f.create(config, file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileWriter{ReportWriter: w, file: file}, nil
}

// fileWriter wraps a writer with file closing.
type fileWriter struct {
	ports.ReportWriter
	file *os.File
}

// Close closes the file.
func (w *fileWriter) Close() error {
	return w.file.Close()
}

// Ensure Factory implements the interface.
var _ ports.WriterFactory = (*Factory)(nil)
