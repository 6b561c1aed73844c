package ports

import (
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
)

// ReportWriter renders a resolution report.
type ReportWriter interface {
	// WriteReport writes the full report.
	WriteReport(r *report.Report) error

	// WriteProgress writes progress updates during resolution.
	WriteProgress(message string) error

	// WriteError writes error messages.
	WriteError(err error) error

	// Flush ensures all output is written.
	Flush() error
}

// MultiWriter writes to multiple destinations.
type MultiWriter struct {
	writers []ReportWriter
}

// NewMultiWriter creates a writer that writes to all provided writers.
func NewMultiWriter(writers ...ReportWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteReport writes to all writers.
func (m *MultiWriter) WriteReport(r *report.Report) error {
	for _, w := range m.writers {
		if err := w.WriteReport(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteProgress writes to all writers.
func (m *MultiWriter) WriteProgress(message string) error {
	for _, w := range m.writers {
		if err := w.WriteProgress(message); err != nil {
			return err
		}
	}
	return nil
}

// WriteError writes to all writers.
func (m *MultiWriter) WriteError(err error) error {
	for _, w := range m.writers {
		if writeErr := w.WriteError(err); writeErr != nil {
			return writeErr
		}
	}
	return nil
}

// Flush flushes all writers.
func (m *MultiWriter) Flush() error {
	for _, w := range m.writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// WriterFactory creates report writers from output settings.
type WriterFactory interface {
	// Create returns a writer for config. A non-empty Path writes to that
	// file; the returned writer then also implements io.Closer.
	Create(config OutputConfig) (ReportWriter, error)
}
