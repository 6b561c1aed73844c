package writers

import (
	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
)

// SilentWriter discards all output, useful for programmatic contexts like MCP.
type SilentWriter struct{}

// NewSilentWriter creates a new silent writer.
func NewSilentWriter() *SilentWriter {
	return &SilentWriter{}
}

// WriteReport discards the report.
func (w *SilentWriter) WriteReport(*report.Report) error {
	return nil
}

// WriteProgress discards progress messages.
func (w *SilentWriter) WriteProgress(string) error {
	return nil
}

// WriteError discards error messages.
func (w *SilentWriter) WriteError(error) error {
	return nil
}

// Flush is a no-op for SilentWriter.
func (w *SilentWriter) Flush() error {
	return nil
}

var _ ports.ReportWriter = (*SilentWriter)(nil)
