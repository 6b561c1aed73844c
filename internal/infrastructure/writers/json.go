package writers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/domain/licensemap"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
	"github.com/felixgeelhaar/licensemap/pkg/redact"
)

// JSONWriter writes JSON-formatted output. The report goes to out;
// progress and error events go to events as one object per line.
type JSONWriter struct {
	out      io.Writer
	events   io.Writer
	pretty   bool
	newID    func() string
	redactor *redact.Redactor
}

// JSONOption configures the JSON writer.
type JSONOption func(*JSONWriter)

// WithJSONOutput sets the output writer.
func WithJSONOutput(out io.Writer) JSONOption {
	return func(w *JSONWriter) {
		w.out = out
	}
}

// WithJSONEvents sets where progress and error events are written.
func WithJSONEvents(events io.Writer) JSONOption {
	return func(w *JSONWriter) {
		w.events = events
	}
}

// WithPrettyPrint enables pretty-printed JSON.
func WithPrettyPrint(enabled bool) JSONOption {
	return func(w *JSONWriter) {
		w.pretty = enabled
	}
}

// WithReportID fixes the generator for report ids.
func WithReportID(fn func() string) JSONOption {
	return func(w *JSONWriter) {
		w.newID = fn
	}
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(opts ...JSONOption) *JSONWriter {
	w := &JSONWriter{
		out:      os.Stdout,
		events:   os.Stderr,
		newID:    uuid.NewString,
		redactor: redact.Default,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Close closes any open file handles.
func (w *JSONWriter) Close() error {
	if closer, ok := w.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// WriteReport writes the report as one JSON document.
func (w *JSONWriter) WriteReport(r *report.Report) error {
	return w.writeJSON(w.out, w.buildOutput(r))
}

// WriteProgress writes a progress event.
func (w *JSONWriter) WriteProgress(message string) error {
	return w.writeJSON(w.events, JSONEvent{
		Type:      "progress",
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// WriteError writes an error event.
func (w *JSONWriter) WriteError(err error) error {
	return w.writeJSON(w.events, JSONEvent{
		Type:      "error",
		Message:   w.redactor.RedactString(err.Error()),
		Timestamp: time.Now().UTC(),
	})
}

// Flush ensures all output is written.
func (w *JSONWriter) Flush() error {
	return nil
}

func (w *JSONWriter) buildOutput(r *report.Report) JSONOutput {
	out := JSONOutput{
		Version:     "1",
		ReportID:    w.newID(),
		Project:     r.Project.String(),
		GeneratedAt: r.GeneratedAt,
		Summary:     r.Summary(),
		Licenses:    []JSONLicense{},
	}
	for _, m := range r.Modules {
		out.Modules = append(out.Modules, m.String())
	}

	ordered := r.Licenses.ToLicenseMapOrderByName()
	for _, key := range ordered.Keys() {
		l := JSONLicense{Key: key, Unknown: key == licensemap.UnknownLicense}
		for _, a := range ordered.Get(key) {
			l.Artifacts = append(l.Artifacts, a.ID())
		}
		out.Licenses = append(out.Licenses, l)
	}

	for _, dl := range r.Licenses.ToDependencyMap() {
		a := dl.Artifact
		d := JSONDependency{
			ID:       a.ID(),
			Name:     a.DisplayName(),
			URL:      w.redactor.RedactURL(a.URL),
			Scope:    a.Scope,
			PURL:     a.PURL(),
			Licenses: dl.Licenses,
		}
		if res, ok := r.Resolutions[a.ID()]; ok {
			d.Source = string(res.Source)
			d.Declared = res.Raw
			d.Matchers = res.Matchers
		}
		if ext, ok := r.Extended[a.ID()]; ok {
			d.Extended = w.buildExtended(ext)
		}
		out.Dependencies = append(out.Dependencies, d)
	}
	for _, a := range r.Unknown() {
		out.Unknown = append(out.Unknown, a.ID())
	}
	return out
}

func (w *JSONWriter) buildExtended(e *infofile.ExtendedInfo) *JSONExtended {
	je := &JSONExtended{
		InceptionYear:        e.InceptionYear,
		Organization:         e.Organization.Name,
		ImplementationVendor: e.ImplementationVendor,
		BundleVendor:         e.BundleVendor,
		BundleLicense:        e.BundleLicense,
		SCM:                  w.redactor.RedactURL(e.SCM.URL),
	}
	for _, d := range e.Developers {
		name := d.Name
		if name == "" {
			name = d.ID
		}
		je.Developers = append(je.Developers, name)
	}
	for _, f := range e.InfoFiles {
		je.InfoFiles = append(je.InfoFiles, JSONInfoFile{
			Name:      f.FileName(),
			Type:      f.Type().String(),
			Copyright: f.CopyrightLines(),
		})
	}
	if je.isEmpty() {
		return nil
	}
	return je
}

func (w *JSONWriter) writeJSON(dst io.Writer, v interface{}) error {
	var data []byte
	var err error

	if w.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(dst, string(data))
	return err
}

// JSONOutput is the complete JSON output structure.
type JSONOutput struct {
	Version      string           `json:"version"`
	ReportID     string           `json:"report_id"`
	Project      string           `json:"project"`
	Modules      []string         `json:"modules,omitempty"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Summary      report.Summary   `json:"summary"`
	Licenses     []JSONLicense    `json:"licenses"`
	Dependencies []JSONDependency `json:"dependencies"`
	Unknown      []string         `json:"unknown,omitempty"`
}

// JSONLicense is one license key and its artifacts.
type JSONLicense struct {
	Key       string   `json:"key"`
	Unknown   bool     `json:"unknown,omitempty"`
	Artifacts []string `json:"artifacts"`
}

// JSONDependency is one artifact with its keys and provenance.
type JSONDependency struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	URL      string        `json:"url,omitempty"`
	Scope    string        `json:"scope,omitempty"`
	PURL     string        `json:"purl,omitempty"`
	Licenses []string      `json:"licenses"`
	Source   string        `json:"source,omitempty"`
	Declared []string      `json:"declared,omitempty"`
	Matchers []string      `json:"matchers,omitempty"`
	Extended *JSONExtended `json:"extended,omitempty"`
}

// JSONExtended carries project metadata and info files.
type JSONExtended struct {
	InceptionYear        string         `json:"inception_year,omitempty"`
	Organization         string         `json:"organization,omitempty"`
	Developers           []string       `json:"developers,omitempty"`
	SCM                  string         `json:"scm,omitempty"`
	ImplementationVendor string         `json:"implementation_vendor,omitempty"`
	BundleVendor         string         `json:"bundle_vendor,omitempty"`
	BundleLicense        string         `json:"bundle_license,omitempty"`
	InfoFiles            []JSONInfoFile `json:"info_files,omitempty"`
}

func (e *JSONExtended) isEmpty() bool {
	return e.InceptionYear == "" && e.Organization == "" && len(e.Developers) == 0 &&
		e.SCM == "" && e.ImplementationVendor == "" && e.BundleVendor == "" &&
		e.BundleLicense == "" && len(e.InfoFiles) == 0
}

// JSONInfoFile is a LICENSE or NOTICE file found in an artifact.
type JSONInfoFile struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Copyright []string `json:"copyright,omitempty"`
}

// JSONEvent is a progress or error line.
type JSONEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var _ ports.ReportWriter = (*JSONWriter)(nil)
