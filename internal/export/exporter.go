// Package export renders a HighConfidenceReport (and, for JSON, a full
// CompareResult) to an io.Writer in JSON or CSV. Adapted from the
// teacher's internal/exporter/{csv,json,exporter}.go, retargeted from
// querying a read-model store to serializing the engine's own in-memory
// output (§6 "Outputs: CompareResult and HighConfidenceReport as JSON";
// supplemented feature: CSV export of the report).
package export

import (
	"fmt"
	"io"

	"github.com/makhin/gedsync/internal/domain"
)

// Format specifies the export output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ExportOptions configures an export operation.
type ExportOptions struct {
	Format Format
}

// ExportResult contains statistics from an export operation.
type ExportResult struct {
	BytesWritten    int64
	UpdatesExported int
	AddsExported    int
}

// countingWriter wraps an io.Writer and counts bytes written.
type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

// ReportExporter writes a HighConfidenceReport in the requested format.
type ReportExporter struct{}

// NewReportExporter constructs a ReportExporter.
func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// Export writes report to w according to opts.
func (e *ReportExporter) Export(w io.Writer, report domain.HighConfidenceReport, opts ExportOptions) (*ExportResult, error) {
	cw := &countingWriter{w: w}
	switch opts.Format {
	case FormatJSON:
		return e.exportJSON(cw, report)
	case FormatCSV:
		return e.exportCSV(cw, report)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}
}

// ResultExporter writes a full CompareResult as JSON. CSV has no tabular
// rendering for CompareResult's nested mapping table and level stats, so
// it is JSON-only, mirroring the teacher's "entity type 'all' is not
// supported for CSV export" restriction on its own tree-wide export.
type ResultExporter struct{}

// NewResultExporter constructs a ResultExporter.
func NewResultExporter() *ResultExporter {
	return &ResultExporter{}
}

// ExportJSON writes result to w as indented JSON.
func (e *ResultExporter) ExportJSON(w io.Writer, result domain.CompareResult) (*ExportResult, error) {
	cw := &countingWriter{w: w}
	if err := encodeJSON(cw, result); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return &ExportResult{BytesWritten: cw.count}, nil
}
