package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/makhin/gedsync/internal/domain"
)

// encodeJSON encodes v to w with the same two-space indent style the
// teacher's exporter uses for every JSON export.
func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (e *ReportExporter) exportJSON(cw *countingWriter, report domain.HighConfidenceReport) (*ExportResult, error) {
	if err := encodeJSON(cw, report); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return &ExportResult{
		BytesWritten:    cw.count,
		UpdatesExported: len(report.NodesToUpdate),
		AddsExported:    len(report.NodesToAdd),
	}, nil
}
