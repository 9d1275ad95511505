package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/makhin/gedsync/internal/domain"
)

var updateHeader = []string{"source_id", "dest_id", "score", "matched_by", "fields_changed"}
var addHeader = []string{"person_id", "first_name", "last_name", "primary_relation_type", "primary_related_source_id", "source_family_id", "depth_from_existing", "additional_relations"}

// exportCSV writes report.NodesToUpdate and report.NodesToAdd as two
// header-led tables in one CSV stream: one row per UpdateRecord, one row
// per AddRecord (each record's variable-length detail — field diffs,
// additional relations — flattened into a single semicolon-joined cell).
func (e *ReportExporter) exportCSV(cw *countingWriter, report domain.HighConfidenceReport) (*ExportResult, error) {
	w := csv.NewWriter(cw)
	defer w.Flush()

	if err := w.Write(updateHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, u := range report.NodesToUpdate {
		if err := w.Write(updateRow(u)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if err := w.Write(nil); err != nil {
		return nil, fmt.Errorf("failed to write CSV separator: %w", err)
	}
	if err := w.Write(addHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, a := range report.NodesToAdd {
		if err := w.Write(addRow(a)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV write error: %w", err)
	}

	return &ExportResult{
		BytesWritten:    cw.count,
		UpdatesExported: len(report.NodesToUpdate),
		AddsExported:    len(report.NodesToAdd),
	}, nil
}

func updateRow(u domain.UpdateRecord) []string {
	diffs := make([]string, 0, len(u.FieldsToUpdate))
	for _, d := range u.FieldsToUpdate {
		diffs = append(diffs, fmt.Sprintf("%s:%s->%s", d.Field, d.SourceValue, d.DestValue))
	}
	return []string{
		u.SourceID.String(),
		u.DestID.String(),
		strconv.Itoa(u.Score),
		string(u.MatchedBy),
		strings.Join(diffs, "; "),
	}
}

func addRow(a domain.AddRecord) []string {
	familyID := ""
	if a.SourceFamilyID != nil {
		familyID = a.SourceFamilyID.String()
	}
	additional := make([]string, 0, len(a.AdditionalRelations))
	for _, r := range a.AdditionalRelations {
		additional = append(additional, fmt.Sprintf("%s:%s", r.RelationType, r.RelatedSourceID))
	}
	return []string{
		a.Person.ID.String(),
		a.Person.FirstName,
		a.Person.LastName,
		string(a.PrimaryRelation.RelationType),
		a.PrimaryRelation.RelatedSourceID.String(),
		familyID,
		strconv.Itoa(a.DepthFromExisting),
		strings.Join(additional, "; "),
	}
}
