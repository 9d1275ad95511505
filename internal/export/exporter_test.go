package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
)

func sampleReport() domain.HighConfidenceReport {
	srcID, destID, familyID := uuid.New(), uuid.New(), uuid.New()
	return domain.HighConfidenceReport{
		NodesToUpdate: []domain.UpdateRecord{{
			SourceID:  srcID,
			DestID:    destID,
			Score:     92,
			MatchedBy: domain.RelationAnchor,
			FieldsToUpdate: []domain.FieldDiff{
				{Field: "Occupation", SourceValue: "farmer", DestValue: "blacksmith"},
			},
		}},
		NodesToAdd: []domain.AddRecord{{
			Person: domain.Person{ID: uuid.New(), FirstName: "Unmatched", LastName: "Doe"},
			PrimaryRelation: domain.RelationPointer{
				RelatedSourceID: srcID,
				RelationType:    domain.RelationChild,
			},
			SourceFamilyID:    &familyID,
			DepthFromExisting: 1,
		}},
	}
}

func TestReportExporter_ExportJSON(t *testing.T) {
	var buf bytes.Buffer
	e := NewReportExporter()
	result, err := e.Export(&buf, sampleReport(), ExportOptions{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.UpdatesExported != 1 || result.AddsExported != 1 {
		t.Errorf("expected 1 update and 1 add, got %+v", result)
	}
	if !strings.Contains(buf.String(), "\"fieldsToUpdate\"") {
		t.Errorf("expected JSON to contain the UpdateRecord shape, got %s", buf.String())
	}
	if result.BytesWritten != int64(buf.Len()) {
		t.Errorf("expected BytesWritten %d to match buffer length %d", result.BytesWritten, buf.Len())
	}
}

func TestReportExporter_ExportCSV(t *testing.T) {
	var buf bytes.Buffer
	e := NewReportExporter()
	result, err := e.Export(&buf, sampleReport(), ExportOptions{Format: FormatCSV})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.UpdatesExported != 1 || result.AddsExported != 1 {
		t.Errorf("expected 1 update and 1 add, got %+v", result)
	}

	// The two tables have different column counts, and csv.Reader skips
	// blank lines, so the separator is checked on the raw text.
	reader := csv.NewReader(strings.NewReader(buf.String()))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected update header+row, add header+row (4 records), got %d: %+v", len(rows), rows)
	}
	if rows[0][0] != "source_id" {
		t.Errorf("expected update header first, got %+v", rows[0])
	}
	if lines := strings.Split(buf.String(), "\n"); len(lines) < 3 || lines[2] != "" {
		t.Errorf("expected a blank separator line after the update row, got %q", buf.String())
	}
	if rows[2][0] != "person_id" {
		t.Errorf("expected add header, got %+v", rows[2])
	}
	if !strings.Contains(rows[1][4], "Occupation:farmer->blacksmith") {
		t.Errorf("expected the field diff in the update row, got %q", rows[1][4])
	}
}

func TestReportExporter_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	e := NewReportExporter()
	if _, err := e.Export(&buf, sampleReport(), ExportOptions{Format: "xml"}); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestResultExporter_ExportJSON(t *testing.T) {
	var buf bytes.Buffer
	e := NewResultExporter()
	result := domain.CompareResult{
		AnchorSourceID: uuid.New(),
		AnchorDestID:   uuid.New(),
		Mappings:       domain.MappingTable{},
	}
	stats, err := e.ExportJSON(&buf, result)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if stats.BytesWritten != int64(buf.Len()) {
		t.Errorf("expected BytesWritten %d to match buffer length %d", stats.BytesWritten, buf.Len())
	}
	if !strings.Contains(buf.String(), "\"anchorSourceId\"") {
		t.Errorf("expected JSON to contain the CompareResult shape, got %s", buf.String())
	}
}
