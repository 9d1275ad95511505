// Package report implements HighConfidenceReportBuilder (§4.11): it turns
// the engine's final mappings into an actionable diff — field updates for
// persons already matched with confidence, and add-records for unmatched
// source persons anchored to whichever already-mapped relative is closest.
package report

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/treeindex"
)

// PhotoComparator decides whether two photo fingerprint sets describe the
// same underlying photo(s); the report never decodes images itself (§6,
// §9). internal/photo.Comparator satisfies this.
type PhotoComparator interface {
	Equivalent(a, b []string) bool
}

// Builder assembles a HighConfidenceReport from a completed comparison.
type Builder struct {
	SourceGraph *treeindex.TreeGraph
	DestGraph   *treeindex.TreeGraph
	Photo       PhotoComparator

	// ConfidenceThreshold is the score cutoff for including a mapping's
	// diff, and for a relative counting as "high-confidence" when choosing
	// an AddRecord's primary relation (§4.11).
	ConfidenceThreshold int
}

// NewBuilder constructs a Builder over the two tree graphs.
func NewBuilder(src, dst *treeindex.TreeGraph, photo PhotoComparator, confidenceThreshold int) *Builder {
	return &Builder{SourceGraph: src, DestGraph: dst, Photo: photo, ConfidenceThreshold: confidenceThreshold}
}

// Build produces the report from mappings.
func (b *Builder) Build(mappings domain.MappingTable) domain.HighConfidenceReport {
	var report domain.HighConfidenceReport

	for _, sourceID := range sortedPersonIDs(mappings) {
		m := mappings[sourceID]
		if m.Score < b.ConfidenceThreshold {
			continue
		}
		src, srcOK := b.SourceGraph.Persons[sourceID]
		dst, dstOK := b.DestGraph.Persons[m.DestID]
		if !srcOK || !dstOK {
			continue
		}
		diffs := b.compareFields(src, dst)
		if len(diffs) == 0 {
			continue
		}
		report.NodesToUpdate = append(report.NodesToUpdate, domain.UpdateRecord{
			SourceID:       sourceID,
			DestID:         m.DestID,
			Score:          m.Score,
			MatchedBy:      m.FoundVia,
			FieldsToUpdate: diffs,
		})
	}

	for _, id := range sortedPersonIDs(b.SourceGraph.Persons) {
		if _, mapped := mappings[id]; mapped {
			continue
		}
		p := b.SourceGraph.Persons[id]
		if !p.HasName() {
			continue
		}
		if rec, ok := b.buildAddRecord(p, mappings); ok {
			report.NodesToAdd = append(report.NodesToAdd, rec)
		}
	}

	return report
}

// sortedPersonIDs orders a map's uuid.UUID keys lexically by string form, so
// reports built from them are byte-identical across runs instead of
// reflecting Go's randomized map iteration order (§8 "Determinism").
func sortedPersonIDs[V any](m map[uuid.UUID]V) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// compareFields produces per-field diffs between an already-mapped source
// and destination person (§4.11: "name components, dates, places, gender,
// occupation, photo fingerprint via injected photo comparator").
func (b *Builder) compareFields(src, dst *domain.Person) []domain.FieldDiff {
	var diffs []domain.FieldDiff

	add := func(field, srcVal, dstVal string) {
		if srcVal != "" && srcVal != dstVal {
			diffs = append(diffs, domain.FieldDiff{Field: field, SourceValue: srcVal, DestValue: dstVal})
		}
	}

	add("FirstName", src.FirstName, dst.FirstName)
	add("MiddleName", src.MiddleName, dst.MiddleName)
	add("LastName", src.LastName, dst.LastName)
	add("MaidenName", src.MaidenName, dst.MaidenName)
	add("Suffix", src.Suffix, dst.Suffix)
	add("Nickname", src.Nickname, dst.Nickname)
	add("Occupation", src.Occupation, dst.Occupation)
	add("BirthPlace", src.BirthPlace, dst.BirthPlace)
	add("DeathPlace", src.DeathPlace, dst.DeathPlace)
	add("BurialPlace", src.BurialPlace, dst.BurialPlace)

	if diffStr := dateDiff(src.BirthDate, dst.BirthDate); diffStr != nil {
		diffs = append(diffs, domain.FieldDiff{Field: "BirthDate", SourceValue: *diffStr, DestValue: genDateString(dst.BirthDate)})
	}
	if diffStr := dateDiff(src.DeathDate, dst.DeathDate); diffStr != nil {
		diffs = append(diffs, domain.FieldDiff{Field: "DeathDate", SourceValue: *diffStr, DestValue: genDateString(dst.DeathDate)})
	}

	if src.Gender != "" && src.Gender != dst.Gender {
		diffs = append(diffs, domain.FieldDiff{Field: "Gender", SourceValue: string(src.Gender), DestValue: string(dst.Gender)})
	}

	if b.Photo != nil && !b.Photo.Equivalent(src.PhotoFingerprints, dst.PhotoFingerprints) && len(src.PhotoFingerprints) > 0 {
		diffs = append(diffs, domain.FieldDiff{
			Field:       "Photo",
			SourceValue: fmt.Sprintf("%d fingerprint(s)", len(src.PhotoFingerprints)),
			DestValue:   fmt.Sprintf("%d fingerprint(s)", len(dst.PhotoFingerprints)),
		})
	}

	return diffs
}

func genDateString(d *domain.GenDate) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func dateDiff(src, dst *domain.GenDate) *string {
	srcStr := genDateString(src)
	if srcStr == "" || srcStr == genDateString(dst) {
		return nil
	}
	return &srcStr
}

// relationCandidate is one mapped relative considered for an AddRecord's
// primary/additional relations.
type relationCandidate struct {
	relatedSourceID uuid.UUID
	relation        domain.RelationType
	familyID        *uuid.UUID
}

// buildAddRecord finds the category of high-confidence relatives to anchor
// p to — all spouses, else both parents, else all children, else siblings
// only if nothing else matched (§4.11) — and builds the AddRecord from it.
func (b *Builder) buildAddRecord(p *domain.Person, mappings domain.MappingTable) (domain.AddRecord, bool) {
	nav := treeindex.NewNavigator(b.SourceGraph)

	highConfidence := func(id uuid.UUID) (domain.PersonMapping, bool) {
		m, ok := mappings[id]
		if !ok || m.Score < b.ConfidenceThreshold {
			return domain.PersonMapping{}, false
		}
		return m, true
	}

	var candidates []relationCandidate

	for _, spouseID := range p.SpouseIDs {
		if _, ok := highConfidence(spouseID); ok {
			candidates = append(candidates, relationCandidate{relatedSourceID: spouseID, relation: domain.RelationSpouse})
		}
	}

	if len(candidates) == 0 {
		for _, parentID := range []*uuid.UUID{p.FatherID, p.MotherID} {
			if parentID == nil {
				continue
			}
			if _, ok := highConfidence(*parentID); ok {
				candidates = append(candidates, relationCandidate{
					relatedSourceID: *parentID,
					relation:        domain.RelationChild,
					familyID:        b.familyAsChildWithParent(nav, p.ID, *parentID),
				})
			}
		}
	}

	if len(candidates) == 0 {
		for _, childID := range p.ChildrenIDs {
			if _, ok := highConfidence(childID); ok {
				candidates = append(candidates, relationCandidate{relatedSourceID: childID, relation: domain.RelationParent})
			}
		}
	}

	if len(candidates) == 0 {
		for _, siblingID := range p.SiblingIDs {
			if _, ok := highConfidence(siblingID); ok {
				candidates = append(candidates, relationCandidate{relatedSourceID: siblingID, relation: domain.RelationSibling})
			}
		}
	}

	if len(candidates) == 0 {
		return domain.AddRecord{}, false
	}

	primary := candidates[0]
	rec := domain.AddRecord{
		Person: *p,
		PrimaryRelation: domain.RelationPointer{
			RelatedSourceID: primary.relatedSourceID,
			RelationType:    primary.relation,
		},
		SourceFamilyID:    primary.familyID,
		DepthFromExisting: 1,
	}
	for _, c := range candidates[1:] {
		rec.AdditionalRelations = append(rec.AdditionalRelations, domain.RelationPointer{
			RelatedSourceID: c.relatedSourceID,
			RelationType:    c.relation,
		})
	}
	return rec, true
}

// familyAsChildWithParent finds the family where personID is a child and
// parentID is a spouse, for AddRecord.SourceFamilyId (§4.11).
func (b *Builder) familyAsChildWithParent(nav *treeindex.Navigator, personID, parentID uuid.UUID) *uuid.UUID {
	for _, famID := range nav.FamiliesAsChild(personID) {
		fam := b.SourceGraph.Families[famID]
		if fam == nil {
			continue
		}
		if fam.HasSpouse(parentID) {
			id := famID
			return &id
		}
	}
	return nil
}
