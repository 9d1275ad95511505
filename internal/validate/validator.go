// Package validate implements WaveMappingValidator: it gates every
// proposed mapping against gender, dates, duplicates, and family
// consistency before the engine inserts it (§4.7).
package validate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/treeindex"
)

// Validator runs a proposed PersonMapping through the ordered checks of
// §4.7 and reports every issue, passing or not.
type Validator struct {
	SourceGraph *treeindex.TreeGraph
	DestGraph   *treeindex.TreeGraph
}

// NewValidator builds a Validator over the two tree graphs.
func NewValidator(src, dst *treeindex.TreeGraph) *Validator {
	return &Validator{SourceGraph: src, DestGraph: dst}
}

// Validate checks proposed against the current mapping snapshot. accepted
// is false iff any High-severity issue fired (§4.7 "a mapping passes iff
// no High issue fires").
func (v *Validator) Validate(proposed domain.PersonMapping, mappings domain.MappingTable) (accepted bool, issues []domain.ValidationIssue) {
	accepted = true
	srcID, destID := proposed.SourceID, proposed.DestID

	reject := func(kind domain.ValidationKind, msg string) {
		issues = append(issues, domain.ValidationIssue{
			Severity: domain.SeverityHigh, Kind: kind,
			SourceID: &srcID, DestID: &destID, Message: msg,
		})
		accepted = false
	}
	medium := func(kind domain.ValidationKind, msg string) {
		issues = append(issues, domain.ValidationIssue{
			Severity: domain.SeverityMedium, Kind: kind,
			SourceID: &srcID, DestID: &destID, Message: msg,
		})
	}

	sp, srcOK := v.SourceGraph.Persons[srcID]
	if !srcOK {
		reject(domain.KindInvalidSourceID, "source person not found in source tree")
	}
	dp, destOK := v.DestGraph.Persons[destID]
	if !destOK {
		reject(domain.KindInvalidDestID, "destination person not found in destination tree")
	}
	if !srcOK || !destOK {
		return accepted, issues
	}

	if sp.Gender.Conflicts(dp.Gender) {
		reject(domain.KindGenderMismatch, fmt.Sprintf("source gender %s conflicts with destination gender %s", sp.Gender, dp.Gender))
	}

	checkYears(sp.BirthYear(), dp.BirthYear(), domain.KindBirthYearMismatch, "birth", reject, medium)
	checkYears(sp.DeathYear(), dp.DeathYear(), domain.KindDeathYearMismatch, "death", reject, medium)

	for otherSrc, m := range mappings {
		if otherSrc != srcID && m.DestID == destID {
			reject(domain.KindDuplicateMapping, fmt.Sprintf("destination %s already mapped from source %s", destID, otherSrc))
			break
		}
	}

	if proposed.Score < 40 {
		medium(domain.KindLowMatchScore, fmt.Sprintf("score %d below 40", proposed.Score))
	}

	for _, reason := range v.familyInconsistencies(sp, dp, mappings) {
		medium(domain.KindFamilyInconsistency, reason)
	}

	return accepted, issues
}

func checkYears(srcYear, destYear *int, kind domain.ValidationKind, label string, reject, medium func(domain.ValidationKind, string)) {
	if srcYear == nil || destYear == nil {
		return
	}
	diff := *srcYear - *destYear
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff > 15:
		reject(kind, fmt.Sprintf("%s year differs by %d years (>15)", label, diff))
	case diff > 5:
		medium(kind, fmt.Sprintf("%s year differs by %d years (>5)", label, diff))
	}
}

// familyInconsistencies implements §4.7.6: for every already-mapped
// relative, the proposed destination must occupy the matching slot
// relative to the existing mapping's destination.
func (v *Validator) familyInconsistencies(sp, dp *domain.Person, mappings domain.MappingTable) []string {
	var reasons []string

	if sp.FatherID != nil {
		if m, ok := mappings[*sp.FatherID]; ok {
			if dp.FatherID == nil || *dp.FatherID != m.DestID {
				reasons = append(reasons, "mapped father does not match destination father")
			}
		}
	}
	if sp.MotherID != nil {
		if m, ok := mappings[*sp.MotherID]; ok {
			if dp.MotherID == nil || *dp.MotherID != m.DestID {
				reasons = append(reasons, "mapped mother does not match destination mother")
			}
		}
	}
	for _, sSpouse := range sp.SpouseIDs {
		m, ok := mappings[sSpouse]
		if !ok {
			continue
		}
		if !containsID(dp.SpouseIDs, m.DestID) {
			reasons = append(reasons, "mapped spouse is not among destination spouses")
		}
	}
	for _, sChild := range sp.ChildrenIDs {
		m, ok := mappings[sChild]
		if !ok {
			continue
		}
		if !containsID(dp.ChildrenIDs, m.DestID) {
			reasons = append(reasons, "mapped child is not among destination children")
		}
	}
	return reasons
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
