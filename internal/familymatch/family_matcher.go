// Package familymatch implements FamilyMatcher (§4.5) and
// FamilyMemberMatcher (§4.6): aligning a source family with its best
// destination counterpart, then matching spouses and children within the
// aligned pair.
package familymatch

import (
	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/treeindex"
)

// CandidateLog is the per-candidate log record FamilyMatcher emits
// regardless of outcome (§4.5 "Emit a per-candidate log record").
type CandidateLog struct {
	CandidateFamilyID uuid.UUID
	Structure         float64
	HusbandScore      float64
	WifeScore         float64
	Combined          float64
	Conflict          bool
	ConflictReason    string
}

// FamilyMatcher chooses the destination family that best aligns with a
// source family under the current mappings.
type FamilyMatcher struct {
	SourceGraph *treeindex.TreeGraph
	DestGraph   *treeindex.TreeGraph
	Matcher     *fuzzy.Matcher
}

// NewFamilyMatcher builds a FamilyMatcher over the two tree graphs.
func NewFamilyMatcher(src, dst *treeindex.TreeGraph, m *fuzzy.Matcher) *FamilyMatcher {
	return &FamilyMatcher{SourceGraph: src, DestGraph: dst, Matcher: m}
}

// Match picks the best non-conflicting destination family for sourceFamily
// out of candidates, given the mappings known so far. Returns ok=false if
// no non-conflicting candidate exists. The log slice always has one entry
// per candidate, in the order given (§4.5).
func (fm *FamilyMatcher) Match(sourceFamily *domain.Family, candidates []*domain.Family, mappings domain.MappingTable) (best *domain.Family, log []CandidateLog, ok bool) {
	var bestScore float64 = -1

	for _, cand := range candidates {
		structure, conflict, reason := fm.structureScore(sourceFamily, cand, mappings)
		husbandScore, wifeScore, pairedHusband, pairedWife := fm.spouseScores(sourceFamily, cand, mappings)

		combined := structure
		switch {
		case pairedHusband && pairedWife:
			combined = 0.4*structure + 0.3*husbandScore + 0.3*wifeScore
		case pairedHusband:
			combined = 0.4*structure + 0.6*husbandScore
		case pairedWife:
			combined = 0.4*structure + 0.6*wifeScore
		}

		log = append(log, CandidateLog{
			CandidateFamilyID: cand.ID,
			Structure:         structure,
			HusbandScore:      husbandScore,
			WifeScore:         wifeScore,
			Combined:          combined,
			Conflict:          conflict,
			ConflictReason:    reason,
		})

		if conflict {
			continue
		}
		if combined > bestScore {
			bestScore = combined
			best = cand
			ok = true
		}
	}
	return best, log, ok
}

// structureScore implements §4.5's structural-score and conflict rules.
func (fm *FamilyMatcher) structureScore(src, cand *domain.Family, mappings domain.MappingTable) (score float64, conflict bool, reason string) {
	checkSpouse := func(srcSpouse *uuid.UUID, candSpouse *uuid.UUID) {
		if srcSpouse == nil {
			return
		}
		m, mapped := mappings[*srcSpouse]
		switch {
		case mapped && candSpouse != nil && m.DestID == *candSpouse:
			score += 50
		case mapped && candSpouse != nil && m.DestID != *candSpouse:
			conflict = true
			reason = "mapped spouse points outside candidate family"
		case mapped && candSpouse == nil:
			conflict = true
			reason = "mapped spouse has no destination slot in candidate family"
		case !mapped && candSpouse != nil:
			score += 10
		}
	}
	checkSpouse(src.HusbandID, cand.HusbandID)
	checkSpouse(src.WifeID, cand.WifeID)

	candChildren := make(map[uuid.UUID]bool, len(cand.ChildIDs))
	for _, c := range cand.ChildIDs {
		candChildren[c] = true
	}
	for _, c := range src.ChildIDs {
		m, mapped := mappings[c]
		if !mapped {
			continue
		}
		if candChildren[m.DestID] {
			score += 20
		} else {
			conflict = true
			reason = "mapped child points outside candidate family"
		}
	}
	return score, conflict, reason
}

// spouseScores computes the personal fuzzy score for each spouse slot that
// is unmapped on one side and filled on both (§4.5 "personal spouse
// score").
func (fm *FamilyMatcher) spouseScores(src, cand *domain.Family, mappings domain.MappingTable) (husband, wife float64, pairedHusband, pairedWife bool) {
	if src.HusbandID != nil && cand.HusbandID != nil {
		if _, mapped := mappings[*src.HusbandID]; !mapped {
			s := fm.SourceGraph.Persons[*src.HusbandID]
			d := fm.DestGraph.Persons[*cand.HusbandID]
			if s != nil && d != nil {
				husband = float64(fm.Matcher.Compare(s, d).Score)
				pairedHusband = true
			}
		}
	}
	if src.WifeID != nil && cand.WifeID != nil {
		if _, mapped := mappings[*src.WifeID]; !mapped {
			s := fm.SourceGraph.Persons[*src.WifeID]
			d := fm.DestGraph.Persons[*cand.WifeID]
			if s != nil && d != nil {
				wife = float64(fm.Matcher.Compare(s, d).Score)
				pairedWife = true
			}
		}
	}
	return husband, wife, pairedHusband, pairedWife
}
