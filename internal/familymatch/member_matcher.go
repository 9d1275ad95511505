package familymatch

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/threshold"
	"github.com/makhin/gedsync/internal/treeindex"
)

// MemberMatcher matches spouses and the children-set of two aligned
// families (§4.6).
type MemberMatcher struct {
	SourceGraph *treeindex.TreeGraph
	DestGraph   *treeindex.TreeGraph
	Matcher     *fuzzy.Matcher
	Thresholds  *threshold.Calculator

	// compareFn defaults to Matcher.Compare(...).Score; tests substitute a
	// stub to exercise the greedy-pairing logic against literal spec
	// scores (§8 scenario S3) without depending on the default matcher's
	// exact weighting.
	compareFn func(a, b *domain.Person) int
}

// NewMemberMatcher builds a MemberMatcher.
func NewMemberMatcher(src, dst *treeindex.TreeGraph, m *fuzzy.Matcher, th *threshold.Calculator) *MemberMatcher {
	mm := &MemberMatcher{SourceGraph: src, DestGraph: dst, Matcher: m, Thresholds: th}
	mm.compareFn = func(a, b *domain.Person) int { return mm.Matcher.Compare(a, b).Score }
	return mm
}

// Proposal is one candidate PersonMapping the caller still must run
// through the validator before inserting (§4.6 "none yet inserted into the
// table").
type Proposal struct {
	Mapping domain.PersonMapping
}

// MatchSpouses proposes spouse mappings for the husband and wife slots of
// an aligned family pair (§4.6.1).
func (mm *MemberMatcher) MatchSpouses(srcFam, destFam *domain.Family, mappings domain.MappingTable, foundFrom uuid.UUID, level int, now time.Time) []Proposal {
	var out []Proposal

	propose := func(srcID, destID *uuid.UUID) {
		if srcID == nil || destID == nil {
			return
		}
		if _, mapped := mappings[*srcID]; mapped {
			return
		}
		s := mm.SourceGraph.Persons[*srcID]
		d := mm.DestGraph.Persons[*destID]
		if s == nil || d == nil {
			return
		}
		score := mm.compareFn(s, d)
		if score < mm.Thresholds.Spouse(1) {
			return
		}
		out = append(out, Proposal{Mapping: domain.PersonMapping{
			SourceID:          *srcID,
			DestID:            *destID,
			Score:             score,
			Level:             level,
			FoundVia:          domain.RelationSpouse,
			FoundInFamilyID:   &destFam.ID,
			FoundFromPersonID: &foundFrom,
			FoundAt:           now,
		}})
	}

	propose(srcFam.HusbandID, destFam.HusbandID)
	propose(srcFam.WifeID, destFam.WifeID)
	return out
}

type childScore struct {
	srcIdx, destIdx int
	srcID, destID   uuid.UUID
	score           float64
}

// MatchChildren proposes child mappings between two aligned families using
// the combined-score comparator and greedy pairing (§4.6.2).
func (mm *MemberMatcher) MatchChildren(srcFam, destFam *domain.Family, mappings domain.MappingTable, foundFrom uuid.UUID, level int, now time.Time) []Proposal {
	destMapped := make(map[uuid.UUID]bool)
	for _, m := range mappings {
		destMapped[m.DestID] = true
	}

	var srcChildren, destChildren []uuid.UUID
	for _, c := range srcFam.ChildIDs {
		if _, mapped := mappings[c]; !mapped {
			srcChildren = append(srcChildren, c)
		}
	}
	for _, c := range destFam.ChildIDs {
		if !destMapped[c] {
			destChildren = append(destChildren, c)
		}
	}

	var scored []childScore
	for i, sid := range srcChildren {
		sp := mm.SourceGraph.Persons[sid]
		if sp == nil {
			continue
		}
		for j, did := range destChildren {
			dp := mm.DestGraph.Persons[did]
			if dp == nil {
				continue
			}
			if sp.Gender.Conflicts(dp.Gender) {
				continue
			}
			score := mm.childCombinedScore(sp, dp, i, j)
			if score <= 0 {
				continue
			}
			scored = append(scored, childScore{srcIdx: i, destIdx: j, srcID: sid, destID: did, score: score})
		}
	}

	sort.Slice(scored, func(a, b int) bool {
		if scored[a].score != scored[b].score {
			return scored[a].score > scored[b].score
		}
		orderDeltaA := absInt(scored[a].srcIdx - scored[a].destIdx)
		orderDeltaB := absInt(scored[b].srcIdx - scored[b].destIdx)
		if orderDeltaA != orderDeltaB {
			return orderDeltaA < orderDeltaB
		}
		yearDeltaA := mm.yearDelta(scored[a].srcID, scored[a].destID)
		yearDeltaB := mm.yearDelta(scored[b].srcID, scored[b].destID)
		if yearDeltaA != yearDeltaB {
			return yearDeltaA < yearDeltaB
		}
		return scored[a].destID.String() < scored[b].destID.String()
	})

	usedSrc := make(map[uuid.UUID]bool)
	usedDest := make(map[uuid.UUID]bool)
	childThreshold := mm.Thresholds.Child(minInt(len(srcChildren), len(destChildren)))

	var out []Proposal
	for _, sc := range scored {
		if usedSrc[sc.srcID] || usedDest[sc.destID] {
			continue
		}
		if sc.score < float64(childThreshold) {
			continue
		}
		usedSrc[sc.srcID] = true
		usedDest[sc.destID] = true
		out = append(out, Proposal{Mapping: domain.PersonMapping{
			SourceID:          sc.srcID,
			DestID:            sc.destID,
			Score:             int(sc.score + 0.5),
			Level:             level,
			FoundVia:          domain.RelationChild,
			FoundInFamilyID:   &destFam.ID,
			FoundFromPersonID: &foundFrom,
			FoundAt:           now,
		}})
	}
	return out
}

// childCombinedScore is the reduced comparator §4.6.2 specifies: 60% of
// FuzzyMatcher score plus birth-order proximity and birth-year bonuses.
func (mm *MemberMatcher) childCombinedScore(s, d *domain.Person, srcIdx, destIdx int) float64 {
	fuzzyScore := float64(mm.compareFn(s, d))
	score := 0.6 * fuzzyScore

	switch delta := absInt(srcIdx - destIdx); {
	case delta == 0, delta == 1:
		score += 10
	case delta == 2:
		score += 5
	}

	if s.BirthYear() != nil && d.BirthYear() != nil {
		switch yd := absInt(*s.BirthYear() - *d.BirthYear()); {
		case yd == 0:
			score += 15
		case yd <= 2:
			score += 10
		case yd <= 5:
			score += 5
		}
	}
	return score
}

func (mm *MemberMatcher) yearDelta(srcID, destID uuid.UUID) int {
	s := mm.SourceGraph.Persons[srcID]
	d := mm.DestGraph.Persons[destID]
	if s == nil || d == nil || s.BirthYear() == nil || d.BirthYear() == nil {
		return 1 << 30
	}
	return absInt(*s.BirthYear() - *d.BirthYear())
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
