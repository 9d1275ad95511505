// Package resolve implements MappingConflictResolver (§4.9): after BFS
// completes, it rebalances non-anchor mappings so that each destination is
// claimed by the source with the clearest (most exclusive) preference for
// it, searching only within the relative-restricted candidate pool rather
// than the whole destination tree.
package resolve

import (
	"sort"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/relname"
	"github.com/makhin/gedsync/internal/treeindex"
)

// minCandidateScore is the floor FuzzyMatcher.FindMatches uses when
// building each source's candidate set (§4.9 step 1).
const minCandidateScore = 50

// Resolver rebalances non-anchor mappings across the relative-restricted
// candidate pool.
type Resolver struct {
	SourceGraph *treeindex.TreeGraph
	DestGraph   *treeindex.TreeGraph
	Matcher     *fuzzy.Matcher
}

// NewResolver builds a Resolver over the two tree graphs.
func NewResolver(src, dst *treeindex.TreeGraph, m *fuzzy.Matcher) *Resolver {
	return &Resolver{SourceGraph: src, DestGraph: dst, Matcher: m}
}

type tuple struct {
	sourceID    uuid.UUID
	destID      uuid.UUID
	score       int
	exclusivity float64
}

// Resolve rebalances mappings in place, overwriting destId/score on
// non-anchor mappings where assignment changed. Anchor mappings (and any
// FoundVia == RelationAnchor) are never touched.
func (r *Resolver) Resolve(mappings domain.MappingTable) {
	anchoredDest := make(map[uuid.UUID]bool)
	for _, m := range mappings {
		if m.IsAnchor() {
			anchoredDest[m.DestID] = true
		}
	}

	var tuples []tuple
	for sourceID, m := range mappings {
		if m.IsAnchor() {
			continue
		}
		tuples = append(tuples, r.candidateTuples(sourceID, m)...)
	}

	sort.Slice(tuples, func(i, j int) bool {
		if tuples[i].exclusivity != tuples[j].exclusivity {
			return tuples[i].exclusivity > tuples[j].exclusivity
		}
		if tuples[i].score != tuples[j].score {
			return tuples[i].score > tuples[j].score
		}
		if tuples[i].sourceID != tuples[j].sourceID {
			return tuples[i].sourceID.String() < tuples[j].sourceID.String()
		}
		return tuples[i].destID.String() < tuples[j].destID.String()
	})

	assignedSource := make(map[uuid.UUID]bool)
	takenDest := make(map[uuid.UUID]bool)
	for dest := range anchoredDest {
		takenDest[dest] = true
	}

	for _, t := range tuples {
		if assignedSource[t.sourceID] || takenDest[t.destID] {
			continue
		}
		assignedSource[t.sourceID] = true
		takenDest[t.destID] = true

		m := mappings[t.sourceID]
		m.DestID = t.destID
		m.Score = t.score
		mappings[t.sourceID] = m
	}
}

// candidateTuples computes (source, candidate, score, exclusivity) tuples
// for one source, restricted to its two-degree relative pool plus the
// currently stored mapping (§4.9 step 1-2).
func (r *Resolver) candidateTuples(sourceID uuid.UUID, current domain.PersonMapping) []tuple {
	sp := r.SourceGraph.Persons[sourceID]
	if sp == nil {
		return nil
	}

	pool := relname.TwoDegreePool(r.DestGraph, current.DestID)
	var candidates []*domain.Person
	seen := make(map[uuid.UUID]bool)
	for _, id := range pool {
		if p, ok := r.DestGraph.Persons[id]; ok && !seen[id] {
			seen[id] = true
			candidates = append(candidates, p)
		}
	}

	matches := r.Matcher.FindMatches(sp, candidates, minCandidateScore)

	scored := make(map[uuid.UUID]int, len(matches)+1)
	for _, c := range matches {
		scored[c.Person.ID] = c.Score
	}
	// Always include the current mapping's candidate, even if FindMatches
	// did not return it, using its stored score (§4.9 step 1).
	if _, ok := scored[current.DestID]; !ok {
		scored[current.DestID] = current.Score
	}

	if len(scored) == 0 {
		return nil
	}

	type scoredCandidate struct {
		destID uuid.UUID
		score  int
	}
	ordered := make([]scoredCandidate, 0, len(scored))
	for destID, score := range scored {
		ordered = append(ordered, scoredCandidate{destID, score})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].destID.String() < ordered[j].destID.String()
	})

	best := ordered[0].score
	exclusivity := 0.0
	if len(ordered) > 1 && best > 0 {
		exclusivity = float64(best-ordered[1].score) / float64(best)
	} else if best > 0 {
		exclusivity = 1.0
	}

	tuples := make([]tuple, 0, len(ordered))
	for _, oc := range ordered {
		tuples = append(tuples, tuple{sourceID: sourceID, destID: oc.destID, score: oc.score, exclusivity: exclusivity})
	}
	return tuples
}
