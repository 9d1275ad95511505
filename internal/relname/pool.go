// Package relname adapts the teacher's relationship-query logic (ancestor
// BFS, lowest-common-ancestor, cousin/removed naming) to the Wave Compare
// Engine: a restricted "relatives within two degrees" candidate pool for
// MappingConflictResolver and the interactive adjudicator (§4.9, §4.10),
// and relationship naming for HighConfidenceReportBuilder's
// AdditionalRelations labels (§4.11).
package relname

import (
	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/treeindex"
)

// TwoDegreePool enumerates id's relatives within two degrees: self,
// parents, spouses, children, siblings, grandparents, grandchildren,
// nieces/nephews, aunts/uncles, and step-parents reached via a parent's
// other spouses (§4.9 step 1). The result has no duplicates and never
// includes id itself — "self" in the spec's candidate-set description
// means the resolver always considers the person's current destination,
// which callers add separately via the stored mapping.
func TwoDegreePool(g *treeindex.TreeGraph, id uuid.UUID) []uuid.UUID {
	nav := treeindex.NewNavigator(g)
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID

	add := func(relID uuid.UUID) {
		if relID == id || seen[relID] {
			return
		}
		seen[relID] = true
		out = append(out, relID)
	}

	parents := nav.Parents(id)
	for _, p := range parents {
		add(p)
		for _, gp := range nav.Parents(p) {
			add(gp)
		}
		// Step-parents: the parent's other spouses.
		for _, stepParent := range nav.Spouses(p) {
			add(stepParent)
		}
		// Aunts/uncles: the parent's siblings.
		for _, auntUncle := range nav.Siblings(p) {
			add(auntUncle)
		}
	}

	for _, s := range nav.Spouses(id) {
		add(s)
	}

	children := nav.Children(id)
	for _, c := range children {
		add(c)
		for _, gc := range nav.Children(c) {
			add(gc)
		}
	}

	siblings := nav.Siblings(id)
	for _, sib := range siblings {
		add(sib)
		// Nieces/nephews: sibling's children.
		for _, nn := range nav.Children(sib) {
			add(nn)
		}
	}

	return out
}
