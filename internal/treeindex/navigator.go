package treeindex

import (
	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
)

// Relative pairs a person id with the relation type they hold to the
// person immediateRelatives was asked about (§4.2).
type Relative struct {
	ID       uuid.UUID
	Relation domain.RelationType
}

// Navigator exposes stateless traversal helpers over a TreeGraph. It holds
// no state of its own beyond the graph reference, matching §4.2's "pure
// functions" framing.
type Navigator struct {
	Graph *TreeGraph
}

// NewNavigator wraps g in a Navigator.
func NewNavigator(g *TreeGraph) *Navigator {
	return &Navigator{Graph: g}
}

// FamiliesAsSpouse returns the families where id is a spouse.
func (n *Navigator) FamiliesAsSpouse(id uuid.UUID) []uuid.UUID {
	return n.Graph.FamiliesAsSpouse(id)
}

// FamiliesAsChild returns the families where id is a child.
func (n *Navigator) FamiliesAsChild(id uuid.UUID) []uuid.UUID {
	return n.Graph.FamiliesAsChild(id)
}

// Parents returns id's father and mother ids, in that order, omitting any
// that are unknown.
func (n *Navigator) Parents(id uuid.UUID) []uuid.UUID {
	p, ok := n.Graph.Persons[id]
	if !ok {
		return nil
	}
	var out []uuid.UUID
	if p.FatherID != nil {
		out = append(out, *p.FatherID)
	}
	if p.MotherID != nil {
		out = append(out, *p.MotherID)
	}
	return out
}

// Spouses returns id's spouse ids, self-loops filtered.
func (n *Navigator) Spouses(id uuid.UUID) []uuid.UUID {
	p, ok := n.Graph.Persons[id]
	if !ok {
		return nil
	}
	return filterSelf(id, p.SpouseIDs)
}

// Children returns id's children ids in birth order.
func (n *Navigator) Children(id uuid.UUID) []uuid.UUID {
	p, ok := n.Graph.Persons[id]
	if !ok {
		return nil
	}
	return filterSelf(id, p.ChildrenIDs)
}

// Siblings returns id's sibling ids, self-loops filtered.
func (n *Navigator) Siblings(id uuid.UUID) []uuid.UUID {
	p, ok := n.Graph.Persons[id]
	if !ok {
		return nil
	}
	return filterSelf(id, p.SiblingIDs)
}

// ImmediateRelatives enumerates every relative of id — parents, spouses,
// children, siblings — tagged with relation type, duplicates removed
// (§4.2). A person can legitimately appear once per relation type but
// never twice under the same one.
func (n *Navigator) ImmediateRelatives(id uuid.UUID) []Relative {
	var out []Relative
	seen := make(map[uuid.UUID]map[domain.RelationType]bool)

	add := func(relID uuid.UUID, rel domain.RelationType) {
		if relID == id {
			return
		}
		if seen[relID] == nil {
			seen[relID] = make(map[domain.RelationType]bool)
		}
		if seen[relID][rel] {
			return
		}
		seen[relID][rel] = true
		out = append(out, Relative{ID: relID, Relation: rel})
	}

	for _, p := range n.Parents(id) {
		add(p, domain.RelationParent)
	}
	for _, s := range n.Spouses(id) {
		add(s, domain.RelationSpouse)
	}
	for _, c := range n.Children(id) {
		add(c, domain.RelationChild)
	}
	for _, sib := range n.Siblings(id) {
		add(sib, domain.RelationSibling)
	}
	return out
}

func filterSelf(id uuid.UUID, ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
