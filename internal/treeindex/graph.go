// Package treeindex builds the immutable indexed graph (§3, §4.1) that
// every other component navigates. It is built once per comparison and
// never mutated afterward.
package treeindex

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
)

// TreeGraph is the immutable indexed view of one loaded tree (§3). All
// fields are read-only after Build returns; nothing in this package
// mutates a TreeGraph in place.
type TreeGraph struct {
	Persons  map[uuid.UUID]*domain.Person
	Families map[uuid.UUID]*domain.Family

	personToFamiliesAsSpouse    map[uuid.UUID][]uuid.UUID
	personToFamiliesAsChild     map[uuid.UUID][]uuid.UUID
	personsByBirthYear          map[int][]uuid.UUID
	personsByNormalizedLastName map[string][]uuid.UUID

	// familyOrder preserves tree-file insertion order (post-skip) so BFS and
	// FamilyMatcher enumeration are deterministic per §5 "Ordering".
	familyOrder []uuid.UUID

	// SkippedFamilyIssues records families dropped during Build because
	// they referenced a missing person id (§4.1 "MalformedTree").
	SkippedFamilyIssues []string
}

// FamiliesAsSpouse returns the ids of families where personID appears as a
// spouse, in the order families were indexed (tree-file insertion order).
func (g *TreeGraph) FamiliesAsSpouse(personID uuid.UUID) []uuid.UUID {
	return g.personToFamiliesAsSpouse[personID]
}

// FamiliesAsChild returns the ids of families where personID appears as a
// child.
func (g *TreeGraph) FamiliesAsChild(personID uuid.UUID) []uuid.UUID {
	return g.personToFamiliesAsChild[personID]
}

// ByBirthYear returns the ids of persons whose BirthYear equals year.
func (g *TreeGraph) ByBirthYear(year int) []uuid.UUID {
	return g.personsByBirthYear[year]
}

// ByNormalizedLastName returns the ids of persons sharing a normalized
// surname.
func (g *TreeGraph) ByNormalizedLastName(name string) []uuid.UUID {
	return g.personsByNormalizedLastName[domain.NormalizeSurname(name)]
}

// Build constructs a TreeGraph from a set of persons and families loaded
// by a TreeLoader (§4.1). Families referencing a missing person id are
// skipped and recorded in SkippedFamilyIssues rather than failing the
// whole build — a single malformed family should not prevent comparing
// the rest of the tree.
func Build(persons []*domain.Person, families []*domain.Family) *TreeGraph {
	g := &TreeGraph{
		Persons:                     make(map[uuid.UUID]*domain.Person, len(persons)),
		Families:                    make(map[uuid.UUID]*domain.Family, len(families)),
		personToFamiliesAsSpouse:    make(map[uuid.UUID][]uuid.UUID),
		personToFamiliesAsChild:     make(map[uuid.UUID][]uuid.UUID),
		personsByBirthYear:          make(map[int][]uuid.UUID),
		personsByNormalizedLastName: make(map[string][]uuid.UUID),
	}

	for _, p := range persons {
		g.Persons[p.ID] = p
		if y := p.BirthYear(); y != nil {
			g.personsByBirthYear[*y] = append(g.personsByBirthYear[*y], p.ID)
		}
		if p.NormalizedLastName != "" {
			g.personsByNormalizedLastName[p.NormalizedLastName] = append(g.personsByNormalizedLastName[p.NormalizedLastName], p.ID)
		}
	}

	for _, f := range families {
		if !g.familyMembersExist(f) {
			g.SkippedFamilyIssues = append(g.SkippedFamilyIssues, fmt.Sprintf("family %s references a missing person", f.ID))
			continue
		}
		g.Families[f.ID] = f
		g.familyOrder = append(g.familyOrder, f.ID)
		g.indexFamily(f)
	}

	g.deriveForwardEdges()
	return g
}

func (g *TreeGraph) familyMembersExist(f *domain.Family) bool {
	if f.HusbandID != nil {
		if _, ok := g.Persons[*f.HusbandID]; !ok {
			return false
		}
	}
	if f.WifeID != nil {
		if _, ok := g.Persons[*f.WifeID]; !ok {
			return false
		}
	}
	for _, c := range f.ChildIDs {
		if _, ok := g.Persons[c]; !ok {
			return false
		}
	}
	return true
}

func (g *TreeGraph) indexFamily(f *domain.Family) {
	if f.HusbandID != nil {
		g.personToFamiliesAsSpouse[*f.HusbandID] = append(g.personToFamiliesAsSpouse[*f.HusbandID], f.ID)
	}
	if f.WifeID != nil {
		g.personToFamiliesAsSpouse[*f.WifeID] = append(g.personToFamiliesAsSpouse[*f.WifeID], f.ID)
	}
	for _, c := range f.ChildIDs {
		g.personToFamiliesAsChild[c] = append(g.personToFamiliesAsChild[c], f.ID)
	}
}

// deriveForwardEdges populates each Person's FatherID/MotherID/SpouseIDs/
// ChildrenIDs/SiblingIDs from the indexed families (§3 "Forward edges ...
// populated by TreeIndexer").
func (g *TreeGraph) deriveForwardEdges() {
	for _, p := range g.Persons {
		p.SpouseIDs = nil
		p.ChildrenIDs = nil
		p.SiblingIDs = nil
		p.FatherID = nil
		p.MotherID = nil
	}

	for _, famID := range g.familyOrder {
		f := g.Families[famID]

		if f.HusbandID != nil && f.WifeID != nil {
			addSpouse(g.Persons[*f.HusbandID], *f.WifeID)
			addSpouse(g.Persons[*f.WifeID], *f.HusbandID)
		}
		for _, c := range f.ChildIDs {
			child := g.Persons[c]
			if f.HusbandID != nil {
				child.FatherID = cloneID(*f.HusbandID)
				g.Persons[*f.HusbandID].ChildrenIDs = append(g.Persons[*f.HusbandID].ChildrenIDs, c)
			}
			if f.WifeID != nil {
				child.MotherID = cloneID(*f.WifeID)
				g.Persons[*f.WifeID].ChildrenIDs = append(g.Persons[*f.WifeID].ChildrenIDs, c)
			}
		}
		for i, c := range f.ChildIDs {
			for j, sib := range f.ChildIDs {
				if i == j {
					continue
				}
				// Self-loops from malformed data (a person listed twice as
				// their own sibling) are filtered by the i != j check above;
				// TreeNavigator applies the same filter defensively (§4.2).
				addSibling(g.Persons[c], sib)
			}
		}
	}
}

func addSpouse(p *domain.Person, spouseID uuid.UUID) {
	if p == nil || spouseID == p.ID {
		return
	}
	for _, s := range p.SpouseIDs {
		if s == spouseID {
			return
		}
	}
	p.SpouseIDs = append(p.SpouseIDs, spouseID)
}

func addSibling(p *domain.Person, sibID uuid.UUID) {
	if p == nil || sibID == p.ID {
		return
	}
	for _, s := range p.SiblingIDs {
		if s == sibID {
			return
		}
	}
	p.SiblingIDs = append(p.SiblingIDs, sibID)
}

func cloneID(id uuid.UUID) *uuid.UUID {
	v := id
	return &v
}
