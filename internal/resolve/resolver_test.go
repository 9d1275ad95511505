package resolve

import (
	"testing"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/treeindex"
)

func TestResolver_Resolve_ReassignsToClearerPreference(t *testing.T) {
	srcAnchor := domain.NewPerson("Anchor", "Doe")
	destAnchor := domain.NewPerson("Anchor", "Doe")

	srcA := domain.NewPerson("Mary", "Doe")
	srcA.Gender = domain.GenderFemale
	destCorrect := domain.NewPerson("Mary", "Doe")
	destCorrect.Gender = domain.GenderFemale
	destWrong := domain.NewPerson("Maria", "Doe")
	destWrong.Gender = domain.GenderFemale
	destGrandparent := domain.NewPerson("Grandparent", "Doe")

	srcFamAnchor := &domain.Family{ID: uuid.New(), HusbandID: &srcAnchor.ID, WifeID: &srcA.ID}
	destFamAnchor := &domain.Family{ID: uuid.New(), HusbandID: &destAnchor.ID, WifeID: &destCorrect.ID}
	// destWrong is destCorrect's sibling, putting destCorrect within
	// destWrong's two-degree candidate pool.
	destFamSiblings := &domain.Family{ID: uuid.New(), HusbandID: &destGrandparent.ID, ChildIDs: []uuid.UUID{destCorrect.ID, destWrong.ID}}

	srcGraph := treeindex.Build([]*domain.Person{srcAnchor, srcA}, []*domain.Family{srcFamAnchor})
	destGraph := treeindex.Build([]*domain.Person{destAnchor, destCorrect, destWrong, destGrandparent}, []*domain.Family{destFamAnchor, destFamSiblings})

	birth := domain.ParseGenDate("1900")
	srcA.BirthDate = &birth
	destCorrect.BirthDate = &birth

	mappings := domain.MappingTable{
		srcAnchor.ID: {SourceID: srcAnchor.ID, DestID: destAnchor.ID, Score: 100, FoundVia: domain.RelationAnchor},
		srcA.ID:      {SourceID: srcA.ID, DestID: destWrong.ID, Score: 55, FoundVia: domain.RelationSpouse},
	}

	r := NewResolver(srcGraph, destGraph, fuzzy.NewMatcher())
	r.Resolve(mappings)

	got := mappings[srcA.ID]
	if got.DestID != destCorrect.ID {
		t.Errorf("resolver did not reassign to the better match: got %+v", got)
	}
}

func TestResolver_Resolve_AnchorsNeverChange(t *testing.T) {
	srcAnchor := domain.NewPerson("Anchor", "Doe")
	destAnchor := domain.NewPerson("Anchor", "Doe")

	srcGraph := treeindex.Build([]*domain.Person{srcAnchor}, nil)
	destGraph := treeindex.Build([]*domain.Person{destAnchor}, nil)

	mappings := domain.MappingTable{
		srcAnchor.ID: {SourceID: srcAnchor.ID, DestID: destAnchor.ID, Score: 100, FoundVia: domain.RelationAnchor},
	}

	r := NewResolver(srcGraph, destGraph, fuzzy.NewMatcher())
	r.Resolve(mappings)

	if mappings[srcAnchor.ID].DestID != destAnchor.ID || mappings[srcAnchor.ID].Score != 100 {
		t.Errorf("anchor mapping was modified: %+v", mappings[srcAnchor.ID])
	}
}

func TestResolver_Resolve_NoDuplicateDestinationAssignment(t *testing.T) {
	anchor := domain.NewPerson("Anchor", "Doe")
	destAnchorPerson := domain.NewPerson("Anchor", "Doe")

	srcA := domain.NewPerson("John", "Doe")
	srcA.Gender = domain.GenderMale
	srcB := domain.NewPerson("Jack", "Doe")
	srcB.Gender = domain.GenderMale
	destJohn := domain.NewPerson("John", "Doe")
	destJohn.Gender = domain.GenderMale
	destJack := domain.NewPerson("Jack", "Doe")
	destJack.Gender = domain.GenderMale

	srcFam := &domain.Family{ID: uuid.New(), HusbandID: &anchor.ID, ChildIDs: []uuid.UUID{srcA.ID, srcB.ID}}
	destFam := &domain.Family{ID: uuid.New(), HusbandID: &destAnchorPerson.ID, ChildIDs: []uuid.UUID{destJohn.ID, destJack.ID}}

	srcGraph := treeindex.Build([]*domain.Person{anchor, srcA, srcB}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{destAnchorPerson, destJohn, destJack}, []*domain.Family{destFam})

	// Both srcA and srcB were (incorrectly) mapped onto destJohn; destJack is
	// an exact match for srcB reachable as destJohn's sibling.
	mappings := domain.MappingTable{
		anchor.ID: {SourceID: anchor.ID, DestID: destAnchorPerson.ID, Score: 100, FoundVia: domain.RelationAnchor},
		srcA.ID:   {SourceID: srcA.ID, DestID: destJohn.ID, Score: 90, FoundVia: domain.RelationChild},
		srcB.ID:   {SourceID: srcB.ID, DestID: destJohn.ID, Score: 40, FoundVia: domain.RelationChild},
	}

	r := NewResolver(srcGraph, destGraph, fuzzy.NewMatcher())
	r.Resolve(mappings)

	if mappings[srcA.ID].DestID == mappings[srcB.ID].DestID {
		t.Errorf("resolver left two sources pointing at the same destination: %+v / %+v", mappings[srcA.ID], mappings[srcB.ID])
	}
	if mappings[srcB.ID].DestID != destJack.ID {
		t.Errorf("expected srcB to be reassigned to its exact match, got %+v", mappings[srcB.ID])
	}
}
