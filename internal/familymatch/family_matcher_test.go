package familymatch

import (
	"testing"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/treeindex"
)

func TestFamilyMatcher_Match_PrefersMappedSpouseFamily(t *testing.T) {
	husband := domain.NewPerson("John", "Doe")
	wife := domain.NewPerson("Jane", "Doe")
	dHusband := domain.NewPerson("John", "Doe")
	correctWife := domain.NewPerson("Jane", "Doe")
	wrongWife := domain.NewPerson("Someone", "Else")

	srcFam := &domain.Family{ID: uuid.New(), HusbandID: &husband.ID, WifeID: &wife.ID}
	correctFam := &domain.Family{ID: uuid.New(), HusbandID: &dHusband.ID, WifeID: &correctWife.ID}
	wrongFam := &domain.Family{ID: uuid.New(), HusbandID: &dHusband.ID, WifeID: &wrongWife.ID}

	srcGraph := treeindex.Build([]*domain.Person{husband, wife}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{dHusband, correctWife, wrongWife}, []*domain.Family{correctFam, wrongFam})

	mappings := domain.MappingTable{
		husband.ID: {SourceID: husband.ID, DestID: dHusband.ID, Score: 100, FoundVia: domain.RelationAnchor},
	}

	fm := NewFamilyMatcher(srcGraph, destGraph, fuzzy.NewMatcher())
	best, log, ok := fm.Match(srcFam, []*domain.Family{wrongFam, correctFam}, mappings)

	if !ok {
		t.Fatal("expected a non-conflicting match")
	}
	if best.ID != correctFam.ID {
		t.Errorf("Match chose family %v, want %v", best.ID, correctFam.ID)
	}
	if len(log) != 2 {
		t.Errorf("expected one log entry per candidate, got %d", len(log))
	}
}

func TestFamilyMatcher_Match_FlagsConflict(t *testing.T) {
	husband := domain.NewPerson("John", "Doe")
	wife := domain.NewPerson("Jane", "Doe")
	mappedDestHusband := domain.NewPerson("John", "Doe")
	otherDestHusband := domain.NewPerson("Other", "Person")

	srcFam := &domain.Family{ID: uuid.New(), HusbandID: &husband.ID, WifeID: &wife.ID}
	conflictingFam := &domain.Family{ID: uuid.New(), HusbandID: &otherDestHusband.ID}

	srcGraph := treeindex.Build([]*domain.Person{husband, wife}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{mappedDestHusband, otherDestHusband}, []*domain.Family{conflictingFam})

	mappings := domain.MappingTable{
		husband.ID: {SourceID: husband.ID, DestID: mappedDestHusband.ID, Score: 100, FoundVia: domain.RelationAnchor},
	}

	fm := NewFamilyMatcher(srcGraph, destGraph, fuzzy.NewMatcher())
	_, log, ok := fm.Match(srcFam, []*domain.Family{conflictingFam}, mappings)

	if ok {
		t.Fatal("expected no non-conflicting match")
	}
	if len(log) != 1 || !log[0].Conflict {
		t.Errorf("expected the single candidate to be flagged conflicting, got %+v", log)
	}
}
