package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/treeindex"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func fam(husband, wife *domain.Person, children ...*domain.Person) *domain.Family {
	f := &domain.Family{ID: uuid.New()}
	if husband != nil {
		f.HusbandID = &husband.ID
	}
	if wife != nil {
		f.WifeID = &wife.ID
	}
	for _, c := range children {
		f.ChildIDs = append(f.ChildIDs, c.ID)
	}
	return f
}

// S1: anchor only, disjoint trees.
func TestEngine_Run_AnchorOnly(t *testing.T) {
	p1 := domain.NewPerson("Anchor", "Doe")
	d1 := domain.NewPerson("Anchor", "Doe")
	d2 := domain.NewPerson("Other", "Roe")

	srcGraph := treeindex.Build([]*domain.Person{p1}, nil)
	destGraph := treeindex.Build([]*domain.Person{d1, d2}, nil)

	e := New(srcGraph, destGraph, domain.DefaultCompareOptions(), fuzzy.NewMatcher())
	e.Now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	result, err := e.Run(context.Background(), p1.ID, d1.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Mappings) != 1 {
		t.Fatalf("expected one mapping, got %d", len(result.Mappings))
	}
	m := result.Mappings[p1.ID]
	if m.DestID != d1.ID || m.Score != 100 || m.Level != 0 || m.FoundVia != domain.RelationAnchor {
		t.Errorf("unexpected anchor mapping: %+v", m)
	}
	if len(result.UnmatchedSourceIDs) != 0 {
		t.Errorf("expected no unmatched source persons, got %v", result.UnmatchedSourceIDs)
	}
	if len(result.UnmatchedDestIDs) != 1 || result.UnmatchedDestIDs[0] != d2.ID {
		t.Errorf("expected d2 unmatched, got %v", result.UnmatchedDestIDs)
	}
}

// S2: spouse propagation across one aligned family.
func TestEngine_Run_SpousePropagation(t *testing.T) {
	p1 := domain.NewPerson("John", "Smith")
	p1.Gender = domain.GenderMale
	p2 := domain.NewPerson("Mary", "Smith")
	p2.Gender = domain.GenderFemale

	d1 := domain.NewPerson("John", "Smith")
	d1.Gender = domain.GenderMale
	d2 := domain.NewPerson("Mary", "Smith")
	d2.Gender = domain.GenderFemale

	srcFam := fam(p1, p2)
	destFam := fam(d1, d2)

	srcGraph := treeindex.Build([]*domain.Person{p1, p2}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{d1, d2}, []*domain.Family{destFam})

	e := New(srcGraph, destGraph, domain.DefaultCompareOptions(), fuzzy.NewMatcher())
	e.Now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	result, err := e.Run(context.Background(), p1.ID, d1.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Mappings) != 2 {
		t.Fatalf("expected two mappings, got %d: %+v", len(result.Mappings), result.Mappings)
	}
	spouse, ok := result.Mappings[p2.ID]
	if !ok || spouse.DestID != d2.ID || spouse.FoundVia != domain.RelationSpouse || spouse.Level != 1 {
		t.Errorf("unexpected spouse mapping: %+v", spouse)
	}

	var l0, l1 *domain.LevelStats
	for i := range result.LevelStats {
		switch result.LevelStats[i].Level {
		case 0:
			l0 = &result.LevelStats[i]
		case 1:
			l1 = &result.LevelStats[i]
		}
	}
	if l0 == nil || l0.PersonsProcessed != 1 {
		t.Errorf("expected level 0 to process 1 person, got %+v", l0)
	}
	if l1 == nil || l1.PersonsProcessed != 1 {
		t.Errorf("expected level 1 to process 1 person, got %+v", l1)
	}
	if len(result.UnmatchedSourceIDs) != 0 || len(result.UnmatchedDestIDs) != 0 {
		t.Errorf("expected no unmatched persons, got src=%v dest=%v", result.UnmatchedSourceIDs, result.UnmatchedDestIDs)
	}
}

// S6: exploration seeds — an unmatched child is enqueued but never expanded
// or mapped, and surfaces in UnmatchedSourceIDs.
func TestEngine_Run_ExplorationSeedNeverExpanded(t *testing.T) {
	p1 := domain.NewPerson("Anchor", "Doe")
	p1.Gender = domain.GenderMale
	cSrc := domain.NewPerson("Unmatched", "Doe")

	d1 := domain.NewPerson("Anchor", "Doe")
	d1.Gender = domain.GenderMale

	srcFam := fam(p1, nil, cSrc)
	destFam := fam(d1, nil)

	srcGraph := treeindex.Build([]*domain.Person{p1, cSrc}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{d1}, []*domain.Family{destFam})

	e := New(srcGraph, destGraph, domain.DefaultCompareOptions(), fuzzy.NewMatcher())
	e.Now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	result, err := e.Run(context.Background(), p1.ID, d1.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, mapped := result.Mappings[cSrc.ID]; mapped {
		t.Errorf("exploration seed must not be mapped, got %+v", result.Mappings[cSrc.ID])
	}
	found := false
	for _, id := range result.UnmatchedSourceIDs {
		if id == cSrc.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s in unmatched source ids, got %v", cSrc.ID, result.UnmatchedSourceIDs)
	}
}

func TestEngine_Run_UnknownAnchorReturnsError(t *testing.T) {
	p1 := domain.NewPerson("Anchor", "Doe")
	d1 := domain.NewPerson("Anchor", "Doe")

	srcGraph := treeindex.Build([]*domain.Person{p1}, nil)
	destGraph := treeindex.Build([]*domain.Person{d1}, nil)

	e := New(srcGraph, destGraph, domain.DefaultCompareOptions(), fuzzy.NewMatcher())

	_, err := e.Run(context.Background(), uuid.New(), d1.ID)
	if err != domain.ErrAnchorNotFound {
		t.Errorf("expected ErrAnchorNotFound, got %v", err)
	}
}

// MaxLevel pruning only skips further enqueueing, never admission: a
// proposal beyond maxLevel still lands in the final mappings, it just never
// gets dequeued and expanded in turn (§4.8 "maxLevel is advisory and
// applied by pruning enqueues").
func TestEngine_Run_MaxLevelPrunesEnqueueButKeepsMapping(t *testing.T) {
	birth := func(year string) *domain.GenDate {
		d := domain.ParseGenDate(year)
		return &d
	}

	p1 := domain.NewPerson("John", "Smith")
	p1.Gender = domain.GenderMale
	p2 := domain.NewPerson("Mary", "Smith")
	p2.Gender = domain.GenderFemale
	c1 := domain.NewPerson("Child", "Smith")
	c1.Gender = domain.GenderMale
	c1.BirthDate = birth("2000")
	spouseC := domain.NewPerson("Spouse", "Jones")
	spouseC.Gender = domain.GenderFemale
	spouseC.BirthDate = birth("2001")
	gc1 := domain.NewPerson("Grand", "Smith")
	gc1.Gender = domain.GenderMale
	gc1.BirthDate = birth("2020")

	d1 := domain.NewPerson("John", "Smith")
	d1.Gender = domain.GenderMale
	d2 := domain.NewPerson("Mary", "Smith")
	d2.Gender = domain.GenderFemale
	dc1 := domain.NewPerson("Child", "Smith")
	dc1.Gender = domain.GenderMale
	dc1.BirthDate = birth("2000")
	dSpouseC := domain.NewPerson("Spouse", "Jones")
	dSpouseC.Gender = domain.GenderFemale
	dSpouseC.BirthDate = birth("2001")
	dgc1 := domain.NewPerson("Grand", "Smith")
	dgc1.Gender = domain.GenderMale
	dgc1.BirthDate = birth("2020")

	srcFamAnchor := fam(p1, p2, c1)
	srcFamC1 := fam(c1, spouseC, gc1)
	destFamAnchor := fam(d1, d2, dc1)
	destFamC1 := fam(dc1, dSpouseC, dgc1)

	srcGraph := treeindex.Build([]*domain.Person{p1, p2, c1, spouseC, gc1}, []*domain.Family{srcFamAnchor, srcFamC1})
	destGraph := treeindex.Build([]*domain.Person{d1, d2, dc1, dSpouseC, dgc1}, []*domain.Family{destFamAnchor, destFamC1})

	opts := domain.DefaultCompareOptions()
	opts.MaxLevel = 1

	e := New(srcGraph, destGraph, opts, fuzzy.NewMatcher())
	e.Now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	result, err := e.Run(context.Background(), p1.ID, d1.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if m, mapped := result.Mappings[spouseC.ID]; !mapped || m.DestID != dSpouseC.ID {
		t.Errorf("expected spouseC mapped to dSpouseC despite level-2 pruning, got %+v (mapped=%v)", m, mapped)
	}
	if m, mapped := result.Mappings[gc1.ID]; !mapped || m.DestID != dgc1.ID {
		t.Errorf("expected gc1 mapped to dgc1 despite level-2 pruning, got %+v (mapped=%v)", m, mapped)
	}
	for _, ls := range result.LevelStats {
		if ls.Level >= 2 {
			t.Errorf("expected no level-2 queue activity when maxLevel=1, got %+v", ls)
		}
	}
}
