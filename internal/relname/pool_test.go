package relname

import (
	"testing"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/treeindex"
)

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func TestTwoDegreePool_CoversExpectedRelations(t *testing.T) {
	grandpa := domain.NewPerson("Grandpa", "Doe")
	grandma := domain.NewPerson("Grandma", "Doe")
	father := domain.NewPerson("Father", "Doe")
	fatherSpouse2 := domain.NewPerson("StepMother", "Doe")
	aunt := domain.NewPerson("Aunt", "Doe")
	me := domain.NewPerson("Me", "Doe")
	sibling := domain.NewPerson("Sibling", "Doe")
	nieceOrNephew := domain.NewPerson("Niece", "Doe")
	spouse := domain.NewPerson("Spouse", "Doe")
	child := domain.NewPerson("Child", "Doe")
	grandchild := domain.NewPerson("Grandchild", "Doe")
	unrelated := domain.NewPerson("Stranger", "Jones")

	persons := []*domain.Person{
		grandpa, grandma, father, fatherSpouse2, aunt, me, sibling,
		nieceOrNephew, spouse, child, grandchild, unrelated,
	}
	families := []*domain.Family{
		fam(grandpa, grandma, father, aunt),
		fam(father, nil, me, sibling),
		fam(father, fatherSpouse2),
		fam(sibling, nil, nieceOrNephew),
		fam(me, spouse, child),
		fam(child, nil, grandchild),
	}

	g := treeindex.Build(persons, families)
	pool := TwoDegreePool(g, me.ID)

	for _, want := range []*domain.Person{father, aunt, sibling, spouse, child, grandpa, grandma, grandchild, nieceOrNephew, fatherSpouse2} {
		if !contains(pool, want.ID) {
			t.Errorf("expected %s in two-degree pool", want.FirstName)
		}
	}
	if contains(pool, unrelated.ID) {
		t.Error("did not expect an unrelated stranger in the pool")
	}
	if contains(pool, me.ID) {
		t.Error("pool should not contain the person themself")
	}
}

func TestTwoDegreePool_NoDuplicates(t *testing.T) {
	father := domain.NewPerson("Father", "Doe")
	me := domain.NewPerson("Me", "Doe")
	sibling := domain.NewPerson("Sibling", "Doe")

	g := treeindex.Build(
		[]*domain.Person{father, me, sibling},
		[]*domain.Family{fam(father, nil, me, sibling)},
	)
	pool := TwoDegreePool(g, me.ID)

	seen := make(map[uuid.UUID]int)
	for _, id := range pool {
		seen[id]++
	}
	for id, count := range seen {
		if count > 1 {
			t.Errorf("id %s appeared %d times, want at most once", id, count)
		}
	}
}
