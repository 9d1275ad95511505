package adjudicate

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/treeindex"
)

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

// scriptedPrompter replays pre-recorded answers in call order, matching §9
// "tests use a scripted port that returns pre-recorded decisions".
type scriptedPrompter struct {
	answers []Answer
	calls   []Request
}

func (p *scriptedPrompter) Ask(ctx context.Context, req Request) Answer {
	p.calls = append(p.calls, req)
	i := len(p.calls) - 1
	if i >= len(p.answers) {
		return Answer{Decision: domain.DecisionSkipped}
	}
	return p.answers[i]
}

// S5: the user is shown multiple candidates and picks an alternate.
func TestAdjudicator_Adjudicate_ConfirmsAlternatePick(t *testing.T) {
	srcAnchor := domain.NewPerson("Anchor", "Doe")
	destAnchor := domain.NewPerson("Anchor", "Doe")

	srcChild := domain.NewPerson("Sam", "Doe")
	destA := domain.NewPerson("Samuel", "Doe")
	destB := domain.NewPerson("Sam", "Doe")

	srcFam := fam(srcAnchor, nil, srcChild)
	destFam := fam(destAnchor, nil, destA, destB)

	srcGraph := treeindex.Build([]*domain.Person{srcAnchor, srcChild}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{destAnchor, destA, destB}, []*domain.Family{destFam})

	prompter := &scriptedPrompter{answers: []Answer{{Decision: domain.DecisionConfirmed, SelectedIndex: 1}}}
	adj := New(srcGraph, destGraph, fuzzy.NewMatcher(), prompter, 3)

	proposed := domain.PersonMapping{SourceID: srcChild.ID, DestID: destA.ID, Score: 75}
	expandingFrom := domain.PersonMapping{SourceID: srcAnchor.ID, DestID: destAnchor.ID, FoundVia: domain.RelationAnchor}

	outcome := adj.Adjudicate(context.Background(), proposed, expandingFrom)

	if outcome.Decision != domain.DecisionConfirmed {
		t.Fatalf("expected Confirmed, got %v", outcome.Decision)
	}
	if outcome.DestID == nil {
		t.Fatal("expected a dest id on confirm")
	}
	if len(prompter.calls) != 1 {
		t.Fatalf("expected exactly one prompt, got %d", len(prompter.calls))
	}
	if len(prompter.calls[0].Candidates) < 2 {
		t.Fatalf("expected at least two candidates presented, got %d", len(prompter.calls[0].Candidates))
	}
	wantDest := prompter.calls[0].Candidates[1].DestID
	if *outcome.DestID != wantDest {
		t.Errorf("expected the second presented candidate %s, got %s", wantDest, *outcome.DestID)
	}
}

func TestAdjudicator_Adjudicate_RejectPassesThrough(t *testing.T) {
	srcAnchor := domain.NewPerson("Anchor", "Doe")
	destAnchor := domain.NewPerson("Anchor", "Doe")
	srcChild := domain.NewPerson("Sam", "Doe")
	destA := domain.NewPerson("Samuel", "Doe")

	srcFam := fam(srcAnchor, nil, srcChild)
	destFam := fam(destAnchor, nil, destA)

	srcGraph := treeindex.Build([]*domain.Person{srcAnchor, srcChild}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{destAnchor, destA}, []*domain.Family{destFam})

	prompter := &scriptedPrompter{answers: []Answer{{Decision: domain.DecisionRejected}}}
	adj := New(srcGraph, destGraph, fuzzy.NewMatcher(), prompter, 3)

	proposed := domain.PersonMapping{SourceID: srcChild.ID, DestID: destA.ID, Score: 75}
	expandingFrom := domain.PersonMapping{SourceID: srcAnchor.ID, DestID: destAnchor.ID, FoundVia: domain.RelationAnchor}

	outcome := adj.Adjudicate(context.Background(), proposed, expandingFrom)
	if outcome.Decision != domain.DecisionRejected {
		t.Errorf("expected Rejected, got %v", outcome.Decision)
	}
	if outcome.DestID != nil {
		t.Errorf("expected nil dest id on reject, got %v", outcome.DestID)
	}
}

func TestAdjudicator_Adjudicate_NilPrompterSkips(t *testing.T) {
	srcAnchor := domain.NewPerson("Anchor", "Doe")
	destAnchor := domain.NewPerson("Anchor", "Doe")

	srcGraph := treeindex.Build([]*domain.Person{srcAnchor}, nil)
	destGraph := treeindex.Build([]*domain.Person{destAnchor}, nil)

	adj := New(srcGraph, destGraph, fuzzy.NewMatcher(), nil, 3)

	outcome := adj.Adjudicate(context.Background(), domain.PersonMapping{SourceID: srcAnchor.ID, DestID: destAnchor.ID}, domain.PersonMapping{DestID: destAnchor.ID})
	if outcome.Decision != domain.DecisionSkipped {
		t.Errorf("expected Skipped with no prompter, got %v", outcome.Decision)
	}
}

func TestAdjudicator_Adjudicate_NoCandidatesSkips(t *testing.T) {
	srcAnchor := domain.NewPerson("Anchor", "Doe")
	srcChild := domain.NewPerson("Sam", "Doe")
	destAnchor := domain.NewPerson("Anchor", "Doe")

	srcFam := fam(srcAnchor, nil, srcChild)
	srcGraph := treeindex.Build([]*domain.Person{srcAnchor, srcChild}, []*domain.Family{srcFam})
	destGraph := treeindex.Build([]*domain.Person{destAnchor}, nil)

	prompter := &scriptedPrompter{}
	adj := New(srcGraph, destGraph, fuzzy.NewMatcher(), prompter, 3)

	proposed := domain.PersonMapping{SourceID: srcChild.ID, DestID: destAnchor.ID, Score: 75}
	expandingFrom := domain.PersonMapping{SourceID: srcAnchor.ID, DestID: destAnchor.ID, FoundVia: domain.RelationAnchor}

	outcome := adj.Adjudicate(context.Background(), proposed, expandingFrom)
	if outcome.Decision != domain.DecisionSkipped {
		t.Errorf("expected Skipped when the pool has no relatives, got %v", outcome.Decision)
	}
	if len(prompter.calls) != 0 {
		t.Errorf("expected no prompt when there are no candidates, got %d calls", len(prompter.calls))
	}
}
