// Package adjudicate implements the Interactive Adjudicator (§4.10): when a
// validated proposal's score falls between the minimum and low-confidence
// thresholds, it ranks the relative-restricted candidate pool, presents up
// to maxCandidates of them on an injected prompt port, and turns the
// answer into an engine.Adjudicator outcome.
package adjudicate

import (
	"context"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/relname"
	"github.com/makhin/gedsync/internal/treeindex"
)

// FieldBreakdown is one field's contribution to a candidate's score,
// normalized to a 0..1 sub-score so the prompt can render a bar or percent
// without knowing the underlying point weights (§4.10).
type FieldBreakdown struct {
	Field    string  `json:"field"`
	SubScore float64 `json:"subScore"`
	Details  string  `json:"details"`
}

// CandidateOption is one of up to maxCandidates choices shown to the user.
type CandidateOption struct {
	DestID           uuid.UUID        `json:"destId"`
	Score            int              `json:"score"`
	Fields           []FieldBreakdown `json:"fields"`
	MatchingParents  int              `json:"matchingParents"`
	MatchingChildren int              `json:"matchingChildren"`
	MatchingSiblings int              `json:"matchingSiblings"`
	SpouseMatches    bool             `json:"spouseMatches"`
}

// Request is presented to the prompt port for one ambiguous proposal.
type Request struct {
	SourceID   uuid.UUID         `json:"sourceId"`
	Candidates []CandidateOption `json:"candidates"`
}

// Answer is the prompt port's reply to a Request.
type Answer struct {
	Decision domain.DecisionType
	// SelectedIndex chooses among Request.Candidates when Decision is
	// Confirmed. Ignored otherwise.
	SelectedIndex int
}

// Prompter is the synchronous port the adjudicator blocks on (§9
// "Interactive I/O: model the prompt as a synchronous call on an injected
// port"). A real implementation drives a terminal or UI; tests use a
// scripted double.
type Prompter interface {
	Ask(ctx context.Context, req Request) Answer
}

// Adjudicator implements engine.Adjudicator. It is built per comparison run
// since it needs both tree graphs and the matcher already in use for BFS.
type Adjudicator struct {
	SourceGraph   *treeindex.TreeGraph
	DestGraph     *treeindex.TreeGraph
	Matcher       *fuzzy.Matcher
	Prompter      Prompter
	MaxCandidates int
}

// New builds an Adjudicator over the two tree graphs, presenting at most
// maxCandidates options per prompt.
func New(srcGraph, destGraph *treeindex.TreeGraph, matcher *fuzzy.Matcher, prompter Prompter, maxCandidates int) *Adjudicator {
	return &Adjudicator{SourceGraph: srcGraph, DestGraph: destGraph, Matcher: matcher, Prompter: prompter, MaxCandidates: maxCandidates}
}

// Adjudicate ranks expandingFrom's destination's two-degree relative pool
// against proposed's source person, presents up to MaxCandidates of them,
// and turns the user's answer into a domain.AdjudicationOutcome. A refused
// or unreachable prompt is treated as Skip (§7 "No error from the
// interactive adjudicator is fatal; a refused prompt is treated as Skip").
func (a *Adjudicator) Adjudicate(ctx context.Context, proposed, expandingFrom domain.PersonMapping) domain.AdjudicationOutcome {
	if a.Prompter == nil {
		return domain.AdjudicationOutcome{Decision: domain.DecisionSkipped}
	}

	sourcePerson, ok := a.SourceGraph.Persons[proposed.SourceID]
	if !ok {
		return domain.AdjudicationOutcome{Decision: domain.DecisionSkipped}
	}

	pool := relname.TwoDegreePool(a.DestGraph, expandingFrom.DestID)
	candidates := a.resolvePersons(pool)
	matches := a.Matcher.FindMatches(sourcePerson, candidates, 0)

	limit := a.MaxCandidates
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	matches = matches[:limit]

	options := make([]CandidateOption, 0, len(matches))
	for _, m := range matches {
		options = append(options, a.buildOption(sourcePerson, m))
	}
	if len(options) == 0 {
		return domain.AdjudicationOutcome{Decision: domain.DecisionSkipped}
	}

	answer := a.Prompter.Ask(ctx, Request{SourceID: proposed.SourceID, Candidates: options})

	if answer.Decision != domain.DecisionConfirmed {
		return domain.AdjudicationOutcome{Decision: answer.Decision}
	}
	if answer.SelectedIndex < 0 || answer.SelectedIndex >= len(options) {
		return domain.AdjudicationOutcome{Decision: domain.DecisionSkipped}
	}
	chosen := options[answer.SelectedIndex].DestID
	return domain.AdjudicationOutcome{Decision: domain.DecisionConfirmed, DestID: &chosen}
}

func (a *Adjudicator) resolvePersons(ids []uuid.UUID) []*domain.Person {
	out := make([]*domain.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := a.DestGraph.Persons[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// buildOption renders a candidate's field breakdown and relative-overlap
// counts. Overlap is measured between sourcePerson's own relatives (in
// SourceGraph) and the candidate's relatives (in DestGraph) by way of the
// pair already accepted at expandingFrom — a relative counts as matching
// when its source-side counterpart is itself mapped to one of the
// candidate's relatives. Since the adjudicator does not hold the live
// mapping table, it approximates this with name/gender similarity instead:
// a source relative "matches" a candidate relative when FuzzyMatcher scores
// them at or above the resolver's minimum candidate score (§4.9's minScore=50).
func (a *Adjudicator) buildOption(sourcePerson *domain.Person, c fuzzy.Candidate) CandidateOption {
	srcNav := treeindex.NewNavigator(a.SourceGraph)
	destNav := treeindex.NewNavigator(a.DestGraph)

	fields := make([]FieldBreakdown, 0, len(c.Reasons))
	for _, r := range c.Reasons {
		fields = append(fields, FieldBreakdown{
			Field:    r.Field,
			SubScore: fieldSubScore(r),
			Details:  r.Details,
		})
	}

	opt := CandidateOption{
		DestID: c.Person.ID,
		Score:  c.Score,
		Fields: fields,
	}

	opt.MatchingParents = a.countRelativeMatches(srcNav.Parents(sourcePerson.ID), destNav.Parents(c.Person.ID))
	opt.MatchingChildren = a.countRelativeMatches(srcNav.Children(sourcePerson.ID), destNav.Children(c.Person.ID))
	opt.MatchingSiblings = a.countRelativeMatches(srcNav.Siblings(sourcePerson.ID), destNav.Siblings(c.Person.ID))
	opt.SpouseMatches = a.countRelativeMatches(srcNav.Spouses(sourcePerson.ID), destNav.Spouses(c.Person.ID)) > 0

	return opt
}

const relativeMatchMinScore = 50

func (a *Adjudicator) countRelativeMatches(srcIDs, destIDs []uuid.UUID) int {
	destCandidates := a.resolvePersons(destIDs)
	count := 0
	for _, srcID := range srcIDs {
		srcRel, ok := a.SourceGraph.Persons[srcID]
		if !ok {
			continue
		}
		if len(a.Matcher.FindMatches(srcRel, destCandidates, relativeMatchMinScore)) > 0 {
			count++
		}
	}
	return count
}

// fieldSubScore normalizes a Reason's points to 0..1 against its field's
// published weight (§4.4).
func fieldSubScore(r fuzzy.Reason) float64 {
	weight := fieldWeight(r.Field)
	if weight <= 0 {
		return 0
	}
	sub := float64(r.Points) / float64(weight)
	if sub > 1 {
		sub = 1
	}
	if sub < 0 {
		sub = 0
	}
	return sub
}

func fieldWeight(field string) int {
	switch field {
	case "FirstName":
		return 25
	case "LastName":
		return 20
	case "MaidenName":
		return 10
	case "BirthDate":
		return 15
	case "BirthPlace":
		return 10
	case "Gender":
		return 5
	default:
		return 0
	}
}
