// Package engine implements WaveCompareEngine (§4.8): the BFS that
// propagates person mappings outward from an anchor pair, aligning
// families and their members one wave at a time, then resolving any
// conflicts the wave left behind.
//
// Grounded on the teacher's straightforward imperative service style
// (command.Handler, query.RelationshipService) rather than any
// particular BFS example in the corpus — the teacher has no graph
// traversal of its own, so the loop itself follows the specification
// directly while the collaborators it drives (FamilyMatcher,
// MemberMatcher, Validator, Resolver) are each grounded on their own
// package.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/familymatch"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/resolve"
	"github.com/makhin/gedsync/internal/store"
	"github.com/makhin/gedsync/internal/threshold"
	"github.com/makhin/gedsync/internal/treeindex"
	"github.com/makhin/gedsync/internal/validate"
)

// Adjudicator is consulted for a proposal the validator accepted but whose
// score is at least MinConfidenceThreshold and below
// LowConfidenceThreshold (§4.10). expandingFrom is the already-mapped
// person the BFS was expanding from when it produced proposed; an
// Adjudicator implementation restricts its presented candidates to
// expandingFrom's destination's two-degree relatives, the same rule the
// conflict resolver uses.
type Adjudicator interface {
	Adjudicate(ctx context.Context, proposed domain.PersonMapping, expandingFrom domain.PersonMapping) domain.AdjudicationOutcome
}

type queueItem struct {
	sourceID uuid.UUID
	level    int
}

// Engine runs one wave comparison between a source and destination
// TreeGraph, producing a CompareResult.
type Engine struct {
	SourceGraph *treeindex.TreeGraph
	DestGraph   *treeindex.TreeGraph
	Options     domain.CompareOptions

	FamilyMatcher *familymatch.FamilyMatcher
	MemberMatcher *familymatch.MemberMatcher
	Validator     *validate.Validator
	Resolver      *resolve.Resolver

	Store       store.ConfirmedMappingsStore
	Adjudicator Adjudicator

	// Now is the clock the engine stamps mappings and level stats with;
	// tests substitute a fixed function for deterministic FoundAt values.
	Now func() time.Time

	mappings    domain.MappingTable
	processed   map[uuid.UUID]bool
	rejected    map[uuid.UUID]map[uuid.UUID]bool
	rejectedAny map[uuid.UUID]bool
	issues      []domain.ValidationIssue
	levelStats  map[int]*domain.LevelStats
}

// New builds an Engine wiring the standard collaborators from opts. Callers
// that need a custom FuzzyMatcher, Adjudicator, or confirmed-mappings Store
// can set the remaining fields directly before calling Run.
func New(src, dst *treeindex.TreeGraph, opts domain.CompareOptions, matcher *fuzzy.Matcher) *Engine {
	th := threshold.NewCalculator(opts)
	e := &Engine{
		SourceGraph:   src,
		DestGraph:     dst,
		Options:       opts,
		FamilyMatcher: familymatch.NewFamilyMatcher(src, dst, matcher),
		MemberMatcher: familymatch.NewMemberMatcher(src, dst, matcher, th),
		Validator:     validate.NewValidator(src, dst),
		Now:           time.Now,
	}
	if opts.ResolveConflicts {
		e.Resolver = resolve.NewResolver(src, dst, matcher)
	}
	return e
}

// Run executes the full comparison anchored at (anchorSourceID, anchorDestID)
// and returns the assembled CompareResult (§4.8, §6).
func (e *Engine) Run(ctx context.Context, anchorSourceID, anchorDestID uuid.UUID) (domain.CompareResult, error) {
	if err := e.Options.Validate(); err != nil {
		return domain.CompareResult{}, err
	}
	if _, ok := e.SourceGraph.Persons[anchorSourceID]; !ok {
		return domain.CompareResult{}, domain.ErrAnchorNotFound
	}
	if _, ok := e.DestGraph.Persons[anchorDestID]; !ok {
		return domain.CompareResult{}, domain.ErrAnchorNotFound
	}

	now := e.clock()
	e.mappings = domain.MappingTable{}
	e.processed = map[uuid.UUID]bool{}
	e.rejected = map[uuid.UUID]map[uuid.UUID]bool{}
	e.rejectedAny = map[uuid.UUID]bool{}
	e.issues = nil
	e.levelStats = map[int]*domain.LevelStats{}

	e.mappings[anchorSourceID] = domain.PersonMapping{
		SourceID: anchorSourceID,
		DestID:   anchorDestID,
		Score:    100,
		Level:    0,
		FoundVia: domain.RelationAnchor,
		FoundAt:  now,
	}
	e.processed[anchorSourceID] = true

	queue := []queueItem{{sourceID: anchorSourceID, level: 0}}

	if err := e.seedConfirmedAnchors(ctx, &queue, now); err != nil {
		return domain.CompareResult{}, err
	}

	interrupted := false
	currentLevel := -1
	var levelStart time.Time

	for len(queue) > 0 {
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		item := queue[0]
		queue = queue[1:]

		if item.level != currentLevel {
			e.closeLevel(currentLevel, levelStart)
			currentLevel = item.level
			levelStart = e.clock()
			e.levelStats[currentLevel] = &domain.LevelStats{Level: currentLevel}
		}
		ls := e.levelStats[currentLevel]
		ls.PersonsProcessed++

		m, mapped := e.mappings[item.sourceID]
		if !mapped {
			// Enqueued for exploration only: a family with at least one
			// matched member but no match for this person.
			continue
		}

		examined, newMappings := e.expandFromSpouseFamilies(ctx, item, m, &queue)
		ls.FamiliesExamined += examined
		ls.NewMappings += newMappings

		examined, newMappings = e.expandFromChildFamilies(ctx, item, m, &queue)
		ls.FamiliesExamined += examined
		ls.NewMappings += newMappings
	}
	e.closeLevel(currentLevel, levelStart)

	if e.Options.ResolveConflicts && e.Resolver != nil {
		e.Resolver.Resolve(e.mappings)
	}

	return e.assembleResult(anchorSourceID, anchorDestID, interrupted), nil
}

func (e *Engine) clock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) closeLevel(level int, start time.Time) {
	if level < 0 {
		return
	}
	if ls, ok := e.levelStats[level]; ok {
		ls.ElapsedMillis = e.clock().Sub(start).Milliseconds()
	}
}

// seedConfirmedAnchors inserts every Confirmed decision from the
// confirmed-mappings store as an additional anchor and caches Rejected/
// Skipped decisions so the adjudicator skips re-asking about them (§4.8
// Initialization).
func (e *Engine) seedConfirmedAnchors(ctx context.Context, queue *[]queueItem, now time.Time) error {
	if e.Store == nil || e.Options.ConfirmedMappingsPath == "" {
		return nil
	}
	doc, err := e.Store.Load(ctx)
	if err != nil {
		return err
	}
	for _, d := range doc.Mappings {
		switch d.Type {
		case domain.DecisionConfirmed:
			if d.DestID == nil || e.processed[d.SourceID] {
				continue
			}
			if _, ok := e.SourceGraph.Persons[d.SourceID]; !ok {
				continue
			}
			if _, ok := e.DestGraph.Persons[*d.DestID]; !ok {
				continue
			}
			e.mappings[d.SourceID] = domain.PersonMapping{
				SourceID: d.SourceID,
				DestID:   *d.DestID,
				Score:    100,
				Level:    0,
				FoundVia: domain.RelationAnchor,
				FoundAt:  now,
			}
			e.processed[d.SourceID] = true
			*queue = append(*queue, queueItem{sourceID: d.SourceID, level: 0})
		case domain.DecisionRejected, domain.DecisionSkipped:
			if d.DestID != nil {
				if e.rejected[d.SourceID] == nil {
					e.rejected[d.SourceID] = map[uuid.UUID]bool{}
				}
				e.rejected[d.SourceID][*d.DestID] = true
			} else {
				e.rejectedAny[d.SourceID] = true
			}
		}
	}
	return nil
}

// expandFromSpouseFamilies implements §4.8 step 2: align families where sid
// is a spouse, then propose spouse and child mappings within the aligned
// pair.
func (e *Engine) expandFromSpouseFamilies(ctx context.Context, item queueItem, m domain.PersonMapping, queue *[]queueItem) (familiesExamined, newMappings int) {
	srcFamilyIDs := e.SourceGraph.FamiliesAsSpouse(item.sourceID)
	destCandidateIDs := e.DestGraph.FamiliesAsSpouse(m.DestID)
	return e.expandAligned(ctx, item, srcFamilyIDs, destCandidateIDs, queue)
}

// expandFromChildFamilies implements §4.8 step 3, the symmetric case for
// families where sid is a child.
func (e *Engine) expandFromChildFamilies(ctx context.Context, item queueItem, m domain.PersonMapping, queue *[]queueItem) (familiesExamined, newMappings int) {
	srcFamilyIDs := e.SourceGraph.FamiliesAsChild(item.sourceID)
	destCandidateIDs := e.DestGraph.FamiliesAsChild(m.DestID)
	return e.expandAligned(ctx, item, srcFamilyIDs, destCandidateIDs, queue)
}

func (e *Engine) expandAligned(ctx context.Context, item queueItem, srcFamilyIDs, destCandidateIDs []uuid.UUID, queue *[]queueItem) (familiesExamined, newMappings int) {
	var destCandidates []*domain.Family
	for _, id := range destCandidateIDs {
		if f := e.DestGraph.Families[id]; f != nil {
			destCandidates = append(destCandidates, f)
		}
	}

	for _, srcID := range srcFamilyIDs {
		srcFam := e.SourceGraph.Families[srcID]
		if srcFam == nil {
			continue
		}

		best, log, ok := e.FamilyMatcher.Match(srcFam, destCandidates, e.mappings)
		familiesExamined += len(log)
		if !ok {
			continue
		}

		proposals := e.MemberMatcher.MatchSpouses(srcFam, best, e.mappings, item.sourceID, item.level+1, e.clock())
		proposals = append(proposals, e.MemberMatcher.MatchChildren(srcFam, best, e.mappings, item.sourceID, item.level+1, e.clock())...)

		for _, p := range proposals {
			if e.admit(ctx, p.Mapping, item) {
				newMappings++
				e.appendQueue(queue, p.Mapping.SourceID, p.Mapping.Level)
			}
		}

		e.seedExploration(srcFam, item.level+1, queue)
	}
	return familiesExamined, newMappings
}

// admit runs a proposal through the validator and, when interactive, the
// adjudicator (§4.8 step 2 "run each proposal through the validator and the
// interactive adjudicator"). Accepted proposals are inserted into mappings
// and marked processed, claiming the source id under preserve-first
// semantics — once claimed, no later proposal for the same source id is
// considered.
func (e *Engine) admit(ctx context.Context, proposed domain.PersonMapping, expandingFrom queueItem) bool {
	if e.processed[proposed.SourceID] {
		return false
	}
	if e.rejectedAny[proposed.SourceID] || e.rejected[proposed.SourceID][proposed.DestID] {
		return false
	}

	accepted, issues := e.Validator.Validate(proposed, e.mappings)
	e.issues = append(e.issues, issues...)
	if !accepted {
		return false
	}

	final := proposed
	if e.Options.Interactive {
		switch {
		case proposed.Score >= e.Options.LowConfidenceThreshold:
			// auto-accept, no adjudicator call needed.
		case proposed.Score < e.Options.MinConfidenceThreshold:
			return false
		default:
			if e.Adjudicator == nil {
				return false
			}
			outcome := e.Adjudicator.Adjudicate(ctx, proposed, e.mappings[expandingFrom.sourceID])
			e.recordDecision(ctx, proposed, outcome)
			if outcome.Decision != domain.DecisionConfirmed || outcome.DestID == nil {
				return false
			}
			final.DestID = *outcome.DestID
		}
	}

	e.mappings[proposed.SourceID] = final
	e.processed[proposed.SourceID] = true
	return true
}

func (e *Engine) recordDecision(ctx context.Context, proposed domain.PersonMapping, outcome domain.AdjudicationOutcome) {
	if e.Store == nil {
		return
	}
	decision := domain.ConfirmedDecision{
		SourceID:      proposed.SourceID,
		Type:          outcome.Decision,
		ConfirmedAt:   e.clock(),
		OriginalScore: proposed.Score,
	}
	if outcome.Decision == domain.DecisionConfirmed {
		decision.DestID = outcome.DestID
	}
	_ = e.Store.Record(ctx, decision)
}

// seedExploration enqueues every still-unmapped member of fam at level so
// their own families may still be discovered downstream (§4.8 step 2
// "exploration seeds").
func (e *Engine) seedExploration(fam *domain.Family, level int, queue *[]queueItem) {
	members := make([]uuid.UUID, 0, len(fam.ChildIDs)+2)
	if fam.HusbandID != nil {
		members = append(members, *fam.HusbandID)
	}
	if fam.WifeID != nil {
		members = append(members, *fam.WifeID)
	}
	members = append(members, fam.ChildIDs...)

	for _, id := range members {
		if e.processed[id] {
			continue
		}
		if _, mapped := e.mappings[id]; mapped {
			continue
		}
		e.appendQueue(queue, id, level)
	}
}

// appendQueue marks sourceID processed (claiming it under preserve-first)
// and enqueues it, unless maxLevel pruning applies (§4.8 "maxLevel is
// advisory and applied by pruning enqueues").
func (e *Engine) appendQueue(queue *[]queueItem, sourceID uuid.UUID, level int) {
	e.processed[sourceID] = true
	if e.Options.MaxLevel > 0 && level > e.Options.MaxLevel {
		return
	}
	*queue = append(*queue, queueItem{sourceID: sourceID, level: level})
}

func (e *Engine) assembleResult(anchorSourceID, anchorDestID uuid.UUID, interrupted bool) domain.CompareResult {
	destIDs := e.mappings.DestIDs()

	var unmatchedSource []uuid.UUID
	for id := range e.SourceGraph.Persons {
		if _, mapped := e.mappings[id]; !mapped {
			unmatchedSource = append(unmatchedSource, id)
		}
	}
	sortUUIDs(unmatchedSource)

	var unmatchedDest []uuid.UUID
	for id := range e.DestGraph.Persons {
		if _, taken := destIDs[id]; !taken {
			unmatchedDest = append(unmatchedDest, id)
		}
	}
	sortUUIDs(unmatchedDest)

	maxLevel := 0
	for level := range e.levelStats {
		if level > maxLevel {
			maxLevel = level
		}
	}
	stats := make([]domain.LevelStats, 0, len(e.levelStats))
	for level := 0; level <= maxLevel; level++ {
		if ls, ok := e.levelStats[level]; ok {
			stats = append(stats, *ls)
		}
	}

	return domain.CompareResult{
		AnchorSourceID:     anchorSourceID,
		AnchorDestID:       anchorDestID,
		Options:            e.Options,
		Mappings:           e.mappings,
		UnmatchedSourceIDs: unmatchedSource,
		UnmatchedDestIDs:   unmatchedDest,
		ValidationIssues:   e.issues,
		LevelStats:         stats,
		Interrupted:        interrupted,
	}
}

// sortUUIDs orders ids lexically by string form, so the unmatched-id slices
// in CompareResult are byte-identical across runs instead of reflecting Go's
// randomized map iteration order (§8 "Determinism").
func sortUUIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
