// Package store implements ConfirmedMappingsStore (§6): reading and
// writing the persisted decision document an InteractiveAdjudicator
// consults across runs. The default backend is a local JSON file written
// atomically (temp file + rename, matching the teacher's sqlite/postgres
// backends' "never leave a half-written document" discipline); postgres
// and sqlite backends are provided for deployments that already run one of
// those databases for other state.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
)

// ConfirmedMappingsStore persists adjudication decisions keyed by source
// person id.
type ConfirmedMappingsStore interface {
	// Load returns every persisted decision for the given source/destination
	// tree file pair, or an empty document if none exists yet.
	Load(ctx context.Context) (domain.ConfirmedMappingsDocument, error)

	// Record appends or overwrites the decision for sourceID and persists
	// the document (§5 "write to temp, rename" under an exclusive lock held
	// for the duration of the decision).
	Record(ctx context.Context, decision domain.ConfirmedDecision) error
}

// byDecisionSource indexes a document's decisions by source id, last
// decision for a given source wins.
func byDecisionSource(doc domain.ConfirmedMappingsDocument) map[uuid.UUID]domain.ConfirmedDecision {
	out := make(map[uuid.UUID]domain.ConfirmedDecision, len(doc.Mappings))
	for _, d := range doc.Mappings {
		out[d.SourceID] = d
	}
	return out
}

func upsertDecision(doc domain.ConfirmedMappingsDocument, decision domain.ConfirmedDecision) domain.ConfirmedMappingsDocument {
	byID := byDecisionSource(doc)
	byID[decision.SourceID] = decision

	out := doc
	out.Mappings = make([]domain.ConfirmedDecision, 0, len(byID))
	replaced := false
	for _, d := range doc.Mappings {
		if d.SourceID == decision.SourceID {
			if !replaced {
				out.Mappings = append(out.Mappings, decision)
				replaced = true
			}
			continue
		}
		out.Mappings = append(out.Mappings, d)
	}
	if !replaced {
		out.Mappings = append(out.Mappings, decision)
	}
	return out
}
