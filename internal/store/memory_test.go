package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
)

func TestMemoryStore_RecordAndLoad(t *testing.T) {
	s := NewMemoryStore("source.ged", "dest.ged")
	ctx := context.Background()

	sourceID := uuid.New()
	destID := uuid.New()
	decision := domain.ConfirmedDecision{
		SourceID:      sourceID,
		DestID:        &destID,
		Type:          domain.DecisionConfirmed,
		ConfirmedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		OriginalScore: 82,
	}

	if err := s.Record(ctx, decision); err != nil {
		t.Fatalf("Record: %v", err)
	}

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.SourceFile != "source.ged" || doc.DestinationFile != "dest.ged" {
		t.Fatalf("unexpected file names: %+v", doc)
	}
	if len(doc.Mappings) != 1 || doc.Mappings[0].SourceID != sourceID {
		t.Fatalf("expected one mapping for %s, got %+v", sourceID, doc.Mappings)
	}
}

func TestMemoryStore_RecordOverwritesExistingDecision(t *testing.T) {
	s := NewMemoryStore("source.ged", "dest.ged")
	ctx := context.Background()

	sourceID := uuid.New()
	firstDest := uuid.New()
	secondDest := uuid.New()

	_ = s.Record(ctx, domain.ConfirmedDecision{SourceID: sourceID, DestID: &firstDest, Type: domain.DecisionConfirmed, OriginalScore: 60})
	_ = s.Record(ctx, domain.ConfirmedDecision{SourceID: sourceID, DestID: &secondDest, Type: domain.DecisionConfirmed, OriginalScore: 95})

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Mappings) != 1 {
		t.Fatalf("expected a single upserted mapping, got %d", len(doc.Mappings))
	}
	if doc.Mappings[0].DestID == nil || *doc.Mappings[0].DestID != secondDest {
		t.Fatalf("expected the later decision to win, got %+v", doc.Mappings[0])
	}
}

func TestMemoryStore_LoadReturnsDefensiveCopy(t *testing.T) {
	s := NewMemoryStore("source.ged", "dest.ged")
	ctx := context.Background()
	_ = s.Record(ctx, domain.ConfirmedDecision{SourceID: uuid.New(), Type: domain.DecisionRejected})

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	doc.Mappings[0].OriginalScore = 999

	again, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if again.Mappings[0].OriginalScore == 999 {
		t.Fatalf("mutating a loaded document must not affect the store's internal state")
	}
}
