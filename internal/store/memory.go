package store

import (
	"context"
	"sync"

	"github.com/makhin/gedsync/internal/domain"
)

// MemoryStore is an in-memory ConfirmedMappingsStore for tests and
// single-process runs that don't need durability.
type MemoryStore struct {
	mu  sync.RWMutex
	doc domain.ConfirmedMappingsDocument
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore(sourceFile, destinationFile string) *MemoryStore {
	return &MemoryStore{doc: domain.ConfirmedMappingsDocument{SourceFile: sourceFile, DestinationFile: destinationFile}}
}

// Load returns a copy of the current document.
func (s *MemoryStore) Load(_ context.Context) (domain.ConfirmedMappingsDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := s.doc
	doc.Mappings = append([]domain.ConfirmedDecision(nil), s.doc.Mappings...)
	return doc, nil
}

// Record upserts decision into the in-memory document.
func (s *MemoryStore) Record(_ context.Context, decision domain.ConfirmedDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = upsertDecision(s.doc, decision)
	return nil
}
