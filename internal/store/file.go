package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/makhin/gedsync/internal/domain"
)

// FileStore persists the confirmed-mappings document as JSON at Path,
// written atomically (write to a sibling temp file, then rename) under an
// in-process mutex for the duration of each decision (§5).
type FileStore struct {
	Path            string
	SourceFile      string
	DestinationFile string

	mu sync.Mutex
}

// NewFileStore builds a FileStore writing to path.
func NewFileStore(path, sourceFile, destinationFile string) *FileStore {
	return &FileStore{Path: path, SourceFile: sourceFile, DestinationFile: destinationFile}
}

// Load reads the document from disk, returning an empty document if the
// file does not yet exist.
func (s *FileStore) Load(_ context.Context) (domain.ConfirmedMappingsDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (domain.ConfirmedMappingsDocument, error) {
	raw, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return domain.ConfirmedMappingsDocument{SourceFile: s.SourceFile, DestinationFile: s.DestinationFile}, nil
	}
	if err != nil {
		return domain.ConfirmedMappingsDocument{}, fmt.Errorf("read confirmed mappings file: %w", err)
	}

	var doc domain.ConfirmedMappingsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.ConfirmedMappingsDocument{}, fmt.Errorf("parse confirmed mappings file: %w", err)
	}
	return doc, nil
}

// Record upserts decision and rewrites the file atomically.
func (s *FileStore) Record(_ context.Context, decision domain.ConfirmedDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.SourceFile = s.SourceFile
	doc.DestinationFile = s.DestinationFile
	doc = upsertDecision(doc, decision)

	return s.writeAtomic(doc)
}

func (s *FileStore) writeAtomic(doc domain.ConfirmedMappingsDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal confirmed mappings document: %w", err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".confirmed-mappings-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp confirmed mappings file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp confirmed mappings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp confirmed mappings file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp confirmed mappings file: %w", err)
	}
	return nil
}
