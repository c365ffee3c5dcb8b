package store

import (
	"context"
	"fmt"

	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/model"
)

// AddPendingFiles splices placeholder rows into a collection's file list
// so the UI reflects an upload before the network settles.
func (s *Store) AddPendingFiles(collectionID string, entries []model.FileEntry) {
	s.mu.Lock()
	existing := s.findLocked(collectionID)
	if existing == nil {
		s.mu.Unlock()
		return
	}
	updated := existing.Clone()
	updated.Files = append(updated.Files, entries...)
	updated.DocumentCount = len(updated.Files)
	s.swapLocked(updated)
	s.mu.Unlock()

	s.bus.Emit(bus.KindFilesChanged, collectionID)
}

// PromoteUploads removes every pending row and appends the authoritative
// rows the backend returned, recomputing the document count.
func (s *Store) PromoteUploads(collectionID string, confirmed []model.FileEntry) {
	s.replaceFiles(collectionID, confirmed)
}

// RollbackUploads removes every pending row, leaving only previously
// confirmed entries. The batch is atomic from the UI's perspective.
func (s *Store) RollbackUploads(collectionID string) {
	s.replaceFiles(collectionID, nil)
}

func (s *Store) replaceFiles(collectionID string, confirmed []model.FileEntry) {
	s.mu.Lock()
	existing := s.findLocked(collectionID)
	if existing == nil {
		s.mu.Unlock()
		return
	}
	updated := existing.Clone()
	kept := make([]model.FileEntry, 0, len(updated.Files)+len(confirmed))
	for _, f := range updated.Files {
		if !f.Pending {
			kept = append(kept, f)
		}
	}
	kept = append(kept, confirmed...)
	updated.Files = kept
	updated.DocumentCount = len(kept)
	s.swapLocked(updated)
	s.mu.Unlock()

	s.bus.Emit(bus.KindFilesChanged, collectionID)
}

// DeleteDocument removes a confirmed document from the backend and from
// the local file list.
func (s *Store) DeleteDocument(ctx context.Context, collectionID, docID string) error {
	c := s.Collection(collectionID)
	if c == nil {
		return fmt.Errorf("delete document: unknown collection %s", collectionID)
	}
	if err := s.api.DeleteDocument(ctx, collectionID, docID, s.Token(c)); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.mu.Lock()
	existing := s.findLocked(collectionID)
	if existing != nil {
		updated := existing.Clone()
		kept := make([]model.FileEntry, 0, len(updated.Files))
		for _, f := range updated.Files {
			if f.ID != docID {
				kept = append(kept, f)
			}
		}
		updated.Files = kept
		updated.DocumentCount = len(kept)
		s.swapLocked(updated)
	}
	s.mu.Unlock()

	s.bus.Emit(bus.KindFilesChanged, collectionID)
	return nil
}
