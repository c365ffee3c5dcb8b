// Package store holds the client's view of server state: the paginated
// collection list, the active collection's detail and the session fallback
// chat. Records are replaced wholesale, never mutated in place, so
// snapshots handed to the UI stay stable.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/session"
	"go.uber.org/zap"
)

// API is the slice of the backend client the store consumes.
type API interface {
	ListCollections(ctx context.Context, page, pageSize int) (*model.CollectionPage, error)
	CreateCollection(ctx context.Context, req model.CreateCollectionRequest) (*model.Collection, error)
	DeleteCollection(ctx context.Context, id, token string) error
	ListDocuments(ctx context.Context, id, token string) ([]model.FileEntry, error)
	ListMessages(ctx context.Context, id, token string) ([]model.ChatMessage, error)
	DeleteDocument(ctx context.Context, id, docID, token string) error
}

// Store is the view-state store.
type Store struct {
	mu       sync.RWMutex
	api      API
	session  session.Storage
	durable  session.Storage
	bus      *bus.Bus
	logger   *zap.Logger
	pageSize int

	collections []*model.Collection
	pagination  model.PaginationMeta
	activeID    string
	loading     bool
	sessionMsgs []model.ChatMessage
}

// New creates a store over the backend API and the two storage scopes.
func New(api API, sess, durable session.Storage, b *bus.Bus, pageSize int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Store{
		api:      api,
		session:  sess,
		durable:  durable,
		bus:      b,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Token returns the bearer token to send for a collection. Public
// collections never send one, even if a token is cached.
func (s *Store) Token(c *model.Collection) string {
	if c == nil || c.IsPublic {
		return ""
	}
	tok, _ := s.session.Get(session.TokenKey(c.ID))
	return tok
}

// LoadCollections fetches one page of the listing and replaces the local
// list. The persisted active collection id is restored when present in the
// page and cleared otherwise.
func (s *Store) LoadCollections(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	res, err := s.api.ListCollections(ctx, page, s.pageSize)
	if err != nil {
		return fmt.Errorf("load collections: %w", err)
	}

	s.mu.Lock()
	s.collections = make([]*model.Collection, 0, len(res.Items))
	for i := range res.Items {
		s.collections = append(s.collections, res.Items[i].Clone())
	}
	s.pagination = res.Pagination

	wanted := s.activeID
	if wanted == "" {
		wanted, _ = s.durable.Get(session.ActiveCollectionKey)
	}
	if wanted != "" {
		if s.findLocked(wanted) != nil {
			s.activeID = wanted
		} else {
			s.activeID = ""
			s.durable.Delete(session.ActiveCollectionKey)
		}
	}
	s.mu.Unlock()

	s.bus.Emit(bus.KindCollectionsLoaded, res.Pagination.Page)
	return nil
}

// SetPage re-fetches the listing at the requested page. Out-of-range
// pages are silently ignored.
func (s *Store) SetPage(ctx context.Context, page int) error {
	s.mu.RLock()
	totalPages := s.pagination.TotalPages
	s.mu.RUnlock()

	if page < 1 || (totalPages > 0 && page > totalPages) {
		return nil
	}
	return s.LoadCollections(ctx, page)
}

// Create creates a collection on the backend and inserts it at the head
// of the list, patching the pagination totals instead of refetching.
func (s *Store) Create(ctx context.Context, req model.CreateCollectionRequest) (*model.Collection, error) {
	created, err := s.api.CreateCollection(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	s.mu.Lock()
	s.collections = append([]*model.Collection{created.Clone()}, s.collections...)
	s.pagination.Total++
	s.recomputeTotalPagesLocked()
	s.mu.Unlock()

	s.bus.Emit(bus.KindCollectionCreated, created.ID)
	return created, nil
}

// Delete removes a collection from the backend and the local list. Its
// token, unlocked mark and persisted active id are purged at the same
// moment.
func (s *Store) Delete(ctx context.Context, id string) error {
	c := s.Collection(id)
	if c == nil {
		return fmt.Errorf("delete collection: unknown id %s", id)
	}
	if err := s.api.DeleteCollection(ctx, id, s.Token(c)); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	s.mu.Lock()
	for i, existing := range s.collections {
		if existing.ID == id {
			s.collections = append(s.collections[:i], s.collections[i+1:]...)
			break
		}
	}
	if s.pagination.Total > 0 {
		s.pagination.Total--
	}
	s.recomputeTotalPagesLocked()
	if s.activeID == id {
		s.activeID = ""
		s.durable.Delete(session.ActiveCollectionKey)
	}
	s.session.Delete(session.TokenKey(id))
	s.session.Delete(session.UnlockedKey(id))
	s.mu.Unlock()

	s.bus.Emit(bus.KindCollectionDeleted, id)
	return nil
}

// SetActiveCollection marks a collection active and persists the choice.
// It does not load detail; callers trigger LoadDetail separately.
func (s *Store) SetActiveCollection(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	s.durable.Set(session.ActiveCollectionKey, id)
	s.bus.Emit(bus.KindCollectionActive, id)
}

// ClearActive returns to the no-collection state and drops the persisted id.
func (s *Store) ClearActive() {
	s.mu.Lock()
	s.activeID = ""
	s.mu.Unlock()
	s.durable.Delete(session.ActiveCollectionKey)
	s.bus.Emit(bus.KindCollectionActive, "")
}

// LoadDetail fetches a collection's documents and messages in parallel.
// The result is applied only if the collection is still the active one
// when both responses are in; a stale response is dropped, not cancelled.
func (s *Store) LoadDetail(ctx context.Context, id string) error {
	c := s.Collection(id)
	if c == nil {
		return fmt.Errorf("load detail: unknown id %s", id)
	}
	token := s.Token(c)

	var (
		wg      sync.WaitGroup
		files   []model.FileEntry
		msgs    []model.ChatMessage
		filesEr error
		msgsEr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		files, filesEr = s.api.ListDocuments(ctx, id, token)
	}()
	go func() {
		defer wg.Done()
		msgs, msgsEr = s.api.ListMessages(ctx, id, token)
	}()
	wg.Wait()

	if filesEr != nil {
		return fmt.Errorf("load documents: %w", filesEr)
	}
	if msgsEr != nil {
		return fmt.Errorf("load messages: %w", msgsEr)
	}
	if files == nil {
		files = []model.FileEntry{}
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}

	s.mu.Lock()
	if s.activeID != id {
		s.mu.Unlock()
		s.logger.Debug("dropping stale detail response", zap.String("collection", id))
		return nil
	}
	existing := s.findLocked(id)
	if existing == nil {
		s.mu.Unlock()
		return nil
	}
	updated := existing.Clone()
	updated.Files = files
	updated.Messages = msgs
	updated.DocumentCount = len(files)
	updated.MessageCount = len(msgs)
	s.replaceLocked(updated)
	s.mu.Unlock()

	s.bus.Emit(bus.KindDetailLoaded, bus.DetailLoaded{CollectionID: id, Messages: msgs})
	return nil
}

// ReplaceCollection merges an updated record into the list by id,
// guarding previously known counts against a zero-count race.
func (s *Store) ReplaceCollection(updated *model.Collection) {
	s.mu.Lock()
	s.replaceLocked(updated)
	s.mu.Unlock()
	s.bus.Emit(bus.KindCollectionReplaced, updated.ID)
}

// replaceLocked swaps the stored record for updated's clone. A record
// reporting zero documents and zero messages keeps the counts already
// known for it: a detail endpoint returning empty during a race must not
// erase totals shown in the summary list.
func (s *Store) replaceLocked(updated *model.Collection) {
	for i, existing := range s.collections {
		if existing.ID != updated.ID {
			continue
		}
		merged := updated.Clone()
		if merged.DocumentCount == 0 && merged.MessageCount == 0 &&
			(existing.DocumentCount > 0 || existing.MessageCount > 0) {
			merged.DocumentCount = existing.DocumentCount
			merged.MessageCount = existing.MessageCount
		}
		s.collections[i] = merged
		return
	}
	// Unknown id: nothing to merge against, keep the record as given.
	s.collections = append(s.collections, updated.Clone())
}

// swapLocked replaces a record without the count guard. Used by mutators
// whose file/message slices are themselves the authoritative local state,
// where the recomputed counts must win even when they drop to zero.
func (s *Store) swapLocked(updated *model.Collection) {
	for i, existing := range s.collections {
		if existing.ID == updated.ID {
			s.collections[i] = updated
			return
		}
	}
}

func (s *Store) findLocked(id string) *model.Collection {
	for _, c := range s.collections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) recomputeTotalPagesLocked() {
	if s.pagination.PageSize <= 0 {
		s.pagination.PageSize = s.pageSize
	}
	s.pagination.TotalPages = (s.pagination.Total + s.pagination.PageSize - 1) / s.pagination.PageSize
}

// Collections returns a snapshot of the current page.
func (s *Store) Collections() []*model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Collection, len(s.collections))
	copy(out, s.collections)
	return out
}

// Collection returns the record with the given id, or nil.
func (s *Store) Collection(id string) *model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

// Active returns the active collection record, or nil when none is
// selected.
func (s *Store) Active() *model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return nil
	}
	return s.findLocked(s.activeID)
}

// ActiveID returns the active collection id, empty when none.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Pagination returns the current pagination meta.
func (s *Store) Pagination() model.PaginationMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}
