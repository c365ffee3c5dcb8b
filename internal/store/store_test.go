package store

import (
	"context"
	"sync"
	"testing"

	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/session"
)

// mockAPI records calls and returns configurable results.
type mockAPI struct {
	mu sync.Mutex

	page        *model.CollectionPage
	created     *model.Collection
	docs        []model.FileEntry
	msgs        []model.ChatMessage
	err         error
	listCalls   int
	lastToken   string
	docsGate    chan struct{} // when set, ListDocuments blocks until closed
	deletedDocs []string
}

func (m *mockAPI) ListCollections(_ context.Context, page, pageSize int) (*model.CollectionPage, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *mockAPI) CreateCollection(_ context.Context, req model.CreateCollectionRequest) (*model.Collection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.created, nil
}

func (m *mockAPI) DeleteCollection(_ context.Context, id, token string) error {
	m.mu.Lock()
	m.lastToken = token
	m.mu.Unlock()
	return m.err
}

func (m *mockAPI) ListDocuments(_ context.Context, id, token string) ([]model.FileEntry, error) {
	m.mu.Lock()
	m.lastToken = token
	gate := m.docsGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return m.docs, m.err
}

func (m *mockAPI) ListMessages(_ context.Context, id, token string) ([]model.ChatMessage, error) {
	return m.msgs, m.err
}

func (m *mockAPI) DeleteDocument(_ context.Context, id, docID, token string) error {
	m.mu.Lock()
	m.lastToken = token
	m.deletedDocs = append(m.deletedDocs, docID)
	m.mu.Unlock()
	return m.err
}

func newTestStore(api *mockAPI) (*Store, *session.Memory, *session.Memory) {
	sess := session.NewMemory()
	durable := session.NewMemory()
	return New(api, sess, durable, bus.New(), 20, nil), sess, durable
}

func seed(s *Store, cols ...*model.Collection) {
	s.mu.Lock()
	s.collections = append(s.collections[:0], cols...)
	s.pagination = model.PaginationMeta{Page: 1, PageSize: 20, Total: len(cols), TotalPages: 1}
	s.mu.Unlock()
}

func TestReplaceCollectionKeepsKnownCounts(t *testing.T) {
	s, _, _ := newTestStore(&mockAPI{})
	seed(s, &model.Collection{ID: "c1", Name: "Taxes", DocumentCount: 5, MessageCount: 3})

	// A racing detail response reports zero for both counts.
	s.ReplaceCollection(&model.Collection{ID: "c1", Name: "Taxes renamed"})

	got := s.Collection("c1")
	if got.Name != "Taxes renamed" {
		t.Errorf("name = %q, want replaced", got.Name)
	}
	if got.DocumentCount != 5 || got.MessageCount != 3 {
		t.Errorf("counts = %d/%d, want preserved 5/3", got.DocumentCount, got.MessageCount)
	}
}

func TestReplaceCollectionAppliesNonZeroCounts(t *testing.T) {
	s, _, _ := newTestStore(&mockAPI{})
	seed(s, &model.Collection{ID: "c1", DocumentCount: 5, MessageCount: 3})

	s.ReplaceCollection(&model.Collection{ID: "c1", DocumentCount: 2, MessageCount: 0})

	got := s.Collection("c1")
	if got.DocumentCount != 2 {
		t.Errorf("document_count = %d, want 2", got.DocumentCount)
	}
}

func TestLoadDetailAppliedWhenStillActive(t *testing.T) {
	api := &mockAPI{
		docs: []model.FileEntry{{ID: "d1", Filename: "a.pdf"}},
		msgs: []model.ChatMessage{{ID: "m1", Role: model.RoleUser, Content: "hi"}},
	}
	s, _, _ := newTestStore(api)
	seed(s, &model.Collection{ID: "c1", IsPublic: true})
	s.SetActiveCollection("c1")

	if err := s.LoadDetail(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	got := s.Collection("c1")
	if len(got.Files) != 1 || len(got.Messages) != 1 {
		t.Errorf("detail not applied: %d files, %d messages", len(got.Files), len(got.Messages))
	}
	if got.DocumentCount != 1 || got.MessageCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", got.DocumentCount, got.MessageCount)
	}
}

func TestLoadDetailDroppedWhenNavigatedAway(t *testing.T) {
	gate := make(chan struct{})
	api := &mockAPI{docs: []model.FileEntry{{ID: "d1"}}, docsGate: gate}
	s, _, _ := newTestStore(api)
	seed(s,
		&model.Collection{ID: "c1", IsPublic: true, DocumentCount: 2},
		&model.Collection{ID: "c2", IsPublic: true},
	)
	s.SetActiveCollection("c1")

	done := make(chan error, 1)
	go func() { done <- s.LoadDetail(context.Background(), "c1") }()

	// User navigates away while the response is in flight.
	s.SetActiveCollection("c2")
	close(gate)

	if err := <-done; err != nil {
		t.Fatal(err)
	}

	got := s.Collection("c1")
	if got.Files != nil {
		t.Error("stale detail response was applied after navigation")
	}
	if got.DocumentCount != 2 {
		t.Errorf("document_count = %d, want untouched 2", got.DocumentCount)
	}
}

func TestLoadDetailEmptyDistinctFromUnloaded(t *testing.T) {
	api := &mockAPI{} // backend returns null arrays
	s, _, _ := newTestStore(api)
	seed(s, &model.Collection{ID: "c1", IsPublic: true})
	s.SetActiveCollection("c1")

	if err := s.LoadDetail(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	got := s.Collection("c1")
	if got.Files == nil || got.Messages == nil {
		t.Error("loaded-and-empty must be non-nil slices")
	}
}

func TestSetPageOutOfRangeIgnored(t *testing.T) {
	api := &mockAPI{page: &model.CollectionPage{Pagination: model.PaginationMeta{Page: 1, PageSize: 20, Total: 1, TotalPages: 1}}}
	s, _, _ := newTestStore(api)
	seed(s, &model.Collection{ID: "c1"})

	if err := s.SetPage(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPage(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if api.listCalls != 0 {
		t.Errorf("backend called %d times for out-of-range pages, want 0", api.listCalls)
	}

	if err := s.SetPage(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if api.listCalls != 1 {
		t.Errorf("backend called %d times for valid page, want 1", api.listCalls)
	}
}

func TestActiveCollectionPersistedAndRestored(t *testing.T) {
	api := &mockAPI{page: &model.CollectionPage{
		Items:      []model.Collection{{ID: "c1"}, {ID: "c2"}},
		Pagination: model.PaginationMeta{Page: 1, PageSize: 20, Total: 2, TotalPages: 1},
	}}
	s, _, durable := newTestStore(api)

	seed(s, &model.Collection{ID: "c2"})
	s.SetActiveCollection("c2")
	if v, _ := durable.Get(session.ActiveCollectionKey); v != "c2" {
		t.Fatalf("persisted id = %q, want c2", v)
	}

	// A fresh store sharing the durable scope restores the selection.
	restored := New(api, session.NewMemory(), durable, bus.New(), 20, nil)
	if err := restored.LoadCollections(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if restored.ActiveID() != "c2" {
		t.Errorf("active = %q, want restored c2", restored.ActiveID())
	}
}

func TestActiveCollectionClearedWhenAbsent(t *testing.T) {
	api := &mockAPI{page: &model.CollectionPage{
		Items:      []model.Collection{{ID: "c1"}},
		Pagination: model.PaginationMeta{Page: 1, PageSize: 20, Total: 1, TotalPages: 1},
	}}
	s, _, durable := newTestStore(api)
	durable.Set(session.ActiveCollectionKey, "gone")

	if err := s.LoadCollections(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != "" {
		t.Errorf("active = %q, want empty", s.ActiveID())
	}
	if _, ok := durable.Get(session.ActiveCollectionKey); ok {
		t.Error("persisted id not cleared for absent collection")
	}
}

func TestDeletePurgesSessionState(t *testing.T) {
	api := &mockAPI{}
	s, sess, durable := newTestStore(api)
	seed(s, &model.Collection{ID: "c1", IsPublic: false})
	sess.Set(session.TokenKey("c1"), "tok")
	sess.Set(session.UnlockedKey("c1"), "1")
	s.SetActiveCollection("c1")

	if err := s.Delete(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	if api.lastToken != "tok" {
		t.Errorf("delete sent token %q, want tok (private collection)", api.lastToken)
	}
	if s.Collection("c1") != nil {
		t.Error("collection still in list")
	}
	if _, ok := sess.Get(session.TokenKey("c1")); ok {
		t.Error("token not purged")
	}
	if _, ok := sess.Get(session.UnlockedKey("c1")); ok {
		t.Error("unlocked mark not purged")
	}
	if _, ok := durable.Get(session.ActiveCollectionKey); ok {
		t.Error("persisted active id not purged")
	}
	if got := s.Pagination().Total; got != 0 {
		t.Errorf("total = %d, want 0 after patch", got)
	}
}

func TestPublicCollectionNeverSendsToken(t *testing.T) {
	api := &mockAPI{}
	s, sess, _ := newTestStore(api)
	seed(s, &model.Collection{ID: "c1", IsPublic: true})
	sess.Set(session.TokenKey("c1"), "cached")

	if err := s.Delete(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	if api.lastToken != "" {
		t.Errorf("public collection sent token %q", api.lastToken)
	}
}

func TestCreatePrependsAndPatchesPagination(t *testing.T) {
	api := &mockAPI{created: &model.Collection{ID: "new", Name: "Taxes", IsPublic: false}}
	s, _, _ := newTestStore(api)
	seed(s, &model.Collection{ID: "c1"})

	created, err := s.Create(context.Background(), model.CreateCollectionRequest{Name: "Taxes", Code: "1234"})
	if err != nil {
		t.Fatal(err)
	}
	if created.DocumentCount != 0 {
		t.Errorf("new collection document_count = %d, want 0", created.DocumentCount)
	}

	cols := s.Collections()
	if len(cols) != 2 || cols[0].ID != "new" {
		t.Errorf("new collection not at head of list: %+v", cols)
	}
	if got := s.Pagination().Total; got != 2 {
		t.Errorf("total = %d, want 2 after patch", got)
	}
}

func TestAppendMessageRecomputesCount(t *testing.T) {
	s, _, _ := newTestStore(&mockAPI{})
	seed(s, &model.Collection{ID: "c1", Messages: []model.ChatMessage{{ID: "m1"}}, MessageCount: 1})

	s.AppendMessage("c1", model.ChatMessage{ID: "m2", Role: model.RoleUser, Content: "hi"})

	got := s.Collection("c1")
	if len(got.Messages) != 2 || got.MessageCount != 2 {
		t.Errorf("messages = %d, count = %d, want 2/2", len(got.Messages), got.MessageCount)
	}
	if got.Messages[1].ID != "m2" {
		t.Error("append order violated")
	}
}

func TestSessionIDStable(t *testing.T) {
	s, _, _ := newTestStore(&mockAPI{})

	first := s.SessionID()
	if first == "" {
		t.Fatal("empty session id")
	}
	if second := s.SessionID(); second != first {
		t.Errorf("session id changed between calls: %q != %q", second, first)
	}
}

func TestDeleteDocumentRemovesRow(t *testing.T) {
	api := &mockAPI{}
	s, _, _ := newTestStore(api)
	seed(s, &model.Collection{
		ID: "c1", IsPublic: true,
		Files:         []model.FileEntry{{ID: "d1"}, {ID: "d2"}},
		DocumentCount: 2,
	})

	if err := s.DeleteDocument(context.Background(), "c1", "d1"); err != nil {
		t.Fatal(err)
	}

	got := s.Collection("c1")
	if len(got.Files) != 1 || got.Files[0].ID != "d2" {
		t.Errorf("files = %+v, want only d2", got.Files)
	}
	if got.DocumentCount != 1 {
		t.Errorf("document_count = %d, want 1", got.DocumentCount)
	}
	if len(api.deletedDocs) != 1 || api.deletedDocs[0] != "d1" {
		t.Errorf("backend deletions = %v, want [d1]", api.deletedDocs)
	}
}
