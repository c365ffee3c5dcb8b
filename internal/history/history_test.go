package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/model"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestInsertAndListMessages(t *testing.T) {
	db := testDB(t)

	msgs := []model.ChatMessage{
		{ID: "m1", Role: model.RoleUser, Content: "hi", CreatedAt: 1000},
		{ID: "m2", Role: model.RoleAssistant, Content: "hello", CreatedAt: 2000},
	}
	for _, m := range msgs {
		if err := db.InsertMessage("c1", m); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListMessages("c1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].ID != "m1" || got[1].ID != "m2" {
		t.Errorf("order = %s,%s, want m1,m2 (append order)", got[0].ID, got[1].ID)
	}

	// Other collections see nothing.
	other, err := db.ListMessages("c2", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("got %d messages for c2, want 0", len(other))
	}
}

func TestInsertMessageIdempotent(t *testing.T) {
	db := testDB(t)

	m := model.ChatMessage{ID: "m1", Role: model.RoleUser, Content: "hi", CreatedAt: 1000}
	if err := db.InsertMessage("c1", m); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertMessage("c1", m); err != nil {
		t.Fatal(err)
	}

	got, _ := db.ListMessages("c1", 10)
	if len(got) != 1 {
		t.Errorf("got %d messages, want 1 (idempotent)", len(got))
	}
}

func TestPurgeCollection(t *testing.T) {
	db := testDB(t)

	_ = db.InsertMessage("c1", model.ChatMessage{ID: "m1", Role: model.RoleUser, Content: "hi", CreatedAt: 1})
	_ = db.InsertMessage("c2", model.ChatMessage{ID: "m1", Role: model.RoleUser, Content: "other", CreatedAt: 1})

	if err := db.PurgeCollection("c1"); err != nil {
		t.Fatal(err)
	}

	got, _ := db.ListMessages("c1", 10)
	if len(got) != 0 {
		t.Errorf("c1 still has %d messages after purge", len(got))
	}
	kept, _ := db.ListMessages("c2", 10)
	if len(kept) != 1 {
		t.Errorf("purge removed messages from other collections")
	}
}

func TestStateStore(t *testing.T) {
	db := testDB(t)
	s := NewStateStore(db, nil)

	if _, ok := s.Get("active_collection_id"); ok {
		t.Error("empty state reported a value")
	}

	s.Set("active_collection_id", "c1")
	if v, ok := s.Get("active_collection_id"); !ok || v != "c1" {
		t.Errorf("Get = %q/%v, want c1/true", v, ok)
	}

	s.Set("active_collection_id", "c2")
	if v, _ := s.Get("active_collection_id"); v != "c2" {
		t.Errorf("Get = %q, want c2 (overwrite)", v)
	}

	s.Delete("active_collection_id")
	if _, ok := s.Get("active_collection_id"); ok {
		t.Error("value still present after Delete")
	}
}

func TestRecorderMirrorsBusEvents(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	r := NewRecorder(db, b, nil)
	r.Start(context.Background())
	defer r.Stop()

	b.Emit(bus.KindMessageAppended, bus.MessageAppended{
		CollectionID: "c1",
		Message:      model.ChatMessage{ID: "m1", Role: model.RoleUser, Content: "hi", CreatedAt: 1},
	})
	b.Emit(bus.KindDetailLoaded, bus.DetailLoaded{
		CollectionID: "c1",
		Messages: []model.ChatMessage{
			{ID: "m1", Role: model.RoleUser, Content: "hi", CreatedAt: 1},
			{ID: "m2", Role: model.RoleAssistant, Content: "hello", CreatedAt: 2},
		},
	})

	waitFor(t, func() bool {
		msgs, _ := db.ListMessages("c1", 10)
		return len(msgs) == 2
	})

	b.Emit(bus.KindCollectionDeleted, "c1")

	waitFor(t, func() bool {
		msgs, _ := db.ListMessages("c1", 10)
		return len(msgs) == 0
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
