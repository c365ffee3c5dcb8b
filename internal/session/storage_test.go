package session

import (
	"path/filepath"
	"testing"
)

func TestMemoryStorage(t *testing.T) {
	s := NewMemory()

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store reported ok")
	}

	s.Set(TokenKey("c1"), "tok")
	if v, ok := s.Get("access_token_c1"); !ok || v != "tok" {
		t.Errorf("Get = %q/%v, want tok/true", v, ok)
	}

	s.Delete(TokenKey("c1"))
	if _, ok := s.Get(TokenKey("c1")); ok {
		t.Error("token still present after Delete")
	}
}

func TestBaseDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCCHAT_HOME", dir)

	if got := BaseDir(); got != dir {
		t.Errorf("BaseDir = %q, want %q", got, dir)
	}
	if got := DBPath(); got != filepath.Join(dir, "docchat.db") {
		t.Errorf("DBPath = %q", got)
	}

	if err := EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
}
