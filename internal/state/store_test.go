package state

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/manifest"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(fsops.NewRealFS(), filepath.Join(dir, ".kitforge", "state.json"))

	applied := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	saved := &TreeState{
		Applied: []AppliedKit{
			{ID: "foundation-auth", Version: 2, Timestamp: applied},
			{ID: "stripe-checkout", Version: 1, Timestamp: applied.Add(time.Second)},
		},
		Paths: map[string]PathOwnership{
			"src/auth/session.ts": {
				Policy:    manifest.PolicyExclusive,
				Kits:      []string{"foundation-auth"},
				Checksum:  "abc123",
				Timestamp: applied,
			},
			"src/routes.ts": {
				Policy:    manifest.PolicyAppendable,
				Kits:      []string{"foundation-auth", "stripe-checkout"},
				Checksum:  "def456",
				Timestamp: applied.Add(time.Second),
			},
		},
	}

	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, saved)
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(fsops.NewRealFS(), filepath.Join(t.TempDir(), ".kitforge", "state.json"))

	_, err := store.Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewFileStore(fsops.NewRealFS(), path).Load()
	if err == nil {
		t.Fatal("Load succeeded on corrupt state")
	}
}

func TestFileStore_LoadNormalizesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte(`{"applied": []}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := NewFileStore(fsops.NewRealFS(), path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Paths == nil {
		t.Error("Paths map should be initialized on load")
	}
}

func TestTreeState_Find(t *testing.T) {
	s := NewTreeState()
	s.Applied = append(s.Applied, AppliedKit{ID: "foundation-auth", Version: 2})

	if !s.IsApplied("foundation-auth") {
		t.Error("IsApplied = false for an applied kit")
	}
	if s.IsApplied("stripe-checkout") {
		t.Error("IsApplied = true for a kit never applied")
	}

	record, ok := s.Find("foundation-auth")
	if !ok || record.Version != 2 {
		t.Errorf("Find = %+v, %v; want version 2 record", record, ok)
	}
}

func TestPathOwnership_Owns(t *testing.T) {
	o := PathOwnership{Kits: []string{"foundation-auth", "stripe-checkout"}}
	if !o.Owns("stripe-checkout") {
		t.Error("Owns = false for a contributing kit")
	}
	if o.Owns("email-sender") {
		t.Error("Owns = true for a non-contributing kit")
	}
}
