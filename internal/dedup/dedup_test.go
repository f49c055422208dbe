package dedup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("AI Breakthrough", "New model released")
	b := Fingerprint("AI Breakthrough", "New model released")
	if a != b {
		t.Errorf("same input produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a))
	}
}

func TestFingerprint_NormalizesCaseAndSpace(t *testing.T) {
	a := Fingerprint("  AI Breakthrough  ", "New model released")
	b := Fingerprint("ai breakthrough", "NEW MODEL RELEASED")
	if a != b {
		t.Errorf("normalization failed: %s vs %s", a, b)
	}
}

func TestFingerprint_DifferentContentDiffers(t *testing.T) {
	a := Fingerprint("Title one", "desc")
	b := Fingerprint("Title two", "desc")
	if a == b {
		t.Errorf("different titles produced the same fingerprint")
	}
}

func TestStore_UsedWithinRetentionWindow(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "used.json"), 7*24*time.Hour)
	now := time.Now()

	s.MarkUsed("abc", now.Add(-6*24*time.Hour))
	if !s.isUsedAt("abc", now) {
		t.Errorf("entry 6 days old should still count as used")
	}

	s.MarkUsed("old", now.Add(-8*24*time.Hour))
	if s.isUsedAt("old", now) {
		t.Errorf("entry 8 days old should have expired")
	}

	if s.isUsedAt("never-seen", now) {
		t.Errorf("unknown fingerprint reported as used")
	}
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "used.json")
	now := time.Now()

	s := NewStore(path, 7*24*time.Hour)
	s.MarkUsed("keep", now)
	s.Save()

	loaded := NewStore(path, 7*24*time.Hour)
	loaded.Load()
	if !loaded.IsUsed("keep") {
		t.Errorf("fingerprint lost across save/load")
	}
	if loaded.Len() != 1 {
		t.Errorf("loaded %d entries, want 1", loaded.Len())
	}
}

func TestStore_LoadPurgesExpiredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "used.json")
	now := time.Now()

	s := NewStore(path, 7*24*time.Hour)
	s.MarkUsed("fresh", now)
	s.MarkUsed("stale", now.Add(-10*24*time.Hour))
	s.Save()

	loaded := NewStore(path, 7*24*time.Hour)
	loaded.Load()
	if loaded.Len() != 1 {
		t.Errorf("expired entry survived load, have %d entries", loaded.Len())
	}
	if !loaded.IsUsed("fresh") {
		t.Errorf("fresh entry was purged")
	}
}

func TestStore_LoadMissingFileStartsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"), time.Hour)
	s.Load()
	if s.Len() != 0 {
		t.Errorf("missing file should load as empty, got %d entries", s.Len())
	}
}

func TestStore_LoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "used.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s := NewStore(path, time.Hour)
	s.Load()
	if s.Len() != 0 {
		t.Errorf("corrupt file should load as empty, got %d entries", s.Len())
	}

	// The store must stay writable after a corrupt load.
	s.MarkUsed("x", time.Now())
	s.Save()
	if !s.IsUsed("x") {
		t.Errorf("store unusable after corrupt load")
	}
}

func TestStore_ResetClearsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "used.json")
	s := NewStore(path, time.Hour)
	s.MarkUsed("a", time.Now())
	s.MarkUsed("b", time.Now())
	s.Save()

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("reset left %d entries", s.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("reset did not remove the store file")
	}

	// Reset of an already empty store is fine.
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("second reset changed state")
	}
}

func TestStore_PurgeDropsOnlyExpired(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "used.json"), time.Hour)
	now := time.Now()
	s.MarkUsed("new", now.Add(-30*time.Minute))
	s.MarkUsed("old", now.Add(-2*time.Hour))

	s.Purge(now)
	if s.Len() != 1 {
		t.Errorf("purge kept %d entries, want 1", s.Len())
	}
	if !s.isUsedAt("new", now) {
		t.Errorf("purge dropped a live entry")
	}
}
