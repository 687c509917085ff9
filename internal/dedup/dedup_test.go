package dedup

import (
	"path/filepath"
	"testing"
)

func TestTrackerPersistsAcrossReload(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "acct.seen")

	tr, err := NewTracker(file)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	if tr.Contains("a") {
		t.Error("fresh tracker should not contain a")
	}
	if err := tr.MarkSeen("a"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if err := tr.MarkSeen("b"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	// Re-marking must be a no-op, not a duplicate line.
	if err := tr.MarkSeen("a"); err != nil {
		t.Fatalf("MarkSeen repeat: %v", err)
	}

	reloaded, err := NewTracker(file)
	if err != nil {
		t.Fatalf("NewTracker reload: %v", err)
	}
	if !reloaded.Contains("a") || !reloaded.Contains("b") {
		t.Error("reloaded tracker lost ids")
	}
	if got := reloaded.Count(); got != 2 {
		t.Errorf("Count: got %d, want 2", got)
	}
}
