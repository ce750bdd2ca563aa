package history

import (
	"fmt"
	"testing"

	"parrot/internal/domain"
)

func TestLogKeepsNewestFirstWithinLimit(t *testing.T) {
	t.Parallel()

	log := New(3)
	for i := 0; i < 5; i++ {
		log.Add(domain.HistoryEntry{Original: fmt.Sprintf("text %d", i)})
	}

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"text 4", "text 3", "text 2"} {
		if entries[i].Original != want {
			t.Fatalf("entry %d: got %q, want %q", i, entries[i].Original, want)
		}
	}
}

func TestLogDefaultsAndClear(t *testing.T) {
	t.Parallel()

	log := New(0)
	for i := 0; i < DefaultLimit+2; i++ {
		log.Add(domain.HistoryEntry{Original: "x"})
	}
	if log.Len() != DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultLimit, log.Len())
	}

	log.Clear()
	if log.Len() != 0 || len(log.Entries()) != 0 {
		t.Fatalf("expected empty log after clear")
	}
}

func TestLogEntriesIsCopy(t *testing.T) {
	t.Parallel()

	log := New(2)
	log.Add(domain.HistoryEntry{Original: "a"})
	entries := log.Entries()
	entries[0].Original = "mutated"
	if log.Entries()[0].Original != "a" {
		t.Fatalf("expected entries to be copied")
	}
}
