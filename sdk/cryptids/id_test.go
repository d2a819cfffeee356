package cryptids

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := GenerateID()
		if err != nil {
			t.Fatalf("GenerateID: %v", err)
		}
		if len(id) != IDLength {
			t.Fatalf("len = %d, want %d", len(id), IDLength)
		}
		for _, r := range id {
			if !strings.ContainsRune(IDAlphabet, r) {
				t.Fatalf("unexpected rune %q in %s", r, id)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateIDRejectsBadInput(t *testing.T) {
	if _, err := generateID("a", 4); err == nil {
		t.Error("expected error for single-character alphabet")
	}
	if _, err := generateID("ab", 0); err == nil {
		t.Error("expected error for zero size")
	}
}
