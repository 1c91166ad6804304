package token

import (
	"strings"
	"testing"

	"wey/internal/core"
)

func TestGenerate(t *testing.T) {
	got := Generate("wey_", 32)
	if !strings.HasPrefix(got, "wey_") {
		t.Fatalf("missing prefix: %q", got)
	}
	if len(got) != len("wey_")+32 {
		t.Fatalf("unexpected length %d: %q", len(got), got)
	}
	for _, r := range strings.TrimPrefix(got, "wey_") {
		if !strings.ContainsRune(credentialAlphabet, r) {
			t.Fatalf("character %q outside alphabet in %q", r, got)
		}
	}
}

func TestGenerateWeyID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateWeyID()
		if len(id) != core.WeyIDLength {
			t.Fatalf("expected length %d, got %q", core.WeyIDLength, id)
		}
		for _, r := range id {
			if !strings.ContainsRune(weyIDAlphabet, r) {
				t.Fatalf("character %q outside alphabet in %q", r, id)
			}
		}
		seen[id] = true
	}
	// 100 independent draws from a 36^8 space colliding would mean the
	// generator is broken, not unlucky.
	if len(seen) != 100 {
		t.Fatalf("expected 100 distinct ids, got %d", len(seen))
	}
}

func TestGenerateZeroLength(t *testing.T) {
	if got := Generate("p_", 0); got != "p_" {
		t.Fatalf("expected bare prefix, got %q", got)
	}
}
