package id

import (
	"strings"
	"testing"
)

func TestNewIDShape(t *testing.T) {
	got, err := NewID()
	if err != nil {
		t.Fatalf("NewID returned error: %v", err)
	}
	if len(got) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(got), got)
	}
	if got != strings.ToLower(got) {
		t.Fatalf("expected lowercase identifier, got %q", got)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		got, err := NewID()
		if err != nil {
			t.Fatalf("NewID returned error: %v", err)
		}
		if seen[got] {
			t.Fatalf("duplicate identifier %q", got)
		}
		seen[got] = true
	}
}
