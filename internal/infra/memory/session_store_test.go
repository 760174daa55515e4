package memory

import (
	"testing"

	"github.com/7h3v01c3/PhishBait/internal/engine"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(engine.Options{})

	session := store.GetOrCreate("s1")
	if session == nil {
		t.Fatalf("expected session")
	}
	if again := store.GetOrCreate("s1"); again != session {
		t.Fatalf("expected the same session for the same id")
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
