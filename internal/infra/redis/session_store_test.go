package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/7h3v01c3/PhishBait/internal/engine"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), engine.Options{}, time.Minute)

	_ = store.GetOrCreate("s1")
	if !mr.Exists("phishbait:session:s1") {
		t.Fatalf("expected redis liveness key to be set")
	}

	store.Delete("s1")
	if mr.Exists("phishbait:session:s1") {
		t.Fatalf("expected redis liveness key to be removed")
	}
}
