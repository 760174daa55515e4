package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

func TestMissedStoreOverwritesSingleKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewMissedStore(newClient(mr))

	if got, err := store.LastMissed(ctx); err != nil || got != nil {
		t.Fatalf("expected empty record before any save, got %v / %v", got, err)
	}

	if err := store.SaveLastMissed(ctx, []domain.MissedQuestion{{Text: "q1", NotReady: "topic"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveLastMissed(ctx, []domain.MissedQuestion{{Text: "q2"}}); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	got, err := store.LastMissed(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Text != "q2" {
		t.Fatalf("expected overwritten record, got %+v", got)
	}
}
