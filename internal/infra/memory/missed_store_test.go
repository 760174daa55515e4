package memory

import (
	"context"
	"testing"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

func TestMissedStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMissedStore()

	if got, err := store.LastMissed(ctx); err != nil || len(got) != 0 {
		t.Fatalf("expected empty record initially, got %v / %v", got, err)
	}

	first := []domain.MissedQuestion{{Text: "q1", NotReady: "topic 1"}, {Text: "q2"}}
	if err := store.SaveLastMissed(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := []domain.MissedQuestion{{Text: "q3"}}
	if err := store.SaveLastMissed(ctx, second); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	got, err := store.LastMissed(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Text != "q3" {
		t.Fatalf("expected record overwritten, not appended: %+v", got)
	}
}
