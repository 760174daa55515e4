package memory

import (
	"context"
	"sync"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

// MissedStore keeps the single most recent missed-question record in memory.
// Every save overwrites the previous record.
type MissedStore struct {
	mu     sync.RWMutex
	missed []domain.MissedQuestion
}

func NewMissedStore() *MissedStore {
	return &MissedStore{}
}

func (s *MissedStore) SaveLastMissed(_ context.Context, missed []domain.MissedQuestion) error {
	record := make([]domain.MissedQuestion, len(missed))
	copy(record, missed)

	s.mu.Lock()
	s.missed = record
	s.mu.Unlock()
	return nil
}

func (s *MissedStore) LastMissed(_ context.Context) ([]domain.MissedQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MissedQuestion, len(s.missed))
	copy(out, s.missed)
	return out, nil
}
