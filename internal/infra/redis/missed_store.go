package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

const lastMissedKey = "phishbait:last_missed"

// MissedStore persists the most recent session's missed questions under a
// single key, overwritten on every completion.
type MissedStore struct {
	client *redis.Client
}

func NewMissedStore(client *redis.Client) *MissedStore {
	return &MissedStore{client: client}
}

func (s *MissedStore) SaveLastMissed(ctx context.Context, missed []domain.MissedQuestion) error {
	raw, err := json.Marshal(missed)
	if err != nil {
		return fmt.Errorf("marshal last-missed record: %w", err)
	}
	if err := s.client.Set(ctx, lastMissedKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save last-missed record: %w", err)
	}
	return nil
}

func (s *MissedStore) LastMissed(ctx context.Context) ([]domain.MissedQuestion, error) {
	raw, err := s.client.Get(ctx, lastMissedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last-missed record: %w", err)
	}
	var missed []domain.MissedQuestion
	if err := json.Unmarshal(raw, &missed); err != nil {
		return nil, fmt.Errorf("unmarshal last-missed record: %w", err)
	}
	return missed, nil
}
