package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/7h3v01c3/PhishBait/internal/domain"
	"github.com/7h3v01c3/PhishBait/internal/engine"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string) *engine.Session
	Get(sessionID string) (*engine.Session, bool)
	Delete(sessionID string)
}

// ContentRepository loads quiz content (from cache/backing store).
type ContentRepository interface {
	GetContent(ctx context.Context, packID string) (domain.ContentPack, error)
}

// MissedRecordStore persists the most recent session's missed questions.
// Each save overwrites the previous record; no history is kept.
type MissedRecordStore interface {
	SaveLastMissed(ctx context.Context, missed []domain.MissedQuestion) error
	LastMissed(ctx context.Context) ([]domain.MissedQuestion, error)
}

// QuizService contains the quiz engine use cases: attach a session, start a
// freshly randomized run, route player intents, drive the clock, and persist
// the missed-question record when a run completes.
type QuizService struct {
	sessions     SessionRepository
	content      ContentRepository
	missed       MissedRecordStore
	packID       string
	maxQuestions int
	log          zerolog.Logger

	randMu sync.Mutex
	rnd    *rand.Rand
}

func NewQuizService(sessions SessionRepository, content ContentRepository, missed MissedRecordStore, packID string, maxQuestions int, log zerolog.Logger) *QuizService {
	if packID == "" {
		packID = "default"
	}
	if maxQuestions <= 0 {
		maxQuestions = engine.DefaultMaxQuestions
	}
	return &QuizService{
		sessions:     sessions,
		content:      content,
		missed:       missed,
		packID:       packID,
		maxQuestions: maxQuestions,
		log:          log.With().Str("component", "quiz_service").Logger(),
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Attach ensures a session exists for the given id without starting it.
func (s *QuizService) Attach(_ context.Context, sessionID string) engine.Snapshot {
	return s.sessions.GetOrCreate(sessionID).Snapshot()
}

// Content returns the full content pack (questions plus pass-through display
// copy) so a presentation layer can render landing/results chrome.
func (s *QuizService) Content(ctx context.Context) (domain.ContentPack, error) {
	pack, err := s.content.GetContent(ctx, s.packID)
	if err != nil {
		return domain.ContentPack{}, fmt.Errorf("load content pack %q: %w", s.packID, err)
	}
	return pack, nil
}

// Start begins a new randomized run for the session: content is re-loaded,
// re-normalized and re-shuffled, so a restart is never a resume.
func (s *QuizService) Start(ctx context.Context, sessionID string) (engine.Snapshot, error) {
	pack, err := s.Content(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}

	s.randMu.Lock()
	questions, err := engine.BuildSession(pack.Questions, s.rnd, s.maxQuestions)
	s.randMu.Unlock()
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("normalize content pack %q: %w", s.packID, err)
	}

	session := s.sessions.GetOrCreate(sessionID)
	session.Start(questions, pack.Timer, pack.Rankings.Tiers)
	s.log.Info().Str("session", sessionID).Int("questions", len(questions)).Msg("session started")
	return session.Snapshot(), nil
}

// Restart discards the current run and starts a fresh one. Reset first so any
// pending dwell or advisory countdown is cancelled before the new set lands.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (engine.Snapshot, error) {
	if session, ok := s.sessions.Get(sessionID); ok {
		session.Reset()
	}
	return s.Start(ctx, sessionID)
}

// Answer records the player's choice for the session's current question.
func (s *QuizService) Answer(ctx context.Context, sessionID string, option int) (engine.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return engine.Snapshot{}, domain.ErrSessionNotFound
	}
	if err := session.Answer(option); err != nil {
		return session.Snapshot(), err
	}
	s.persistIfComplete(ctx, session)
	return session.Snapshot(), nil
}

// ClaimBonusTime attempts the one-shot bonus-minute claim.
func (s *QuizService) ClaimBonusTime(_ context.Context, sessionID string) (engine.Snapshot, bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return engine.Snapshot{}, false, domain.ErrSessionNotFound
	}
	granted := session.ClaimBonusTime()
	return session.Snapshot(), granted, nil
}

// Tick advances the session clock by one second.
func (s *QuizService) Tick(ctx context.Context, sessionID string) (engine.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return engine.Snapshot{}, domain.ErrSessionNotFound
	}
	session.Tick()
	s.persistIfComplete(ctx, session)
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives a snapshot after every state
// change. The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan engine.Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// LastMissed returns the persisted missed-question record of the most recent
// completed session.
func (s *QuizService) LastMissed(ctx context.Context) ([]domain.MissedQuestion, error) {
	return s.missed.LastMissed(ctx)
}

// Leave drops the session.
func (s *QuizService) Leave(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

// persistIfComplete overwrites the last-missed record the first time a
// session is observed complete. Persistence failures are logged, not
// surfaced; the in-memory result is already frozen and correct.
func (s *QuizService) persistIfComplete(ctx context.Context, session *engine.Session) {
	res, ok := session.ConsumeCompletion()
	if !ok {
		return
	}
	if err := s.missed.SaveLastMissed(ctx, res.Missed); err != nil {
		s.log.Error().Err(err).Str("session", session.ID()).Msg("persist last-missed record failed")
		return
	}
	s.log.Info().
		Str("session", session.ID()).
		Int("percent", res.Percent).
		Int("missed", res.MissedCount).
		Msg("session complete")
}
