package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

// Phase is the progression state of a session.
type Phase string

const (
	PhaseNotStarted Phase = "notStarted"
	PhaseActive     Phase = "active"
	PhaseComplete   Phase = "complete"
)

// Options holds the tunable timer constants, all in seconds.
type Options struct {
	TimeLimit        int
	LowTimeThreshold int
	BonusSeconds     int
	GraceSeconds     int
	FeedbackSeconds  int
	AdvisorySeconds  int
}

func (o Options) withDefaults() Options {
	if o.TimeLimit <= 0 {
		o.TimeLimit = 300
	}
	if o.LowTimeThreshold <= 0 {
		o.LowTimeThreshold = 30
	}
	if o.BonusSeconds <= 0 {
		o.BonusSeconds = 60
	}
	if o.GraceSeconds <= 0 {
		o.GraceSeconds = 20
	}
	if o.FeedbackSeconds <= 0 {
		o.FeedbackSeconds = 5
	}
	if o.AdvisorySeconds <= 0 {
		o.AdvisorySeconds = 4
	}
	return o
}

const (
	fallbackLowHint  = "Running low on time? You get one mercy minute."
	fallbackBonusMsg = "Bonus minute activated. Real scammers aren't this kind."
	fallbackGraceMsg = "Time's basically up. We'll score this in 20 seconds, no pressure."
)

// Snapshot is the render-ready view of a session at one instant.
type Snapshot struct {
	SessionID       string                 `json:"sessionId"`
	Phase           Phase                  `json:"phase"`
	QuestionIndex   int                    `json:"questionIndex"`
	TotalQuestions  int                    `json:"totalQuestions"`
	Question        *domain.EngineQuestion `json:"question,omitempty"`
	SelectedAnswer  *int                   `json:"selectedAnswer,omitempty"`
	FeedbackVisible bool                   `json:"feedbackVisible"`
	TimeRemaining   int                    `json:"timeRemaining"`
	InGrace         bool                   `json:"inGrace"`
	GraceRemaining  int                    `json:"graceRemaining"`
	BonusUsed       bool                   `json:"bonusUsed"`
	BonusAvailable  bool                   `json:"bonusAvailable"`
	LowTimeWarning  bool                   `json:"lowTimeWarning"`
	LowHint         string                 `json:"lowHint,omitempty"`
	TimerMessage    string                 `json:"timerMessage,omitempty"`
	ElapsedSeconds  int                    `json:"elapsedSeconds"`
	Result          *domain.ResultSummary  `json:"result,omitempty"`
}

// Session is the single-player quiz state machine: question progression plus
// the countdown with its low-time window, one-shot bonus minute and terminal
// grace period. It is stepped by Tick once per second from an external
// scheduler; every mutating call is synchronous and holds the session lock,
// so a completed or reset session can never be touched by a stale tick.
type Session struct {
	id   string
	opts Options
	now  func() time.Time
	rnd  *rand.Rand

	mu          sync.RWMutex
	phase       Phase
	questions   []domain.EngineQuestion
	answers     []*int
	index       int
	timerText   domain.TimerText
	tiers       []domain.RankingTier
	subscribers map[chan Snapshot]struct{}

	// countdowns, all in remaining ticks
	remaining         int
	graceRemaining    int
	inGrace           bool
	bonusUsed         bool
	dwellRemaining    int
	feedbackVisible   bool
	advisoryRemaining int
	timerMessage      string
	lowHint           string

	startedAt  time.Time
	finishedAt time.Time

	result            *domain.ResultSummary
	completionPending bool
}

// NewSession creates an idle session; call Start with a normalized question
// set to begin play.
func NewSession(id string, opts Options) *Session {
	return NewSessionWithClock(id, opts, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSessionWithClock allows deterministic time and randomness in tests.
func NewSessionWithClock(id string, opts Options, now func() time.Time, rnd *rand.Rand) *Session {
	return &Session{
		id:          id,
		opts:        opts.withDefaults(),
		now:         now,
		rnd:         rnd,
		phase:       PhaseNotStarted,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start begins a fresh run over the given question set. Starting over an
// in-flight session discards it entirely; every pending countdown (dwell,
// advisory, grace) is cleared before the new state becomes visible.
func (s *Session) Start(questions []domain.EngineQuestion, timer domain.TimerText, tiers []domain.RankingTier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.phase = PhaseActive
	s.questions = questions
	s.answers = make([]*int, len(questions))
	s.timerText = timer
	s.tiers = tiers
	s.remaining = s.opts.TimeLimit
	s.startedAt = s.now()
	s.broadcastLocked()
}

// Reset returns the session to NotStarted and cancels all pending countdowns.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.broadcastLocked()
}

func (s *Session) resetLocked() {
	s.phase = PhaseNotStarted
	s.questions = nil
	s.answers = nil
	s.index = 0
	s.remaining = 0
	s.graceRemaining = 0
	s.inGrace = false
	s.bonusUsed = false
	s.dwellRemaining = 0
	s.feedbackVisible = false
	s.advisoryRemaining = 0
	s.timerMessage = ""
	s.lowHint = ""
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.result = nil
	s.completionPending = false
}

// Answer records the player's choice for the current question. An answer,
// once set, cannot be changed; feedback becomes visible immediately and the
// session auto-advances after the feedback dwell.
func (s *Session) Answer(choice int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseActive {
		return domain.ErrSessionNotActive
	}
	if s.feedbackVisible || s.answers[s.index] != nil {
		return domain.ErrAnswerLocked
	}
	if choice < 0 || choice >= len(s.questions[s.index].Options) {
		return domain.ErrOptionOutOfRange
	}

	recorded := choice
	s.answers[s.index] = &recorded
	s.feedbackVisible = true
	s.dwellRemaining = s.opts.FeedbackSeconds
	s.broadcastLocked()
	return nil
}

// ClaimBonusTime grants the one-shot bonus minute. It reports whether the
// claim was accepted: at most once per session, only inside the low-time
// window, never once grace has begun.
func (s *Session) ClaimBonusTime() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseActive || s.bonusUsed || s.inGrace {
		return false
	}
	if s.remaining <= 0 || s.remaining > s.opts.LowTimeThreshold {
		return false
	}

	s.bonusUsed = true
	s.remaining += s.opts.BonusSeconds
	s.lowHint = ""
	s.timerMessage = pickMessage(s.rnd, s.timerText.BonusMessages, fallbackBonusMsg)
	s.advisoryRemaining = s.opts.AdvisorySeconds
	s.broadcastLocked()
	return true
}

// Tick advances the session clock by one second. It drives the main
// countdown, the grace countdown, the feedback dwell and the advisory
// auto-clear. A grace expiry always wins over a pending dwell advance.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseActive {
		return
	}

	if s.inGrace {
		s.graceRemaining--
		if s.graceRemaining <= 0 {
			s.finishLocked()
			s.broadcastLocked()
			return
		}
	} else {
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = 0
			s.enterGraceLocked()
		} else if s.advisoryRemaining > 0 {
			s.advisoryRemaining--
			if s.advisoryRemaining == 0 {
				s.timerMessage = ""
			}
		}
	}

	s.updateLowHintLocked()

	if s.feedbackVisible {
		s.dwellRemaining--
		if s.dwellRemaining <= 0 {
			s.feedbackVisible = false
			if s.index < len(s.questions)-1 {
				s.index++
			} else {
				s.finishLocked()
			}
		}
	}

	s.broadcastLocked()
}

// enterGraceLocked is a one-time transition; grace cannot restart and its
// message is never overwritten or auto-cleared.
func (s *Session) enterGraceLocked() {
	s.inGrace = true
	s.graceRemaining = s.opts.GraceSeconds
	s.advisoryRemaining = 0
	s.lowHint = ""
	s.timerMessage = pickMessage(s.rnd, s.timerText.GraceMessages, fallbackGraceMsg)
}

// updateLowHintLocked keeps the low-time hint stable while the window holds
// and clears it the moment the window closes.
func (s *Session) updateLowHintLocked() {
	if s.lowTimeVisibleLocked() {
		if s.lowHint == "" {
			s.lowHint = pickMessage(s.rnd, s.timerText.LowHints, fallbackLowHint)
		}
	} else {
		s.lowHint = ""
	}
}

func (s *Session) lowTimeVisibleLocked() bool {
	return s.phase == PhaseActive &&
		!s.inGrace &&
		!s.bonusUsed &&
		s.remaining > 0 &&
		s.remaining <= s.opts.LowTimeThreshold
}

func (s *Session) finishLocked() {
	if s.phase == PhaseComplete {
		return
	}
	s.phase = PhaseComplete
	s.feedbackVisible = false
	s.dwellRemaining = 0
	s.finishedAt = s.now()

	res := Resolve(s.questions, s.answers, s.tiers, s.rnd)
	s.result = &res
	s.completionPending = true
}

// ConsumeCompletion reports the frozen result exactly once after a session
// completes, for one-shot side effects such as overwriting the persisted
// last-missed record.
func (s *Session) ConsumeCompletion() (domain.ResultSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completionPending || s.result == nil {
		return domain.ResultSummary{}, false
	}
	s.completionPending = false
	return *s.result, true
}

// Result returns the frozen result summary, nil before completion.
func (s *Session) Result() *domain.ResultSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Snapshot captures the current render state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:       s.id,
		Phase:           s.phase,
		QuestionIndex:   s.index,
		TotalQuestions:  len(s.questions),
		FeedbackVisible: s.feedbackVisible,
		TimeRemaining:   s.remaining,
		InGrace:         s.inGrace,
		GraceRemaining:  s.graceRemaining,
		BonusUsed:       s.bonusUsed,
		BonusAvailable:  s.lowTimeVisibleLocked(),
		LowTimeWarning:  s.lowTimeVisibleLocked(),
		LowHint:         s.lowHint,
		TimerMessage:    s.timerMessage,
		Result:          s.result,
	}
	if s.phase == PhaseActive && s.index < len(s.questions) {
		q := s.questions[s.index]
		snap.Question = &q
		if a := s.answers[s.index]; a != nil {
			v := *a
			snap.SelectedAnswer = &v
		}
	}
	switch {
	case s.startedAt.IsZero():
	case s.phase == PhaseComplete:
		snap.ElapsedSeconds = int(s.finishedAt.Sub(s.startedAt) / time.Second)
	default:
		snap.ElapsedSeconds = int(s.now().Sub(s.startedAt) / time.Second)
	}
	return snap
}

// Subscribe returns a channel fed a snapshot after every state change,
// seeded with the current state. Callers must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so slow readers never block the tick.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func pickMessage(rnd *rand.Rand, msgs []string, fallback string) string {
	if len(msgs) == 0 {
		return fallback
	}
	return msgs[rnd.Intn(len(msgs))]
}
