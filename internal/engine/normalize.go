package engine

import (
	"fmt"
	"math/rand"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

// DefaultMaxQuestions caps how many questions a single session draws.
const DefaultMaxQuestions = 20

// DefaultWeight is the point value of a question that declares none.
const DefaultWeight = 5

const (
	defaultExplanation      = "Slow down. Verify the official site yourself. Ignore DMs. Never share seed words or private keys."
	defaultWrongConsequence = "Wrong click. Real scammers don't do refunds."
	defaultScamType         = "Security Pattern"
	defaultIcon             = "shield"
)

type indexedOption struct {
	text string
	idx  int
}

// BuildSession turns raw question records into a playable session set:
// validate everything up front, pick a shuffled subset of at most
// maxQuestions, and independently permute each question's options while
// re-deriving the correct index.
func BuildSession(records []domain.QuestionRecord, rnd *rand.Rand, maxQuestions int) ([]domain.EngineQuestion, error) {
	if len(records) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}

	// Validate the full source, not just the drawn subset, so content defects
	// surface on every load instead of only when the bad question is drawn.
	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("question %d (%q): %w", i, rec.Text, err)
		}
	}

	selected := Shuffle(rnd, records)
	if len(selected) > maxQuestions {
		selected = selected[:maxQuestions]
	}

	questions := make([]domain.EngineQuestion, 0, len(selected))
	for _, rec := range selected {
		questions = append(questions, normalizeQuestion(rec, rnd))
	}
	return questions, nil
}

func validateRecord(rec domain.QuestionRecord) error {
	if len(rec.Options) < 2 {
		return fmt.Errorf("%w: need at least 2 options, have %d", domain.ErrInvalidQuestion, len(rec.Options))
	}
	if rec.Correct < 0 || rec.Correct >= len(rec.Options) {
		return fmt.Errorf("%w: correct index %d out of range for %d options", domain.ErrInvalidQuestion, rec.Correct, len(rec.Options))
	}
	return nil
}

// normalizeQuestion shuffles option order and tracks the correct option
// through the permutation by pairing each option with its original index.
func normalizeQuestion(rec domain.QuestionRecord, rnd *rand.Rand) domain.EngineQuestion {
	indexed := make([]indexedOption, len(rec.Options))
	for i, text := range rec.Options {
		indexed[i] = indexedOption{text: text, idx: i}
	}
	shuffled := Shuffle(rnd, indexed)

	options := make([]string, len(shuffled))
	correct := 0
	for i, opt := range shuffled {
		options[i] = opt.text
		if opt.idx == rec.Correct {
			correct = i
		}
	}

	q := domain.EngineQuestion{
		Text:             rec.Text,
		Options:          options,
		CorrectAnswer:    correct,
		Weight:           rec.Weight,
		NotReady:         rec.NotReady,
		ScamType:         rec.ScamType,
		Icon:             rec.Icon,
		Explanation:      rec.Explanation,
		WrongConsequence: rec.WrongConsequence,
	}
	if q.Weight <= 0 {
		q.Weight = DefaultWeight
	}
	if q.Explanation == "" {
		if rec.NotReady != "" {
			q.Explanation = rec.NotReady
		} else {
			q.Explanation = defaultExplanation
		}
	}
	if q.WrongConsequence == "" {
		if rec.NotReady != "" {
			q.WrongConsequence = rec.NotReady
		} else {
			q.WrongConsequence = defaultWrongConsequence
		}
	}
	if q.ScamType == "" {
		q.ScamType = defaultScamType
	}
	if q.Icon == "" {
		q.Icon = defaultIcon
	}
	return q
}
