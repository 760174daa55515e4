package domain

import "errors"

var (
	// ErrContentNotFound indicates the content pack could not be loaded.
	ErrContentNotFound = errors.New("content pack not found")
	// ErrNoQuestions is returned when a content pack has no questions at all.
	ErrNoQuestions = errors.New("content pack has no questions")
	// ErrInvalidQuestion flags a data-integrity defect in a question record
	// (correct index out of range, too few options). Never repaired silently.
	ErrInvalidQuestion = errors.New("invalid question record")
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotActive is returned for answer/bonus intents outside an active quiz.
	ErrSessionNotActive = errors.New("quiz session not active")
	// ErrAnswerLocked is returned when the current question already has an answer.
	ErrAnswerLocked = errors.New("answer already recorded for current question")
	// ErrOptionOutOfRange is returned when a submitted option index is invalid.
	ErrOptionOutOfRange = errors.New("option index out of range")
)
