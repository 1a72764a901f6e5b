package entities

import "time"

const (
	// QuizOptions is the number of answer choices every quiz carries.
	QuizOptions = 4

	PromotionWindow      = 365 * 24 * time.Hour
	PromotionMinAttempts = 10
	PromotionMinCorrect  = 7

	WeakAreaWindowDays    = 30
	WeakAreaThreshold     = 0.70
	WeakAreaPriority      = 2
	DefaultReviewPriority = 1

	ReviewQuizWindowDays  = 7
	ReviewQuizMinAttempts = 2
	ReviewQuizMaxAccuracy = 70.0
)

// Quiz is a multiple-choice question from the catalog.
type Quiz struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"` // zero-based index into Options
	Explanation   string   `json:"explanation"`
	LessonID      string   `json:"lesson_id,omitempty"` // lesson that teaches the quizzed point
	Tier          Tier     `json:"level"`
}

// QuizResult is an append-only record of a single submitted answer.
type QuizResult struct {
	UserID       string
	QuizID       string
	AnswerIndex  int
	CorrectIndex int
	IsCorrect    bool
	AnsweredAt   time.Time
}

// NewQuizResult scores answer against quiz.
func NewQuizResult(userID string, quiz *Quiz, answer int, now time.Time) *QuizResult {
	return &QuizResult{
		UserID:       userID,
		QuizID:       quiz.ID,
		AnswerIndex:  answer,
		CorrectIndex: quiz.CorrectAnswer,
		IsCorrect:    answer == quiz.CorrectAnswer,
		AnsweredAt:   now,
	}
}

// PendingQuiz is the last quiz issued to a user. It is overwritten on every issuance.
type PendingQuiz struct {
	UserID   string
	QuizID   string
	IssuedAt time.Time
}

// QuizStats aggregates results over a window.
type QuizStats struct {
	Total   int
	Correct int
}

// Accuracy returns the correct share as a percentage, 0 when there are no results.
func (s QuizStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// WeakArea is a quiz the user answered wrong at least once in the window.
type WeakArea struct {
	QuizID   string
	Attempts int
	Correct  int
}

// Ratio returns the accuracy in [0, 1].
func (w WeakArea) Ratio() float64 {
	if w.Attempts == 0 {
		return 0
	}
	return float64(w.Correct) / float64(w.Attempts)
}

// NextTier applies the promotion rule to a user's trailing-year results.
// It returns the new tier and true when the user should be promoted.
func NextTier(current Tier, stats QuizStats) (Tier, bool) {
	if stats.Total < PromotionMinAttempts || stats.Correct < PromotionMinCorrect {
		return current, false
	}

	switch current {
	case TierBeginner:
		return TierIntermediate, true
	case TierIntermediate:
		return TierAdvanced, true
	}
	return current, false
}

// AnswerStatus describes how an answer submission was resolved.
type AnswerStatus int

const (
	AnswerScored AnswerStatus = iota
	AnswerNoActiveQuiz
)

// AnswerOutcome is returned to the caller after an answer is processed.
type AnswerOutcome struct {
	Status       AnswerStatus
	Quiz         *Quiz
	Correct      bool
	CorrectIndex int
	Promoted     Tier // empty when no promotion happened
}

// WasPromoted reports whether the answer triggered a tier change.
func (o *AnswerOutcome) WasPromoted() bool {
	return o.Promoted != ""
}
