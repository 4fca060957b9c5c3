package models

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one scored submission of answers to a quiz by a user.
// Attempts are append-only; a row is never updated after insert.
type Attempt struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	QuizID         uuid.UUID `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Passed         bool      `json:"passed"`
	AttemptedAt    time.Time `json:"attempted_at"`
}
