package models

import (
	"time"

	"github.com/google/uuid"
)

// Quiz represents the assessment tied to a training material (one per material).
type Quiz struct {
	ID         uuid.UUID `json:"id"`
	MaterialID uuid.UUID `json:"material_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}

// Question represents a multiple-choice question owned by a quiz.
type Question struct {
	ID        uuid.UUID `json:"id"`
	QuizID    uuid.UUID `json:"quiz_id"`
	Text      string    `json:"question_text"`
	Options   []Option  `json:"options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Option represents one answer choice for a question. IsCorrect is never
// serialized; learner-facing listings carry only id and text.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"option_text"`
	IsCorrect  bool      `json:"-"`
}
