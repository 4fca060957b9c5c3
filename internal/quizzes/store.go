package quizzes

import (
	"context"

	"github.com/google/uuid"

	"github.com/corelearn/backend/internal/models"
)

// Store is the persistence boundary the engine depends on. The production
// implementation is Repository; tests use an in-memory fake.
type Store interface {
	// InTx runs fn inside a transaction that commits when fn returns nil
	// and rolls back on any error.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	QuizByMaterial(ctx context.Context, materialID uuid.UUID) (*models.Quiz, error)
	AddQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, questionID uuid.UUID) (uuid.UUID, error)
	QuizQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
	AttemptsByUserAndQuiz(ctx context.Context, userID, quizID uuid.UUID) ([]models.Attempt, error)
}

// Tx is the set of operations available inside a submission transaction.
// LockAttemptPair must be called first: it serializes concurrent
// submissions for the same (user, quiz) pair so the eligibility check,
// attempt insert, and certificate insert observe consistent state.
type Tx interface {
	LockAttemptPair(ctx context.Context, userID, quizID uuid.UUID) error
	// AttemptStats returns the number of prior attempts and whether any passed.
	AttemptStats(ctx context.Context, userID, quizID uuid.UUID) (made int, passed bool, err error)
	// CorrectOptions maps each given question id to its correct option id.
	// Questions without a correct option are absent from the result.
	CorrectOptions(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	InsertAttempt(ctx context.Context, attempt *models.Attempt) error
	// CourseIDForQuiz resolves the course owning the quiz via the
	// quiz -> material -> course chain. Returns ErrNotFound when broken.
	CourseIDForQuiz(ctx context.Context, quizID uuid.UUID) (uuid.UUID, error)
	// IssueCertification inserts the certification unless one already
	// exists for (user, quiz), then returns the authoritative record.
	// A failure here must not poison the surrounding transaction.
	IssueCertification(ctx context.Context, cert *models.Certification) (issued *models.Certification, created bool, err error)
}
