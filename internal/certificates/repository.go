package certificates

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corelearn/backend/internal/models"
)

// ErrNotFound marks a missing certificate.
var ErrNotFound = errors.New("certificate not found")

// Repository handles certification reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a certificates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByUserAndQuiz returns the certification for a (user, quiz) pair with
// the user, course, and quiz display names joined in.
func (r *Repository) GetByUserAndQuiz(ctx context.Context, userID, quizID uuid.UUID) (*models.CertificationDetail, error) {
	const q = `SELECT c.id, c.user_id, c.course_id, c.quiz_id, c.certificate_code, c.created_at,
			u.name, co.title, q.title
		FROM certifications c
		JOIN users u ON c.user_id = u.id
		JOIN quizzes q ON c.quiz_id = q.id
		JOIN training_materials tm ON q.material_id = tm.id
		JOIN courses co ON tm.course_id = co.id
		WHERE c.user_id = $1 AND c.quiz_id = $2`
	var d models.CertificationDetail
	err := r.pool.QueryRow(ctx, q, userID, quizID).Scan(
		&d.ID, &d.UserID, &d.CourseID, &d.QuizID, &d.CertificateCode, &d.CreatedAt,
		&d.UserName, &d.CourseTitle, &d.QuizTitle,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
