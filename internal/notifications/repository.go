package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corelearn/backend/internal/models"
)

// Repository handles certificate_notifications persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts a notification row for a processed certificate event.
func (r *Repository) Record(ctx context.Context, n *models.CertificateNotification) error {
	const q = `INSERT INTO certificate_notifications (id, certification_id, user_id, quiz_id, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, n.CertificationID, n.UserID, n.QuizID, n.Status).
		Scan(&n.ID, &n.CreatedAt)
}

// ListByUser returns notifications for a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CertificateNotification, error) {
	const q = `SELECT id, certification_id, user_id, quiz_id, status, created_at
		FROM certificate_notifications WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.CertificateNotification
	for rows.Next() {
		var n models.CertificateNotification
		if err := rows.Scan(&n.ID, &n.CertificationID, &n.UserID, &n.QuizID, &n.Status, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
