package quizzes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corelearn/backend/internal/models"
)

const pgUniqueViolation = "23505"

// Repository is the PostgreSQL Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a quiz repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InTx runs fn inside a transaction, committing on nil and rolling back on
// any error or panic exit path.
func (r *Repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&repoTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateQuiz inserts a quiz; each material can have only one.
func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	const q = `INSERT INTO quizzes (id, material_id, title)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, quiz.MaterialID, quiz.Title).Scan(&quiz.ID, &quiz.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateQuiz
	}
	return err
}

// QuizByMaterial returns the quiz linked to a material.
func (r *Repository) QuizByMaterial(ctx context.Context, materialID uuid.UUID) (*models.Quiz, error) {
	const q = `SELECT id, material_id, title, created_at FROM quizzes WHERE material_id = $1`
	var quiz models.Quiz
	err := r.pool.QueryRow(ctx, q, materialID).Scan(&quiz.ID, &quiz.MaterialID, &quiz.Title, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// AddQuestion inserts a question and its options atomically.
func (r *Repository) AddQuestion(ctx context.Context, question *models.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertQuestion = `INSERT INTO questions (id, quiz_id, question_text)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertQuestion, question.QuizID, question.Text).
		Scan(&question.ID, &question.CreatedAt); err != nil {
		return err
	}

	const insertOption = `INSERT INTO options (id, question_id, option_text, is_correct)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id`
	for i := range question.Options {
		opt := &question.Options[i]
		opt.QuestionID = question.ID
		if err := tx.QueryRow(ctx, insertOption, question.ID, opt.Text, opt.IsCorrect).Scan(&opt.ID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// DeleteQuestion removes a question (options cascade) and returns the owning
// quiz id so caches can be invalidated.
func (r *Repository) DeleteQuestion(ctx context.Context, questionID uuid.UUID) (uuid.UUID, error) {
	const q = `DELETE FROM questions WHERE id = $1 RETURNING quiz_id`
	var quizID uuid.UUID
	err := r.pool.QueryRow(ctx, q, questionID).Scan(&quizID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return quizID, nil
}

// QuizQuestions returns questions with options for quiz-taking. Correctness
// flags are not selected.
func (r *Repository) QuizQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	const selectQuestions = `SELECT id, quiz_id, question_text, created_at
		FROM questions WHERE quiz_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, selectQuestions, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	index := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.CreatedAt); err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		ids = append(ids, q.ID)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return []models.Question{}, nil
	}

	const selectOptions = `SELECT id, question_id, option_text
		FROM options WHERE question_id = ANY($1) ORDER BY id`
	optRows, err := r.pool.Query(ctx, selectOptions, ids)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()
	for optRows.Next() {
		var opt models.Option
		if err := optRows.Scan(&opt.ID, &opt.QuestionID, &opt.Text); err != nil {
			return nil, err
		}
		if i, ok := index[opt.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, opt)
		}
	}
	return questions, optRows.Err()
}

// AttemptsByUserAndQuiz returns the user's attempts for a quiz, newest first.
func (r *Repository) AttemptsByUserAndQuiz(ctx context.Context, userID, quizID uuid.UUID) ([]models.Attempt, error) {
	const q = `SELECT id, user_id, quiz_id, score, total_questions, passed, attempted_at
		FROM quiz_attempts WHERE user_id = $1 AND quiz_id = $2
		ORDER BY attempted_at DESC`
	rows, err := r.pool.Query(ctx, q, userID, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &a.Score, &a.TotalQuestions, &a.Passed, &a.AttemptedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// repoTx implements Tx on a pgx transaction.
type repoTx struct {
	tx pgx.Tx
}

// LockAttemptPair takes a transaction-scoped advisory lock keyed on the
// (user, quiz) pair, serializing concurrent submissions for it.
func (t *repoTx) LockAttemptPair(ctx context.Context, userID, quizID uuid.UUID) error {
	const q = `SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`
	_, err := t.tx.Exec(ctx, q, userID.String(), quizID.String())
	return err
}

// AttemptStats returns prior attempt count and whether any attempt passed.
func (t *repoTx) AttemptStats(ctx context.Context, userID, quizID uuid.UUID) (int, bool, error) {
	const q = `SELECT COUNT(*), COALESCE(BOOL_OR(passed), FALSE)
		FROM quiz_attempts WHERE user_id = $1 AND quiz_id = $2`
	var made int
	var passed bool
	err := t.tx.QueryRow(ctx, q, userID, quizID).Scan(&made, &passed)
	return made, passed, err
}

// CorrectOptions maps each answered question id to its correct option id.
func (t *repoTx) CorrectOptions(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	const q = `SELECT question_id, id FROM options
		WHERE is_correct AND question_id = ANY($1)`
	rows, err := t.tx.Query(ctx, q, questionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	key := make(map[uuid.UUID]uuid.UUID, len(questionIDs))
	for rows.Next() {
		var questionID, optionID uuid.UUID
		if err := rows.Scan(&questionID, &optionID); err != nil {
			return nil, err
		}
		key[questionID] = optionID
	}
	return key, rows.Err()
}

// InsertAttempt appends one attempt row.
func (t *repoTx) InsertAttempt(ctx context.Context, attempt *models.Attempt) error {
	const q = `INSERT INTO quiz_attempts (id, user_id, quiz_id, score, total_questions, passed)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, attempted_at`
	return t.tx.QueryRow(ctx, q, attempt.UserID, attempt.QuizID, attempt.Score, attempt.TotalQuestions, attempt.Passed).
		Scan(&attempt.ID, &attempt.AttemptedAt)
}

// CourseIDForQuiz resolves quiz -> material -> course.
func (t *repoTx) CourseIDForQuiz(ctx context.Context, quizID uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT tm.course_id FROM quizzes q
		JOIN training_materials tm ON q.material_id = tm.id
		WHERE q.id = $1`
	var courseID uuid.UUID
	err := t.tx.QueryRow(ctx, q, quizID).Scan(&courseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	return courseID, err
}

// IssueCertification conditionally inserts the certification and reads back
// the authoritative row. The unique (user_id, quiz_id) constraint makes the
// insert idempotent under concurrency. Runs in a savepoint so a failure
// cannot poison the surrounding transaction and lose the attempt row.
func (t *repoTx) IssueCertification(ctx context.Context, cert *models.Certification) (*models.Certification, bool, error) {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer sp.Rollback(ctx)

	const insert = `INSERT INTO certifications (id, user_id, course_id, quiz_id, certificate_code)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		ON CONFLICT (user_id, quiz_id) DO NOTHING`
	tag, err := sp.Exec(ctx, insert, cert.UserID, cert.CourseID, cert.QuizID, cert.CertificateCode)
	if err != nil {
		return nil, false, err
	}
	created := tag.RowsAffected() == 1

	const readBack = `SELECT id, user_id, course_id, quiz_id, certificate_code, created_at
		FROM certifications WHERE user_id = $1 AND quiz_id = $2`
	var issued models.Certification
	if err := sp.QueryRow(ctx, readBack, cert.UserID, cert.QuizID).
		Scan(&issued.ID, &issued.UserID, &issued.CourseID, &issued.QuizID, &issued.CertificateCode, &issued.CreatedAt); err != nil {
		return nil, false, err
	}
	if err := sp.Commit(ctx); err != nil {
		return nil, false, err
	}
	return &issued, created, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
