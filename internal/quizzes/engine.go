package quizzes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corelearn/backend/config"
	"github.com/corelearn/backend/internal/models"
	"github.com/corelearn/backend/pkg/queue"
)

// EventPublisher publishes certificate-issued events. May be nil when no
// queue is configured; publishing is best-effort and never affects the
// submission result.
type EventPublisher interface {
	EnqueueCertificateIssued(ctx context.Context, payload queue.CertificateIssuedPayload) error
}

// Engine enforces the quiz attempt and certification workflow: attempt
// limits, scoring, pass/fail, and at-most-one certificate per (user, quiz).
type Engine struct {
	store  Store
	cache  *QuestionCache
	events EventPublisher
	cfg    config.QuizConfig
	logger *zap.Logger
}

// NewEngine creates the attempt engine. cache and events may be nil.
func NewEngine(store Store, cache *QuestionCache, events EventPublisher, cfg config.QuizConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, cache: cache, events: events, cfg: cfg, logger: logger}
}

// CertificateRef is the certificate handle returned with a passing result.
type CertificateRef struct {
	Code string `json:"code"`
}

// SubmitResult is the outcome of one scored submission.
type SubmitResult struct {
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	Passed         bool            `json:"passed"`
	Certificate    *CertificateRef `json:"certificate,omitempty"`
}

// QuizStatus is a quiz plus the given user's attempt standing.
type QuizStatus struct {
	models.Quiz
	Attempts          []models.Attempt `json:"attempts"`
	HasPassed         bool             `json:"has_passed"`
	AttemptsMade      int              `json:"attempts_made"`
	AttemptsRemaining int              `json:"attempts_remaining"`
}

// OptionInput is one answer choice supplied when authoring a question.
type OptionInput struct {
	Text      string `json:"option_text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// SubmitAttempt validates, checks eligibility, scores, and records one quiz
// submission. Answer keys are question ids; values are the chosen option
// ids. Keys that do not parse as UUIDs are skipped; if none parse the
// submission is rejected before any store access. The eligibility check,
// attempt insert, and certificate insert run in a single transaction
// serialized per (user, quiz).
func (e *Engine) SubmitAttempt(ctx context.Context, quizID, userID uuid.UUID, answers map[string]string) (*SubmitResult, error) {
	if quizID == uuid.Nil || userID == uuid.Nil || len(answers) == 0 {
		return nil, ErrInvalidRequest
	}

	answered := make(map[uuid.UUID]uuid.UUID, len(answers))
	for rawQuestion, rawOption := range answers {
		questionID, err := uuid.Parse(strings.TrimSpace(rawQuestion))
		if err != nil {
			continue
		}
		// An unparseable option id still consumes the question: it counts
		// toward the denominator and scores as incorrect.
		optionID, err := uuid.Parse(strings.TrimSpace(rawOption))
		if err != nil {
			optionID = uuid.Nil
		}
		answered[questionID] = optionID
	}
	if len(answered) == 0 {
		return nil, ErrInvalidRequest
	}

	ctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()

	var (
		result    SubmitResult
		issuedNew *models.Certification
	)
	err := e.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockAttemptPair(ctx, userID, quizID); err != nil {
			return err
		}

		made, alreadyPassed, err := tx.AttemptStats(ctx, userID, quizID)
		if err != nil {
			return err
		}
		if alreadyPassed {
			return ErrAlreadyPassed
		}
		if made >= e.cfg.AttemptCap {
			return ErrNoAttemptsRemaining
		}

		questionIDs := make([]uuid.UUID, 0, len(answered))
		for id := range answered {
			questionIDs = append(questionIDs, id)
		}
		answerKey, err := tx.CorrectOptions(ctx, questionIDs)
		if err != nil {
			return err
		}

		score, total := scoreAnswers(answered, answerKey)
		passed := passes(score, total, e.cfg.PassThreshold)

		attempt := &models.Attempt{
			UserID:         userID,
			QuizID:         quizID,
			Score:          score,
			TotalQuestions: total,
			Passed:         passed,
		}
		if err := tx.InsertAttempt(ctx, attempt); err != nil {
			return err
		}

		result = SubmitResult{Score: score, TotalQuestions: total, Passed: passed}
		if !passed {
			return nil
		}

		// A broken certificate chain never blocks the attempt result; the
		// inconsistency is logged and the certificate field stays null.
		courseID, err := tx.CourseIDForQuiz(ctx, quizID)
		if err != nil {
			e.logger.Error("certificate chain could not resolve a course",
				zap.String("quiz_id", quizID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			return nil
		}
		cert, created, err := tx.IssueCertification(ctx, &models.Certification{
			UserID:          userID,
			CourseID:        courseID,
			QuizID:          quizID,
			CertificateCode: uuid.NewString(),
		})
		if err != nil {
			e.logger.Error("certificate issuance failed",
				zap.String("quiz_id", quizID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			return nil
		}
		result.Certificate = &CertificateRef{Code: cert.CertificateCode}
		if created {
			issuedNew = cert
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if issuedNew != nil && e.events != nil {
		payload := queue.CertificateIssuedPayload{
			CertificationID: issuedNew.ID,
			UserID:          issuedNew.UserID,
			QuizID:          issuedNew.QuizID,
			CertificateCode: issuedNew.CertificateCode,
		}
		if err := e.events.EnqueueCertificateIssued(ctx, payload); err != nil {
			e.logger.Warn("certificate event publish failed", zap.Error(err))
		}
	}
	return &result, nil
}

// CreateQuiz creates the quiz for a material. Each material has at most one
// quiz; a duplicate yields ErrDuplicateQuiz.
func (e *Engine) CreateQuiz(ctx context.Context, materialID uuid.UUID, title string) (*models.Quiz, error) {
	if materialID == uuid.Nil || strings.TrimSpace(title) == "" {
		return nil, ErrInvalidRequest
	}
	ctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()

	quiz := &models.Quiz{MaterialID: materialID, Title: title}
	if err := e.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// AddQuestion inserts a question and its options as a single atomic unit.
// Requires at least two options and at least one flagged correct; validation
// happens before any write.
func (e *Engine) AddQuestion(ctx context.Context, quizID uuid.UUID, text string, options []OptionInput) (*models.Question, error) {
	if quizID == uuid.Nil || strings.TrimSpace(text) == "" || len(options) < 2 {
		return nil, ErrInvalidRequest
	}
	anyCorrect := false
	for _, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return nil, ErrInvalidRequest
		}
		if opt.IsCorrect {
			anyCorrect = true
		}
	}
	if !anyCorrect {
		return nil, ErrInvalidRequest
	}

	ctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()

	question := &models.Question{QuizID: quizID, Text: text}
	for _, opt := range options {
		question.Options = append(question.Options, models.Option{Text: opt.Text, IsCorrect: opt.IsCorrect})
	}
	if err := e.store.AddQuestion(ctx, question); err != nil {
		return nil, err
	}
	e.cache.Invalidate(ctx, quizID)
	return question, nil
}

// DeleteQuestion removes a question; its options go with it (cascade).
func (e *Engine) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	if questionID == uuid.Nil {
		return ErrInvalidRequest
	}
	ctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()

	quizID, err := e.store.DeleteQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	e.cache.Invalidate(ctx, quizID)
	return nil
}

// Questions returns a quiz's questions with options, correctness stripped,
// for quiz-taking. Served from the redis cache when warm.
func (e *Engine) Questions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	if quizID == uuid.Nil {
		return nil, ErrInvalidRequest
	}
	if cached, ok := e.cache.Get(ctx, quizID); ok {
		return cached, nil
	}
	ctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()

	questions, err := e.store.QuizQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	e.cache.Set(ctx, quizID, questions)
	return questions, nil
}

// QuizStatus returns the quiz for a material plus the user's attempt
// history (newest first) and derived standing.
func (e *Engine) QuizStatus(ctx context.Context, materialID, userID uuid.UUID) (*QuizStatus, error) {
	if materialID == uuid.Nil || userID == uuid.Nil {
		return nil, ErrInvalidRequest
	}
	ctx, cancel := e.withStoreTimeout(ctx)
	defer cancel()

	quiz, err := e.store.QuizByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	attempts, err := e.store.AttemptsByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil {
		return nil, err
	}

	status := &QuizStatus{Quiz: *quiz, Attempts: attempts, AttemptsMade: len(attempts)}
	for _, a := range attempts {
		if a.Passed {
			status.HasPassed = true
			break
		}
	}
	if remaining := e.cfg.AttemptCap - status.AttemptsMade; remaining > 0 {
		status.AttemptsRemaining = remaining
	}
	if status.Attempts == nil {
		status.Attempts = []models.Attempt{}
	}
	return status, nil
}

func (e *Engine) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.StoreTimeoutSec <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(e.cfg.StoreTimeoutSec)*time.Second)
}

// scoreAnswers counts answered questions and how many chose the correct
// option. Unanswered quiz questions do not enter the denominator.
func scoreAnswers(answered, answerKey map[uuid.UUID]uuid.UUID) (score, total int) {
	for questionID, optionID := range answered {
		total++
		if correct, ok := answerKey[questionID]; ok && optionID == correct {
			score++
		}
	}
	return score, total
}

// passes applies the pass threshold to an answered-only percentage.
func passes(score, total, threshold int) bool {
	if total == 0 {
		return false
	}
	percentage := float64(score) / float64(total) * 100
	return percentage >= float64(threshold)
}

// IsBusinessError reports whether err maps to a client-facing rejection
// rather than a persistence failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrAlreadyPassed) ||
		errors.Is(err, ErrNoAttemptsRemaining) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateQuiz)
}
