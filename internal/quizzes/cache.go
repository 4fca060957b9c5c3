package quizzes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/corelearn/backend/internal/models"
)

const questionCachePrefix = "quiz:questions:"

// QuestionCache caches learner-facing question listings in Redis. All
// methods are safe on a nil cache, so the engine runs without Redis.
type QuestionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewQuestionCache creates a question cache with the given TTL.
func NewQuestionCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *QuestionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached listing for a quiz, if present.
func (c *QuestionCache) Get(ctx context.Context, quizID uuid.UUID) ([]models.Question, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, questionCachePrefix+quizID.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []models.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		c.logger.Warn("question cache decode failed", zap.String("quiz_id", quizID.String()), zap.Error(err))
		return nil, false
	}
	return questions, true
}

// Set stores the listing for a quiz. Failures are logged and ignored.
func (c *QuestionCache) Set(ctx context.Context, quizID uuid.UUID, questions []models.Question) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, questionCachePrefix+quizID.String(), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("question cache set failed", zap.String("quiz_id", quizID.String()), zap.Error(err))
	}
}

// Invalidate drops the cached listing after an authoring write.
func (c *QuestionCache) Invalidate(ctx context.Context, quizID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, questionCachePrefix+quizID.String()).Err(); err != nil {
		c.logger.Warn("question cache invalidate failed", zap.String("quiz_id", quizID.String()), zap.Error(err))
	}
}
