package quizzes

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corelearn/backend/pkg/response"
)

// CreateRequest is the body for POST /quizzes.
type CreateRequest struct {
	MaterialID string `json:"material_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
}

// AddQuestionRequest is the body for POST /quizzes/:quizId/questions.
type AddQuestionRequest struct {
	Text    string        `json:"question_text" binding:"required"`
	Options []OptionInput `json:"options" binding:"required"`
}

// SubmitRequest is the body for POST /quizzes/submit. Answers map question
// ids to the chosen option ids.
type SubmitRequest struct {
	QuizID  string            `json:"quiz_id" binding:"required"`
	UserID  string            `json:"user_id" binding:"required"`
	Answers map[string]string `json:"answers" binding:"required"`
}

// Handler handles quiz HTTP endpoints.
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler creates a quiz handler.
func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, logger: logger}
}

// Create handles POST /quizzes (admin).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "material_id and title are required")
		return
	}
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid material id")
		return
	}

	quiz, err := h.engine.CreateQuiz(c.Request.Context(), materialID, req.Title)
	if err != nil {
		if errors.Is(err, ErrDuplicateQuiz) {
			response.Conflict(c, "a quiz already exists for this material")
			return
		}
		h.fail(c, "create quiz", err)
		return
	}
	response.Created(c, quiz)
}

// AddQuestion handles POST /quizzes/:quizId/questions (admin).
func (h *Handler) AddQuestion(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid quiz id")
		return
	}
	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "question requires text, at least two options, and one correct answer")
		return
	}

	question, err := h.engine.AddQuestion(c.Request.Context(), quizID, req.Text, req.Options)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			response.BadRequest(c, response.KindInvalidRequest, "question requires text, at least two options, and one correct answer")
			return
		}
		h.fail(c, "add question", err)
		return
	}
	response.Created(c, gin.H{"question_id": question.ID})
}

// DeleteQuestion handles DELETE /questions/:questionId (admin).
func (h *Handler) DeleteQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("questionId"))
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid question id")
		return
	}
	if err := h.engine.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "question not found")
			return
		}
		h.fail(c, "delete question", err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// ListQuestions handles GET /quizzes/:quizId/questions. Correct-answer
// flags are never included.
func (h *Handler) ListQuestions(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid quiz id")
		return
	}
	questions, err := h.engine.Questions(c.Request.Context(), quizID)
	if err != nil {
		h.fail(c, "list questions", err)
		return
	}
	response.OK(c, questions)
}

// Status handles GET /materials/:materialId/quiz?user_id=...
func (h *Handler) Status(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("materialId"))
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid material id")
		return
	}
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "user_id is required to fetch quiz status")
		return
	}

	status, err := h.engine.QuizStatus(c.Request.Context(), materialID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "quiz not found for this material")
			return
		}
		h.fail(c, "quiz status", err)
		return
	}
	response.OK(c, status)
}

// Submit handles POST /quizzes/submit.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "quiz_id, user_id, and answers are required")
		return
	}
	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid quiz id")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid user id")
		return
	}

	result, err := h.engine.SubmitAttempt(c.Request.Context(), quizID, userID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			response.BadRequest(c, response.KindInvalidRequest, "no valid answers submitted")
		case errors.Is(err, ErrAlreadyPassed):
			response.Forbidden(c, response.KindAlreadyPassed, "you have already passed this quiz")
		case errors.Is(err, ErrNoAttemptsRemaining):
			response.Forbidden(c, response.KindNoAttemptsRemaining, "you have no more attempts for this quiz")
		default:
			h.fail(c, "submit attempt", err)
		}
		return
	}
	response.OK(c, result)
}

// fail logs the internal error and returns an opaque persistence failure.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	response.Internal(c, "an unexpected error occurred")
}
