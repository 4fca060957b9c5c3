package certificates

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corelearn/backend/pkg/response"
)

// Handler handles certificate HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a certificates handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /certificates/:userId/:quizId.
func (h *Handler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid user id")
		return
	}
	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.BadRequest(c, response.KindInvalidRequest, "invalid quiz id")
		return
	}

	cert, err := h.repo.GetByUserAndQuiz(c.Request.Context(), userID, quizID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "certificate not found")
			return
		}
		h.logger.Error("get certificate", zap.Error(err))
		response.Internal(c, "an unexpected error occurred")
		return
	}
	response.OK(c, cert)
}
