package handler

import (
	"errors"
	"net/http"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/service"
	"github.com/AlTattoo/top-challenges/pkg/logger"
	"github.com/AlTattoo/top-challenges/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Caller-facing messages for the known causes
var causeMessages = []struct {
	cause   error
	message string
}{
	{domain.ErrParticipantNotFound, "User not found"},
	{domain.ErrAdminNotFound, "Admin not found"},
	{domain.ErrChallengeNotFound, "Challenge not found"},
	{domain.ErrParticipantExists, "User with this pseudo or phone number already exists"},
	{domain.ErrInvalidBadgeCode, "Invalid badge code"},
	{domain.ErrNoValidTicket, "No valid ticket available"},
	{domain.ErrChallengeNotCompleted, "Challenge is not completed"},
	{domain.ErrRewardAlreadyClaimed, "Reward already claimed"},
}

func messageFor(err error) string {
	for _, m := range causeMessages {
		if errors.Is(err, m.cause) {
			return m.message
		}
	}
	return err.Error()
}

// handleError maps service errors to HTTP responses
func handleError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
		forbiddenErr  *domain.ForbiddenError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.BadRequest(messageFor(validationErr)))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, response.NotFound(messageFor(notFoundErr)))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, response.Conflict(messageFor(conflictErr)))
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, response.Forbidden(messageFor(forbiddenErr)))
	case errors.Is(err, service.ErrRankingsUnavailable):
		c.JSON(http.StatusServiceUnavailable, response.Error(response.CodeUnavailable, "Rankings are temporarily unavailable"))
	default:
		logger.Get().WithContext(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.InternalError())
	}
}

// bindJSON decodes the body and answers 400 on malformed JSON
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return false
	}
	return true
}
