package handler

import (
	"net/http"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/service"
	"github.com/AlTattoo/top-challenges/pkg/response"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ScoreHandler handles score recording and history
type ScoreHandler struct {
	scoreService service.ScoreService
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoreService service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// RecordScore handles POST /scores
func (h *ScoreHandler) RecordScore(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.score.record")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RecordScoreRequest
	if !bindJSON(c, &req) {
		span.SetStatus(codes.Error, "invalid request")
		return
	}

	result, err := h.scoreService.RecordScore(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("updated_challenges", len(result.UpdatedChallenges)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, response.Success(result))
}

// GetScores handles GET /scores?userId=&gameZone=&location=
func (h *ScoreHandler) GetScores(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.score.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var filter dto.ScoreFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		span.SetStatus(codes.Error, "invalid query")
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	scores, err := h.scoreService.GetScores(ctx, &filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(dto.ScoreListResponse{Scores: scores}))
}
