package handler

import (
	"net/http"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/dto"
	"github.com/AlTattoo/top-challenges/backend-ledger/internal/service"
	"github.com/AlTattoo/top-challenges/pkg/response"
	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
)

// RankingHandler handles leaderboard queries
type RankingHandler struct {
	rankingService service.RankingService
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(rankingService service.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// GetRankings handles GET /rankings?gameZone=&location=&userId=
func (h *RankingHandler) GetRankings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ranking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var query dto.RankingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		span.SetStatus(codes.Error, "invalid query")
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	rankings, err := h.rankingService.GetRankings(ctx, &query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(rankings))
}
