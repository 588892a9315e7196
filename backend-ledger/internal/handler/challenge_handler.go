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

// ChallengeHandler handles challenge administration
type ChallengeHandler struct {
	challengeService service.ChallengeService
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(challengeService service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

// AssignChallenge handles POST /participants/:id/challenges
func (h *ChallengeHandler) AssignChallenge(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.challenge.assign")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.AssignChallengeRequest
	if !bindJSON(c, &req) {
		span.SetStatus(codes.Error, "invalid request")
		return
	}

	challenge, err := h.challengeService.AssignChallenge(ctx, c.Param("id"), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("challenge_id", challenge.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, response.Success(challenge))
}

// ListChallenges handles GET /participants/:id/challenges
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.challenge.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	challenges, err := h.challengeService.ListChallenges(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(dto.ChallengeListResponse{Challenges: challenges}))
}

// ClaimReward handles POST /participants/:id/challenges/:challengeId/claim
func (h *ChallengeHandler) ClaimReward(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.challenge.claim_reward")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	challenge, err := h.challengeService.ClaimReward(ctx, c.Param("id"), c.Param("challengeId"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(challenge))
}

// ReconcileChallenges handles POST /participants/:id/challenges/reconcile
func (h *ChallengeHandler) ReconcileChallenges(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.challenge.reconcile")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	changed, err := h.challengeService.ReconcileChallenges(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("updated_challenges", len(changed)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(dto.ReconcileResponse{UpdatedChallenges: changed}))
}
