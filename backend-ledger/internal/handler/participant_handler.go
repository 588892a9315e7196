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

// ParticipantHandler handles registration and profile requests
type ParticipantHandler struct {
	participantService service.ParticipantService
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(participantService service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: participantService}
}

// Register handles POST /register
func (h *ParticipantHandler) Register(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.participant.register")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		span.SetStatus(codes.Error, "invalid request")
		return
	}

	result, err := h.participantService.Register(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("participant_id", result.User.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, response.Success(result))
}

// GetParticipant handles GET /participants/:id
func (h *ParticipantHandler) GetParticipant(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.participant.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	participant, err := h.participantService.GetParticipant(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(participant))
}
