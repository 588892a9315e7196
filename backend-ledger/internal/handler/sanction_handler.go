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

// SanctionHandler handles sanctions
type SanctionHandler struct {
	sanctionService service.SanctionService
}

// NewSanctionHandler creates a new sanction handler
func NewSanctionHandler(sanctionService service.SanctionService) *SanctionHandler {
	return &SanctionHandler{sanctionService: sanctionService}
}

// IssueSanction handles POST /sanctions
func (h *SanctionHandler) IssueSanction(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sanction.issue")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.IssueSanctionRequest
	if !bindJSON(c, &req) {
		span.SetStatus(codes.Error, "invalid request")
		return
	}

	sanction, err := h.sanctionService.IssueSanction(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, response.Success(dto.SanctionResponse{
		Message:  "Sanction recorded successfully",
		Sanction: *sanction,
	}))
}

// ListSanctions handles GET /participants/:id/sanctions
func (h *SanctionHandler) ListSanctions(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sanction.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sanctions, err := h.sanctionService.ListSanctions(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(dto.SanctionListResponse{Sanctions: sanctions}))
}
