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

// NotificationHandler handles notifications. Delivery happens elsewhere.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Notify handles POST /notifications
func (h *NotificationHandler) Notify(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.notification.notify")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.NotifyRequest
	if !bindJSON(c, &req) {
		span.SetStatus(codes.Error, "invalid request")
		return
	}

	notification, err := h.notificationService.Notify(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(dto.NotifyResponse{
		Message:      "Notification sent successfully",
		Notification: *notification,
	}))
}
