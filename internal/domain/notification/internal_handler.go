package notification

import (
	"context"
	"errors"
	"net/http"

	"gigbook/internal/pkg/response"
	"gigbook/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Enqueuer accepts an event for asynchronous delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, ev Event) error
}

// InternalHandler lets other backend services trigger notifications.
type InternalHandler struct {
	queue Enqueuer
}

func NewInternalHandler(queue Enqueuer) *InternalHandler {
	return &InternalHandler{queue: queue}
}

// Send validates the event and queues it. Delivery happens later; the
// response only acknowledges acceptance.
// @Summary		Queue a notification
// @Tags		Internal
// @Param		body	body	SendRequest	true	"Notification event"
// @Success		202	{object}	map[string]interface{}
// @Router		/internal/notifications [POST]
func (h *InternalHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid notification", errs)
		return
	}

	ev := req.Event()
	if err := ev.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.queue.Enqueue(c.Request.Context(), ev); err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "ENQUEUE_FAILED", "Failed to queue notification")
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"status": "queued"})
}
