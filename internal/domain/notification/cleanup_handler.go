package notification

import (
	"net/http"
	"strconv"

	"gigbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// CleanupHandler lets admins run retention on demand.
type CleanupHandler struct {
	service *CleanupService
	config  CleanupConfig
}

func NewCleanupHandler(service *CleanupService, config CleanupConfig) *CleanupHandler {
	return &CleanupHandler{service: service, config: config}
}

// Run executes one cleanup pass.
// @Summary		Run notification cleanup
// @Tags		Admin
// @Param		read_only	query	bool	false	"Only delete notifications already read"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/notifications/cleanup [POST]
func (h *CleanupHandler) Run(c *gin.Context) {
	cfg := h.config
	if s := c.Query("read_only"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "read_only must be a boolean")
			return
		}
		cfg.ReadOnly = v
	}

	report, err := h.service.Run(c.Request.Context(), cfg)
	if err != nil {
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "CLEANUP_FAILED", "Cleanup finished with errors", gin.H{
			"notifications_deleted": report.NotificationsDeleted,
			"device_tokens_deleted": report.DeviceTokensDeleted,
		})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"notifications_deleted": report.NotificationsDeleted,
		"device_tokens_deleted": report.DeviceTokensDeleted,
		"duration_ms":           report.Duration.Milliseconds(),
	})
}
