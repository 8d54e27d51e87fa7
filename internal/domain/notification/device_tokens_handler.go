package notification

import (
	"errors"
	"net/http"
	"strconv"

	"gigbook/internal/pkg/response"
	"gigbook/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// DeviceTokensHandler handles push subscription endpoints
type DeviceTokensHandler struct {
	service *Service
}

func NewDeviceTokensHandler(service *Service) *DeviceTokensHandler {
	return &DeviceTokensHandler{service: service}
}

// RegisterDeviceToken registers (or re-activates) a push token.
// @Summary		Register device token
// @Tags		Notifications - Device Tokens
// @Security	BearerAuth
// @Param		body	body	RegisterDeviceTokenRequest	true	"Device token"
// @Success		201	{object}	DeviceTokenResponse
// @Router		/notifications/device-tokens [POST]
func (h *DeviceTokensHandler) RegisterDeviceToken(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req RegisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid device token", errs)
		return
	}

	dt, err := h.service.RegisterDeviceToken(c.Request.Context(), userID, req.Token, req.Platform, req.DeviceName)
	if err != nil {
		if errors.Is(err, ErrInvalidPlatform) {
			response.Error(c, http.StatusBadRequest, "INVALID_PLATFORM", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "REGISTER_FAILED", "Failed to register device token")
		return
	}

	response.Success(c, http.StatusCreated, DeviceTokenResponseFromEntity(dt))
}

// ListDeviceTokens lists the caller's active tokens.
// @Router		/notifications/device-tokens [GET]
func (h *DeviceTokensHandler) ListDeviceTokens(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	tokens, err := h.service.ListDeviceTokens(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list device tokens")
		return
	}

	out := make([]*DeviceTokenResponse, len(tokens))
	for i := range tokens {
		out[i] = DeviceTokenResponseFromEntity(&tokens[i])
	}
	response.Success(c, http.StatusOK, out)
}

// DeactivateDeviceToken stops pushes to one device.
// @Router		/notifications/device-tokens/{id} [DELETE]
func (h *DeviceTokensHandler) DeactivateDeviceToken(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid device token ID")
		return
	}

	if err := h.service.DeactivateDeviceToken(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, ErrDeviceTokenNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Device token not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "DEACTIVATE_FAILED", "Failed to deactivate device token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deactivated"})
}
