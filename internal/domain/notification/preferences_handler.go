package notification

import (
	"errors"
	"net/http"

	"gigbook/internal/pkg/response"
	"gigbook/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// PreferencesHandler handles notification preferences API endpoints
type PreferencesHandler struct {
	service *Service
}

func NewPreferencesHandler(service *Service) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

// GetPreferences returns the caller's preferences, defaults included.
// @Summary		Get notification preferences
// @Tags		Notifications - Preferences
// @Security	BearerAuth
// @Success		200	{object}	PreferencesResponse
// @Router		/notifications/preferences [GET]
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	prefs, err := h.service.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get preferences")
		return
	}

	response.Success(c, http.StatusOK, PreferencesResponseFromEntity(prefs))
}

// UpdatePreferences applies a partial update.
// @Summary		Update notification preferences
// @Tags		Notifications - Preferences
// @Security	BearerAuth
// @Param		body	body	UpdatePreferencesRequest	true	"Fields to change"
// @Success		200	{object}	PreferencesResponse
// @Failure		400	{object}	map[string]interface{}
// @Router		/notifications/preferences [PATCH]
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid preferences", errs)
		return
	}

	prefs, err := h.service.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidTimeOfDay) || errors.Is(err, ErrInvalidChannelOverrides) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update preferences")
		return
	}

	response.Success(c, http.StatusOK, PreferencesResponseFromEntity(prefs))
}

// ResetPreferences restores the defaults.
// @Router		/notifications/preferences/reset [POST]
func (h *PreferencesHandler) ResetPreferences(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	prefs, err := h.service.ResetPreferences(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "RESET_FAILED", "Failed to reset preferences")
		return
	}

	response.Success(c, http.StatusOK, PreferencesResponseFromEntity(prefs))
}
