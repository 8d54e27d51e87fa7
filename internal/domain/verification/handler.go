package verification

import (
	"context"
	"errors"
	"net/http"

	"gigbook/internal/pkg/response"
	"gigbook/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes the gate over HTTP.
type Handler struct {
	gate *Gate
}

func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// GetStatus returns the caller's verification state with the ordered steps.
// @Summary		Get verification status
// @Tags		Verification
// @Security	BearerAuth
// @Success		200	{object}	StatusResponse
// @Router		/verification/status [GET]
func (h *Handler) GetStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	st := h.gate.State(c.Request.Context(), userID)
	response.Success(c, http.StatusOK, newStatusResponse(st))
}

// Check tells the client whether a gated action may run.
// @Summary		Check a gated action
// @Tags		Verification
// @Security	BearerAuth
// @Param		body	body	CheckRequest	true	"Action"
// @Success		200	{object}	CheckResponse
// @Failure		403	{object}	map[string]interface{}
// @Router		/verification/check [POST]
func (h *Handler) Check(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	var status Status
	guarded := h.gate.Guard(userID, req.Action, func(context.Context) error { return nil }, GuardOptions{
		Strict:     req.Strict,
		OnVerified: func(st State) { status = st.Status },
	})

	if err := guarded(c.Request.Context()); err != nil {
		abortBlocked(c, err)
		return
	}

	response.Success(c, http.StatusOK, CheckResponse{Action: req.Action, Allowed: true, Status: status})
}

func abortBlocked(c *gin.Context, err error) {
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		response.Abort(c, http.StatusForbidden, "VERIFICATION_REQUIRED", blocked.Message, blocked)
		return
	}
	_ = c.Error(err)
	response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Verification check failed", nil)
}
