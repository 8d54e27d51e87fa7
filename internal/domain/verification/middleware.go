package verification

import (
	"context"
	"net/http"

	"gigbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContextState is the gin context key holding the State of an allowed
// request.
const ContextState = "verification_state"

// RequireVerified blocks the route for users the gate does not allow. It
// must run after JWT auth. Gated gig routes (apply, accept booking) mount it
// in the services that own them.
func RequireVerified(gate *Gate, strict bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated", nil)
			return
		}

		label := c.FullPath()
		if label == "" {
			label = c.Request.URL.Path
		}

		guarded := gate.Guard(userID, label, func(context.Context) error {
			c.Next()
			return nil
		}, GuardOptions{
			Strict:     strict,
			OnVerified: func(st State) { c.Set(ContextState, st) },
		})

		if err := guarded(c.Request.Context()); err != nil {
			abortBlocked(c, err)
		}
	}
}
