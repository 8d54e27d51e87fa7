package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes registers all notification-related routes. ws may be nil
// when realtime delivery is disabled.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler, prefsHandler *PreferencesHandler, devicesHandler *DeviceTokensHandler, ws gin.HandlerFunc) {
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", handler.GetNotifications)
		notifGroup.GET("/unread-count", handler.GetUnreadCount)
		notifGroup.PATCH("/:id/read", handler.MarkAsRead)
		notifGroup.POST("/read-all", handler.MarkAllAsRead)
		notifGroup.DELETE("/:id", handler.DeleteNotification)

		prefsGroup := notifGroup.Group("/preferences")
		{
			prefsGroup.GET("", prefsHandler.GetPreferences)
			prefsGroup.PATCH("", prefsHandler.UpdatePreferences)
			prefsGroup.POST("/reset", prefsHandler.ResetPreferences)
		}

		devicesGroup := notifGroup.Group("/device-tokens")
		{
			devicesGroup.POST("", devicesHandler.RegisterDeviceToken)
			devicesGroup.GET("", devicesHandler.ListDeviceTokens)
			devicesGroup.DELETE("/:id", devicesHandler.DeactivateDeviceToken)
		}

		if ws != nil {
			notifGroup.GET("/ws", ws)
		}
	}
}

// RegisterInternalRoutes mounts the service-to-service send endpoint. The
// group is expected to carry the internal token guard.
func RegisterInternalRoutes(internal *gin.RouterGroup, handler *InternalHandler) {
	internal.POST("/notifications", handler.Send)
}

// RegisterAdminRoutes mounts maintenance endpoints on an admin-only group.
func RegisterAdminRoutes(admin *gin.RouterGroup, handler *CleanupHandler) {
	admin.POST("/notifications/cleanup", handler.Run)
}
