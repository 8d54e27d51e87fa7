package verification

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	group := protected.Group("/verification")
	{
		group.GET("/status", handler.GetStatus)
		group.POST("/check", handler.Check)
	}
}
