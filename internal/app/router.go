package app

import (
	"net/http"

	"gigbook/internal/config"
	"gigbook/internal/domain/notification"
	"gigbook/internal/domain/verification"
	"gigbook/internal/middleware"
	jwtsvc "gigbook/internal/pkg/jwt"
	"gigbook/internal/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterDeps are the collaborators of the HTTP API. Hub may be nil.
type RouterDeps struct {
	Config *config.Config
	DB     *gorm.DB
	JWT    *jwtsvc.Service
	Queue  notification.Enqueuer
	Gate   *verification.Gate
	Hub    *realtime.Hub
	Logger *zap.Logger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d RouterDeps) *gin.Engine {
	cfg := d.Config

	notificationService := notification.NewService(
		notification.NewPreferencesRepository(d.DB),
		notification.NewDeviceTokenRepository(d.DB),
		notification.NewInAppRepository(d.DB),
	)

	var ws gin.HandlerFunc
	if d.Hub != nil {
		ws = d.Hub.Handler()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(d.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// protected
		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))
		{
			notification.RegisterRoutes(
				protected,
				notification.NewHandler(notificationService),
				notification.NewPreferencesHandler(notificationService),
				notification.NewDeviceTokensHandler(notificationService),
				ws,
			)
			verification.RegisterRoutes(protected, verification.NewHandler(d.Gate))

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			notification.RegisterAdminRoutes(admin, notification.NewCleanupHandler(
				notification.NewCleanupService(
					notification.NewInAppRepository(d.DB),
					notification.NewDeviceTokenRepository(d.DB),
					d.Logger,
				),
				notification.CleanupConfig{
					NotificationRetentionDays: cfg.NotificationRetentionDays,
					DeviceTokenInactivityDays: cfg.DeviceTokenInactivityDays,
				},
			))
		}

		// service-to-service
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth(cfg.InternalAPIToken, d.Logger))
		internal.Use(middleware.RateLimit(cfg.InternalRatePerMin, d.Logger))
		{
			notification.RegisterInternalRoutes(internal, notification.NewInternalHandler(d.Queue))
		}
	}

	return r
}
