package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/standup-backend/config"
	"github.com/d60-Lab/standup-backend/internal/api/gate"
	"github.com/d60-Lab/standup-backend/internal/api/handler"
	"github.com/d60-Lab/standup-backend/internal/api/middleware"
)

// NewRouter 组装路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Otel.Enabled {
		r.Use(otelgin.Middleware("standup-backend"))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", gate.Middleware(cfg.Auth.BackendSecret))

	auth := api.Group("/auth")
	{
		auth.POST("/user/register", h.Register)
		auth.POST("/user/login", h.Login)
		auth.GET("/user/settings/get", h.GetSettings)
		auth.POST("/user/settings/set_name", h.SetName)
	}

	channel := api.Group("/channel")
	{
		channel.POST("/create", h.CreateChannel)
		channel.GET("/list", h.ListChannels)
		channel.GET("/members", h.ChannelMembers)
		channel.POST("/archive", h.ArchiveChannel)
		channel.POST("/invite", h.InviteUser)
		channel.POST("/message", h.PostMessage)
		channel.GET("/list_logs", h.ListLogs)
	}

	notification := api.Group("/notification")
	{
		notification.GET("/list/unread", h.UnreadNotifications)
		notification.GET("/list/unread/fingerprint", h.UnreadFingerprint)
		notification.POST("/response", h.NotificationResponse)
	}

	return r
}
