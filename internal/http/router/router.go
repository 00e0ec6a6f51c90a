package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/complaint-voice-backend/internal/config"
	"github.com/ignatzorin/complaint-voice-backend/internal/http/handlers"
	"github.com/ignatzorin/complaint-voice-backend/internal/http/middleware"
	"github.com/ignatzorin/complaint-voice-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения: вебхуки Twilio,
// websocket для Media Streams и ops API для операторов.
func SetupRouter(
	cfg *config.Config,
	voiceHandler *handlers.VoiceHandler,
	streamHandler *handlers.StreamHandler,
	authHandler *handlers.AuthHandler,
	complaintHandler *handlers.ComplaintHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Звонки. Twilio не умеет в JWT, защитой служат секретность URL и подпись
	// вебхука на стороне Twilio.
	twilio := r.Group("/twilio")
	{
		twilio.POST("/voice", voiceHandler.Handle)
		twilio.GET("/stream", streamHandler.Handle)
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/login", authHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/complaints", complaintHandler.List)
		protected.GET("/complaints/:ref", complaintHandler.Get)
		protected.PATCH("/complaints/:ref/status", complaintHandler.UpdateStatus)
	}

	return r
}
