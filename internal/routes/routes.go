package routes

import (
	"github.com/gin-gonic/gin"

	"greenleaf/internal/handlers"
	"greenleaf/internal/middleware"
)

// SetupRoutes registers every endpoint. auth guards /admin; intakeLimit
// throttles the public forms, loginLimit the admin login.
// webhookHandler is nil unless Telegram runs in webhook mode.
func SetupRoutes(
	r *gin.Engine,
	auth gin.HandlerFunc,
	intakeLimit gin.HandlerFunc,
	loginLimit gin.HandlerFunc,
	healthHandler *handlers.HealthHandler,
	intakeHandler *handlers.IntakeHandler,
	leadHandler *handlers.LeadHandler,
	reportHandler *handlers.ReportHandler,
	authHandler *handlers.AuthHandler,
	webhookHandler *handlers.IntegrationsHandler,
) *gin.Engine {

	// ---- публичные
	r.GET("/health", healthHandler.Health)

	api := r.Group("/api", intakeLimit)
	{
		api.POST("/callback", intakeHandler.CreateCallback)
		api.POST("/partner", intakeHandler.CreatePartner)
	}

	r.POST("/admin/login", loginLimit, authHandler.Login)

	if webhookHandler != nil {
		r.POST("/integrations/telegram/webhook", webhookHandler.Webhook)
	}

	// ---- защищённые
	admin := r.Group("/admin", auth, middleware.ReadOnlyGuard())
	{
		admin.GET("/leads", leadHandler.ListActive)
		admin.GET("/leads/:id", leadHandler.GetByID)
		admin.POST("/leads/:id/view", leadHandler.MarkViewed)
		admin.POST("/leads/:id/complete", leadHandler.MarkCompleted)
		admin.GET("/history", leadHandler.History)
		admin.GET("/history/report", reportHandler.HistoryPDF)
		admin.POST("/cleanup", leadHandler.Cleanup)
	}

	return r
}
