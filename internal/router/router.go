package router

import (
	"academy/config"
	"academy/internal/handler"
	"academy/internal/logging"
	"academy/internal/middleware"
	"academy/internal/repository"
	"academy/internal/service"
	"academy/internal/ws"
	"academy/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers. provider may be nil when no processor is
// configured; checkout and verification then answer with a configuration error.
func Setup(cfg *config.Config, db *gorm.DB, provider payment.Provider, hub *ws.Hub) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	if limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst); limiter != nil {
		r.Use(middleware.RateLimit(limiter))
	}

	// Repositories
	walletRepo := repository.NewWalletRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	var notifier *service.NotificationService
	if hub != nil {
		notifier = service.NewNotificationService(hub)
	}
	if provider == nil {
		logging.Warn().Msg("no payment processor configured: token purchases are disabled")
	}
	walletSvc := service.NewWalletService(walletRepo, auditRepo, notifier)
	checkoutSvc := service.NewCheckoutService(provider, paymentRepo, cfg.Payment)
	verifierSvc := service.NewVerifierService(provider, walletRepo, paymentRepo, auditRepo, notifier)
	enrollmentSvc := service.NewEnrollmentService(db, walletRepo, enrollmentRepo, courseRepo, notifier)

	// Handlers
	healthHandler := handler.NewHealthHandler(db, provider)
	tokenHandler := handler.NewTokenHandler(checkoutSvc, verifierSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	adminHandler := handler.NewAdminHandler(walletSvc)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(provider, verifierSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		tokens := api.Group("/tokens")
		{
			tokens.GET("/packages", tokenHandler.Packages)
			tokens.POST("/checkout", authMw, tokenHandler.Checkout)
			tokens.POST("/verify", authMw, tokenHandler.Verify)
			tokens.GET("/payments", authMw, tokenHandler.Payments)
		}

		api.POST("/courses/:id/enroll", authMw, enrollmentHandler.Enroll)

		api.GET("/wallet", authMw, walletHandler.GetBalance)
		api.GET("/wallet/transactions", authMw, walletHandler.ListTransactions)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/enrollments", enrollmentHandler.ListMine)
			me.PATCH("/enrollments/:course_id/progress", enrollmentHandler.UpdateProgress)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/users/:user_id/tokens", adminHandler.GrantTokens)
			admin.GET("/users/:user_id/wallet", adminHandler.GetUserWallet)
			admin.GET("/transactions", adminHandler.ListTransactions)
		}

		api.POST("/webhooks/payment", paymentWebhookHandler.Handle)
	}

	if hub != nil {
		r.GET("/ws/wallet", ws.UpgradeWalletWS(&cfg.JWT, hub, walletSvc))
	}

	return r
}
