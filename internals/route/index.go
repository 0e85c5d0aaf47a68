package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ilika_backend/internals/configs"
	adminController "ilika_backend/internals/features/campaign/admin/controller"
	contribController "ilika_backend/internals/features/campaign/contributions/controller"
	contribService "ilika_backend/internals/features/campaign/contributions/service"
	groupController "ilika_backend/internals/features/campaign/groups/controller"
	groupService "ilika_backend/internals/features/campaign/groups/service"
	notifController "ilika_backend/internals/features/campaign/notifications/controller"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	retryController "ilika_backend/internals/features/campaign/retry/controller"
	retryService "ilika_backend/internals/features/campaign/retry/service"
	webhookController "ilika_backend/internals/features/campaign/webhooks/controller"
	webhookService "ilika_backend/internals/features/campaign/webhooks/service"
	"ilika_backend/internals/middlewares"
	"ilika_backend/internals/middlewares/auth"
)

// SetupRoutes wires every HTTP surface: the gateway webhook, the cron
// trigger, the internal email dispatch, the public checkout/campaign
// endpoints and the JWT-guarded admin group.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	mailer := notifService.NewMailerFromEnv(db)
	gateway := contribService.NewGatewayFromEnv()

	processor := webhookService.NewProcessor(db, mailer)
	sweeper := retryService.NewSweeper(db, mailer)
	contributions := contribService.NewContributionService(db, gateway)
	stats := contribService.NewStatsService(db)
	groups := groupService.NewGroupService(db)

	webhookCtl := webhookController.NewWebhookController(processor)
	retryCtl := retryController.NewRetryController(sweeper)
	emailCtl := notifController.NewSendEmailController(mailer)
	contribCtl := contribController.NewContributionController(contributions, stats)
	groupCtl := groupController.NewGroupController(groups)
	adminCtl := adminController.NewAdminController(db, contributions)
	authCtl := adminController.NewAuthController()

	api := app.Group("/api", middlewares.DBMiddleware(db))

	// Gateway callbacks and the scheduler trigger.
	api.Post("/razorpay-webhook", webhookCtl.HandleWebhook)
	api.Get("/cron/payment-retry", retryCtl.TriggerSweep)

	// Internal dispatch, consumed by the frontend's serverless hooks.
	internal := api.Group("/internal")
	internal.Post("/send-email", emailCtl.SendEmail)

	// Public checkout and campaign surface.
	public := api.Group("/public")
	public.Post("/contributions", middlewares.CheckoutRateLimiter(), contribCtl.CreateContribution)
	public.Post("/contributions/:id/callback", contribCtl.CheckoutCallback)
	public.Post("/contributions/:id/cancel", contribCtl.CancelContribution)
	public.Post("/groups", middlewares.CheckoutRateLimiter(), groupCtl.CreateGroup)
	public.Get("/groups/:slug", groupCtl.GetGroup)
	public.Post("/groups/:id/join", middlewares.CheckoutRateLimiter(), groupCtl.JoinGroup)
	public.Post("/groups/:id/unjoin", groupCtl.UnjoinGroup)
	public.Get("/stats", contribCtl.CampaignStats)
	public.Get("/ticker", contribCtl.Ticker)

	// Admin.
	api.Post("/admin/login", middlewares.LoginRateLimiter(), authCtl.Login)

	a := api.Group("/a", auth.AdminJWT(auth.AdminJWTOpts{
		Secret:              configs.JWTSecret,
		AllowCookieFallback: true,
	}))
	a.Get("/contributions", adminCtl.ListContributions)
	a.Get("/contributions/failed", adminCtl.ListFailed)
	a.Get("/contributions/disputed", adminCtl.ListDisputed)
	a.Get("/contributions/export", adminCtl.ExportContributionsCSV)
	a.Post("/contributions/manual", adminCtl.CreateManualContribution)
	a.Post("/contributions/:id/cancel", adminCtl.CancelSubscription)
	a.Get("/subscriptions", adminCtl.ListSubscriptions)
	a.Get("/stats/revenue", adminCtl.RevenueStats)
	a.Get("/stats/referrals", adminCtl.ReferralLeaderboard)
	a.Get("/webhook-events", adminCtl.ListWebhookEvents)
	a.Get("/email-logs", adminCtl.ListEmailLogs)
}
