package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
)

// Services bundles the use cases the API exposes.
type Services struct {
	Auth        service.AuthService
	Booking     service.BookingService
	Magic       service.MagicService
	Concierge   service.ConciergeService
	WhatsApp    service.WhatsAppJobs
	Marketing   service.MarketingService
	SelfImprove service.SelfImproveService
	Events      service.EventService
	Payments    service.PaymentService
}

// Options carries the secrets and limits the routes enforce.
type Options struct {
	CronSecret        string
	N8NSecret         string
	TwilioAuthToken   string
	WebhookURL        string
	APIRatePerMinute  int
	BookRatePerMinute int
}

// SetupRoutes sets up all the API routes for version 1.
func SetupRoutes(r *gin.Engine, services Services, opts Options, log logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}

	v1 := r.Group(BasePath) // lookup in version file
	v1.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Webhooks are not rate limited
	whatsAppHandler := NewWhatsAppHandler(services.Concierge, services.WhatsApp, opts.TwilioAuthToken, opts.WebhookURL, log)
	paymentHandler := NewPaymentHandler(services.Payments, log)
	v1.GET("/whatsapp/webhook", whatsAppHandler.Health)
	v1.POST("/whatsapp/webhook", whatsAppHandler.Inbound)
	v1.POST("/payments/webhook", paymentHandler.Webhook)

	api := v1.Group("", NewRateLimiter(opts.APIRatePerMinute).Middleware())
	bearer := RequireBearer(services.Auth, log, nil)
	admin := api.Group("", bearer, RequireAdmin(services.Auth))

	// Booking Routes
	bookingHandler := NewBookingHandler(services.Booking, log)
	api.POST("/book-flow",
		NewRateLimiter(opts.BookRatePerMinute).Middleware(),
		RequireBearer(services.Auth, log, denyBookFlow),
		bookingHandler.BookFlow)
	admin.GET("/debug/booking-status", bookingHandler.BookingStatus)

	// Magic Routes
	magicHandler := NewMagicHandler(services.Magic, services.Events, services.Auth, log)
	api.POST("/magic/generate", bearer, magicHandler.Generate)
	api.GET("/magic", bearer, magicHandler.List)
	api.POST("/analyze-profile", bearer, magicHandler.AnalyzeProfile)

	// Payment Routes
	api.POST("/payments/intent", bearer, paymentHandler.CreateIntent)

	// Marketing Routes
	marketingHandler := NewMarketingHandler(services.Marketing, log)
	admin.POST("/marketing/run-campaign", marketingHandler.RunCampaign)
	admin.GET("/marketing/campaigns", marketingHandler.ListCampaigns)
	admin.POST("/marketing/campaigns", marketingHandler.CreateCampaign)

	// Jobs Routes
	jobsHandler := NewJobsHandler(services.WhatsApp, services.Marketing, services.Events, services.SelfImprove, log)
	cron := api.Group("", RequireCronSecret(opts.CronSecret))
	cron.POST("/cron/whatsapp", jobsHandler.CheckInReminders)
	cron.POST("/cron/proactive", jobsHandler.ProactiveMessages)
	cron.POST("/cron/daily-marketing", jobsHandler.DailyMarketing)
	cron.POST("/cron/re-engagement", jobsHandler.ReEngagement)
	cron.GET("/check-events", jobsHandler.CheckEvents)
	api.POST("/trigger-n8n", RequireHeaderSecret("x-n8n-secret", opts.N8NSecret), jobsHandler.TriggerWorkflow)

	// Admin Routes
	admin.POST("/admin/whatsapp", whatsAppHandler.AdminSend)
	admin.POST("/admin/self-improve", jobsHandler.SelfImprove)
}
