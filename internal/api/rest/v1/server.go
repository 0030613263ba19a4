package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/config"
	"github.com/linapoint/resortagents/internal/logger"
)

// NewRouter builds the engine with recovery, request logging, CORS and every
// version 1 route.
func NewRouter(cfg config.ServerConfig, services Services, opts Options, log logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log, cfg.SlowRequest))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature", "X-N8N-Secret"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	SetupRoutes(r, services, opts, log)
	return r
}

// OptionsFromConfig collects the route options from loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CronSecret:        cfg.Secrets.CronSecret,
		N8NSecret:         cfg.Secrets.N8NSecret,
		TwilioAuthToken:   cfg.WhatsApp.AuthToken,
		WebhookURL:        cfg.WhatsApp.WebhookURL,
		APIRatePerMinute:  cfg.Server.APIRatePerMinute,
		BookRatePerMinute: cfg.Server.BookRatePerMinute,
	}
}
