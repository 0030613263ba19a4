package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
	"github.com/linapoint/resortagents/internal/whatsapp"
	"go.uber.org/zap"
)

// WhatsAppHandler defines the Twilio webhook and admin messaging endpoints
type WhatsAppHandler interface {
	Health(ctx *gin.Context)
	Inbound(ctx *gin.Context)
	AdminSend(ctx *gin.Context)
}

type whatsAppHandler struct {
	conciergeService service.ConciergeService
	jobs             service.WhatsAppJobs
	authToken        string
	webhookURL       string
	log              logger.Logger
	now              func() time.Time
}

// NewWhatsAppHandler verifies inbound webhooks against authToken. When
// webhookURL is empty the signed URL is rebuilt from the request.
func NewWhatsAppHandler(conciergeService service.ConciergeService, jobs service.WhatsAppJobs, authToken, webhookURL string, log logger.Logger) WhatsAppHandler {
	return &whatsAppHandler{
		conciergeService: conciergeService,
		jobs:             jobs,
		authToken:        authToken,
		webhookURL:       webhookURL,
		log:              log,
		now:              time.Now,
	}
}

func (handler *whatsAppHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "WhatsApp webhook endpoint is active",
		"timestamp": handler.now().UTC().Format(time.RFC3339),
	})
}

func (handler *whatsAppHandler) signedURL(r *http.Request) string {
	if handler.webhookURL != "" {
		return handler.webhookURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI())
}

// Inbound handles a Twilio message callback: it verifies the signature, runs
// the concierge and sends the reply back to the guest.
// @Summary Receive a WhatsApp message
// @Tags WhatsApp
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /whatsapp/webhook [post]
func (handler *whatsAppHandler) Inbound(ctx *gin.Context) {
	if err := ctx.Request.ParseForm(); err != nil {
		badRequest(ctx, fmt.Sprintf("invalid form body: %v", err))
		return
	}
	params := ctx.Request.PostForm

	err := whatsapp.ValidateSignature(handler.authToken, handler.signedURL(ctx.Request), params, ctx.GetHeader("X-Twilio-Signature"))
	switch {
	case errors.Is(err, whatsapp.ErrNotConfigured):
		handler.log.Warn("twilio signature validation skipped, auth token not configured")
	case err != nil:
		handler.log.Warn("rejected whatsapp webhook", zap.Error(err))
		ctx.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "Invalid signature"})
		return
	}

	from, body := params.Get("From"), params.Get("Body")
	if from == "" || body == "" {
		badRequest(ctx, "Missing required fields")
		return
	}

	result, err := handler.conciergeService.HandleInbound(ctx.Request.Context(), from, body)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"messageSid": result.MessageSID,
		"intent":     result.Intent,
		"action":     result.Action,
	})
}

// AdminSend delivers a free-form message from staff.
func (handler *whatsAppHandler) AdminSend(ctx *gin.Context) {
	var request AdminWhatsAppRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		badRequest(ctx, fmt.Sprintf("invalid message data: %v", err))
		return
	}
	if err := request.Validate(); err != nil {
		badRequest(ctx, "phone and message are required")
		return
	}

	sid, err := handler.jobs.SendAdminMessage(ctx.Request.Context(), request.Phone, request.Message)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "messageSid": sid})
}
