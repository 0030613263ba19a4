package v1

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
)

const maxWebhookBody = 1 << 20

// PaymentHandler defines the payment endpoints
type PaymentHandler interface {
	CreateIntent(ctx *gin.Context)
	Webhook(ctx *gin.Context)
}

type paymentHandler struct {
	paymentService service.PaymentService
	log            logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, log logger.Logger) PaymentHandler {
	return &paymentHandler{paymentService: paymentService, log: log}
}

// CreateIntent handles the POST request that opens a payment with Square,
// falling back to Stripe.
// @Summary Create a payment intent
// @Tags Payments
// @Accept json
// @Produce json
// @Param requestBody body PaymentIntentRequest true "Amount and booking"
// @Success 200 {object} payments.Intent
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /payments/intent [post]
func (handler *paymentHandler) CreateIntent(ctx *gin.Context) {
	var request PaymentIntentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		badRequest(ctx, fmt.Sprintf("invalid payment data: %v", err))
		return
	}
	if request.Amount <= 0 {
		badRequest(ctx, "Invalid amount")
		return
	}
	if err := request.Validate(); err != nil {
		badRequest(ctx, fmt.Sprintf("validation failed: %v", err))
		return
	}

	intent, err := handler.paymentService.CreateIntent(ctx.Request.Context(), service.PaymentIntentRequest{
		Amount:    request.Amount,
		Currency:  request.Currency,
		BookingID: request.BookingID,
		UseStripe: request.UseStripe,
	})
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, intent)
}

// Webhook verifies a Stripe event against the raw body and applies it.
func (handler *paymentHandler) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(ctx, "unreadable body")
		return
	}
	if err := handler.paymentService.HandleWebhook(ctx.Request.Context(), payload, ctx.GetHeader("Stripe-Signature")); err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}
