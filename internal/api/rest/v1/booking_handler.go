package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
	"go.uber.org/zap"
)

// BookingHandler defines the booking endpoints
type BookingHandler interface {
	BookFlow(ctx *gin.Context)
	BookingStatus(ctx *gin.Context)
}

type bookingHandler struct {
	bookingService service.BookingService
	log            logger.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService service.BookingService, log logger.Logger) BookingHandler {
	return &bookingHandler{bookingService: bookingService, log: log}
}

// denyBookFlow rejects unauthenticated book-flow calls with the empty
// package shape the booking page expects.
func denyBookFlow(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, failedBookFlow(bookFlowAuthError))
}

// BookFlow handles the POST request that scouts room prices and curates a
// tour package for the authenticated guest.
// @Summary Scout prices and curate a package
// @Tags Booking
// @Accept json
// @Produce json
// @Param requestBody body BookFlowRequest true "Stay details"
// @Success 200 {object} BookFlowResponse
// @Failure 400 {object} BookFlowResponse
// @Failure 401 {object} BookFlowResponse
// @Router /book-flow [post]
func (handler *bookingHandler) BookFlow(ctx *gin.Context) {
	var request BookFlowRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, failedBookFlow(fmt.Sprintf("invalid booking data: %v", err)))
		return
	}
	if err := request.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, failedBookFlow(fmt.Sprintf("validation failed: %v", err)))
		return
	}

	profile := profileFrom(ctx)
	result, err := handler.bookingService.BookFlow(ctx.Request.Context(), profile.UserID, request.toService())
	if err != nil {
		status, _ := statusFor(err)
		handler.log.Warn("book-flow failed", zap.Int("status", status), zap.Error(err))
		ctx.JSON(status, failedBookFlow(errorMessage(err)))
		return
	}

	ctx.JSON(http.StatusOK, BookFlowResponse{
		Success:         true,
		BookingID:       result.BookingID,
		BeatPrice:       result.BeatPrice,
		SavingsPercent:  result.SavingsPercent,
		CuratedPackage:  result.CuratedPackage,
		Recommendations: result.Recommendations,
	})
}

// BookingStatus lists the tour bookings recorded against a booking_id.
func (handler *bookingHandler) BookingStatus(ctx *gin.Context) {
	bookingID := ctx.Query("booking_id")
	if bookingID == "" {
		badRequest(ctx, "booking_id required")
		return
	}
	tours, err := handler.bookingService.DebugTourBookings(ctx.Request.Context(), bookingID)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	rows := make([]TourBookingResponse, 0, len(tours))
	for _, t := range tours {
		rows = append(rows, newTourBookingResponse(t))
	}
	ctx.JSON(http.StatusOK, gin.H{"rows": rows})
}
