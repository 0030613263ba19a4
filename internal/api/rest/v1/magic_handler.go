package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
)

// MagicHandler defines the magic content and profile endpoints
type MagicHandler interface {
	Generate(ctx *gin.Context)
	List(ctx *gin.Context)
	AnalyzeProfile(ctx *gin.Context)
}

type magicHandler struct {
	magicService service.MagicService
	eventService service.EventService
	authService  service.AuthService
	log          logger.Logger
}

func NewMagicHandler(magicService service.MagicService, eventService service.EventService, authService service.AuthService, log logger.Logger) MagicHandler {
	return &magicHandler{
		magicService: magicService,
		eventService: eventService,
		authService:  authService,
		log:          log,
	}
}

// Generate handles the POST request that renders a song and a video for one
// of the guest's reservations.
// @Summary Generate magic content
// @Tags Magic
// @Accept json
// @Produce json
// @Param requestBody body service.MagicRequest true "Occasion details"
// @Success 200 {object} MagicGenerateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /magic/generate [post]
func (handler *magicHandler) Generate(ctx *gin.Context) {
	var request service.MagicRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		badRequest(ctx, fmt.Sprintf("invalid magic request: %v", err))
		return
	}

	items, err := handler.magicService.GenerateForReservation(ctx.Request.Context(), profileFrom(ctx).UserID, request)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	if items == nil {
		items = []service.MagicItem{}
	}
	ctx.JSON(http.StatusOK, MagicGenerateResponse{
		Success: true,
		Items:   items,
		Message: "Magic content generation started",
	})
}

// List returns the caller's magic content, newest first.
// @Summary List magic content
// @Tags Magic
// @Produce json
// @Success 200 {object} MagicListResponse
// @Router /magic [get]
func (handler *magicHandler) List(ctx *gin.Context) {
	contents, err := handler.magicService.ListForUser(ctx.Request.Context(), profileFrom(ctx).UserID)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	out := make([]MagicContentResponse, 0, len(contents))
	for _, c := range contents {
		out = append(out, newMagicContentResponse(c))
	}
	ctx.JSON(http.StatusOK, MagicListResponse{Success: true, Contents: out, Count: len(out)})
}

func (handler *magicHandler) AnalyzeProfile(ctx *gin.Context) {
	var request AnalyzeProfileRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			badRequest(ctx, fmt.Sprintf("invalid profile request: %v", err))
			return
		}
	}

	caller := profileFrom(ctx)
	userID := caller.UserID
	if request.UserID != "" && request.UserID != caller.UserID {
		if !handler.authService.IsAdmin(caller) {
			respondError(ctx, handler.log, fmt.Errorf("analyzing another guest: %w", service.ErrForbidden))
			return
		}
		userID = request.UserID
	}

	summary, err := handler.eventService.AnalyzeProfile(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"summary": summary})
}
