package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
)

// MarketingHandler defines the campaign endpoints
type MarketingHandler interface {
	RunCampaign(ctx *gin.Context)
	ListCampaigns(ctx *gin.Context)
	CreateCampaign(ctx *gin.Context)
}

type marketingHandler struct {
	marketingService service.MarketingService
	log              logger.Logger
}

func NewMarketingHandler(marketingService service.MarketingService, log logger.Logger) MarketingHandler {
	return &marketingHandler{marketingService: marketingService, log: log}
}

func bindCampaign(ctx *gin.Context) (CampaignRequest, bool) {
	var request CampaignRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		badRequest(ctx, fmt.Sprintf("invalid campaign data: %v", err))
		return request, false
	}
	if err := request.Validate(); err != nil {
		badRequest(ctx, fmt.Sprintf("validation failed: %v", err))
		return request, false
	}
	return request, true
}

// RunCampaign handles the POST request that runs the marketing crew end to end
// @Summary Run a marketing campaign
// @Tags Marketing
// @Accept json
// @Produce json
// @Param requestBody body CampaignRequest true "Campaign brief"
// @Success 200 {object} RunCampaignResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /marketing/run-campaign [post]
func (handler *marketingHandler) RunCampaign(ctx *gin.Context) {
	request, ok := bindCampaign(ctx)
	if !ok {
		return
	}

	result, err := handler.marketingService.RunCampaign(ctx.Request.Context(), profileFrom(ctx).UserID, request.toService())
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, RunCampaignResponse{
		Success:    true,
		CampaignID: result.CampaignID,
		Message:    "Marketing campaign executed successfully",
		Results:    result,
	})
}

// ListCampaigns returns campaigns newest first, optionally filtered by status.
// @Param limit query int false "Maximum number of campaigns"
// @Param status query string false "Campaign status"
// @Router /marketing/campaigns [get]
func (handler *marketingHandler) ListCampaigns(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(ctx, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	campaigns, err := handler.marketingService.ListCampaigns(ctx.Request.Context(), domain.CampaignStatus(ctx.Query("status")), limit)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	out := make([]CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, newCampaignResponse(c))
	}
	ctx.JSON(http.StatusOK, CampaignListResponse{Success: true, Total: len(out), Campaigns: out})
}

// CreateCampaign stores a draft for the daily marketing run to pick up.
func (handler *marketingHandler) CreateCampaign(ctx *gin.Context) {
	request, ok := bindCampaign(ctx)
	if !ok {
		return
	}

	campaign, err := handler.marketingService.CreateCampaign(ctx.Request.Context(), profileFrom(ctx).UserID, request.toService())
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "campaign": newCampaignResponse(campaign)})
}
