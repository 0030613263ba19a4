package v1

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
	"go.uber.org/zap"
)

const maxWorkflowBody = 1 << 20

// JobsHandler defines the scheduled and automation endpoints
type JobsHandler interface {
	CheckInReminders(ctx *gin.Context)
	ProactiveMessages(ctx *gin.Context)
	DailyMarketing(ctx *gin.Context)
	ReEngagement(ctx *gin.Context)
	CheckEvents(ctx *gin.Context)
	TriggerWorkflow(ctx *gin.Context)
	SelfImprove(ctx *gin.Context)
}

type jobsHandler struct {
	whatsAppJobs       service.WhatsAppJobs
	marketingService   service.MarketingService
	eventService       service.EventService
	selfImproveService service.SelfImproveService
	log                logger.Logger
	now                func() time.Time
}

func NewJobsHandler(
	whatsAppJobs service.WhatsAppJobs,
	marketingService service.MarketingService,
	eventService service.EventService,
	selfImproveService service.SelfImproveService,
	log logger.Logger,
) JobsHandler {
	return &jobsHandler{
		whatsAppJobs:       whatsAppJobs,
		marketingService:   marketingService,
		eventService:       eventService,
		selfImproveService: selfImproveService,
		log:                log,
		now:                time.Now,
	}
}

func (handler *jobsHandler) CheckInReminders(ctx *gin.Context) {
	now := handler.now()
	results, err := handler.whatsAppJobs.SendCheckInReminders(ctx.Request.Context(), now)
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"results":   results,
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

func (handler *jobsHandler) ProactiveMessages(ctx *gin.Context) {
	result, err := handler.whatsAppJobs.SendProactiveMessages(ctx.Request.Context(), handler.now())
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		*service.ProactiveResult
	}{true, result})
}

func (handler *jobsHandler) DailyMarketing(ctx *gin.Context) {
	result, err := handler.marketingService.RunDaily(ctx.Request.Context(), handler.now())
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		*service.DailyMarketingResult
	}{true, result})
}

// ReEngagement schedules win-back emails for guests who have not stayed
// in a while.
func (handler *jobsHandler) ReEngagement(ctx *gin.Context) {
	result, err := handler.marketingService.ReEngageLapsedGuests(ctx.Request.Context(), handler.now())
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		*service.ReEngagementResult
	}{true, result})
}

// CheckEvents lists guests with a birthday or anniversary today.
func (handler *jobsHandler) CheckEvents(ctx *gin.Context) {
	triggers, err := handler.eventService.CheckEvents(ctx.Request.Context(), handler.now())
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"triggers": triggers})
}

// TriggerWorkflow accepts any JSON object. A body that does not parse is
// treated as empty.
func (handler *jobsHandler) TriggerWorkflow(ctx *gin.Context) {
	payload := map[string]any{}
	raw, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWorkflowBody))
	if err == nil && len(raw) > 0 {
		if jerr := json.Unmarshal(raw, &payload); jerr != nil {
			handler.log.Debug("ignoring unparsable workflow body", zap.Error(jerr))
			payload = map[string]any{}
		}
	}

	result, err := handler.eventService.TriggerWorkflow(ctx.Request.Context(), service.WorkflowRequest{Payload: payload})
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (handler *jobsHandler) SelfImprove(ctx *gin.Context) {
	result, err := handler.selfImproveService.RunAndPersist(ctx.Request.Context())
	if err != nil {
		respondError(ctx, handler.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
