package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/repository"
	"go.uber.org/zap"
)

const workflowName = "booking-curate-content-email"

// EventTrigger marks a guest whose birthday or anniversary falls today.
type EventTrigger struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// WorkflowRequest is the raw body posted by the workflow engine.
type WorkflowRequest struct {
	Payload map[string]any
}

func (r WorkflowRequest) runSelfImprove() bool {
	v, _ := r.Payload["runSelfImprove"].(bool)
	return v
}

type WorkflowStep struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type WorkflowResult struct {
	OK       bool           `json:"ok"`
	Workflow string         `json:"workflow"`
	Payload  map[string]any `json:"payload"`
	Steps    []WorkflowStep `json:"steps"`
	Message  string         `json:"message"`
}

// ProfileSummarizer writes a guest profile summary, reporting whether the
// model produced it.
type ProfileSummarizer interface {
	Summarize(ctx context.Context, p *domain.Profile) (string, bool)
}

type eventService struct {
	profiles    repository.ProfileRepo
	analyst     ProfileSummarizer
	selfImprove SelfImproveService
	recorder    *runRecorder
	log         logger.Logger
	observer    UseCaseObserver
}

func NewEventService(
	profiles repository.ProfileRepo,
	analyst ProfileSummarizer,
	selfImprove SelfImproveService,
	runs repository.AgentRunRepo,
	log logger.Logger,
	observers ...UseCaseObserver,
) EventService {
	if log == nil {
		log = logger.NewNop()
	}
	return &eventService{
		profiles:    profiles,
		analyst:     analyst,
		selfImprove: selfImprove,
		recorder:    newRunRecorder(runs, log),
		log:         log,
		observer:    combineObservers(observers),
	}
}

func (s *eventService) CheckEvents(ctx context.Context, now time.Time) (triggers []EventTrigger, err error) {
	defer observe(ctx, s.observer, "check-events", time.Now(), &err, nil)

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	triggers = []EventTrigger{}
	for _, p := range profiles {
		for _, occasion := range p.OccasionsOn(now) {
			s.log.Debug("occasion today", zap.String("user_id", p.UserID), zap.String("reason", string(occasion)))
			triggers = append(triggers, EventTrigger{UserID: p.UserID, Reason: string(occasion)})
		}
	}
	return triggers, nil
}

// AnalyzeProfile summarizes a guest and stores the summary when they have
// opted in to magic content.
func (s *eventService) AnalyzeProfile(ctx context.Context, userID string) (summary string, err error) {
	defer observe(ctx, s.observer, "analyze-profile", time.Now(), &err, map[string]any{"user_id": userID})

	if userID == "" {
		return "", invalidf("userId is required")
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return "", lookupErr(err, "profile")
	}

	run := s.recorder.start(ctx, domain.AgentProfileAnalysis, userID, "", map[string]string{"user_id": userID})
	summary, fromModel := s.analyst.Summarize(ctx, p)
	s.recorder.finish(ctx, run, map[string]any{"summary": summary, "model": fromModel}, nil)

	if p.OptInMagic {
		if err := s.profiles.UpdateMagicProfile(ctx, userID, summary); err != nil {
			return "", fmt.Errorf("saving magic profile: %w", err)
		}
	}
	return summary, nil
}

// TriggerWorkflow acknowledges a workflow run and optionally runs
// self-improvement on the digests it carries.
func (s *eventService) TriggerWorkflow(ctx context.Context, req WorkflowRequest) (result *WorkflowResult, err error) {
	defer observe(ctx, s.observer, "trigger-workflow", time.Now(), &err, nil)

	payload := req.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	steps := []WorkflowStep{
		{Name: "booking", Status: "queued"},
		{Name: "curate", Status: "queued"},
		{Name: "generate_content", Status: "queued"},
		{Name: "email_and_social", Status: "queued"},
	}

	if req.runSelfImprove() {
		if _, err := s.selfImprove.RunWithInputs(ctx, agents.SelfImproveInputs{
			LogsSummary:       "Triggered via n8n stub",
			BookingSummary:    jsonOrEmpty(payload["booking"]),
			PrefsSummary:      jsonOrEmpty(payload["prefs"]),
			ConversionSummary: jsonOrEmpty(payload["conversions"]),
		}); err != nil {
			return nil, fmt.Errorf("self-improvement: %w", err)
		}
		steps = append(steps, WorkflowStep{Name: "self_improve", Status: "completed"})
	}

	return &WorkflowResult{
		OK:       true,
		Workflow: workflowName,
		Payload:  payload,
		Steps:    steps,
		Message:  "n8n workflow stub invoked",
	}, nil
}

func jsonOrEmpty(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
