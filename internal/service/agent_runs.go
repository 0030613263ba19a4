package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/repository"
	"go.uber.org/zap"
)

// runRecorder writes agent_runs audit rows. Recording failures are logged
// and never fail the use case.
type runRecorder struct {
	runs repository.AgentRunRepo
	log  logger.Logger
	now  func() time.Time
}

func newRunRecorder(runs repository.AgentRunRepo, log logger.Logger) *runRecorder {
	if log == nil {
		log = logger.NewNop()
	}
	return &runRecorder{runs: runs, log: log, now: time.Now}
}

func (r *runRecorder) start(ctx context.Context, agent domain.AgentName, userID, requestID string, input any) *domain.AgentRun {
	if r == nil || r.runs == nil {
		return nil
	}
	run := &domain.AgentRun{
		UserID:    userID,
		AgentName: agent,
		RequestID: requestID,
		Status:    domain.RunStarted,
		Input:     marshalRaw(input),
		StartedAt: r.now().UTC(),
	}
	if err := r.runs.Create(ctx, run); err != nil {
		r.log.Warn("failed to create agent run", zap.String("agent", string(agent)), zap.Error(err))
		return nil
	}
	return run
}

func (r *runRecorder) finish(ctx context.Context, run *domain.AgentRun, output any, runErr error) {
	if r == nil || run == nil {
		return
	}
	finished := r.now().UTC()
	run.FinishedAt = &finished
	run.DurationMs = finished.Sub(run.StartedAt).Milliseconds()
	if runErr != nil {
		run.Status = domain.RunFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = domain.RunCompleted
		run.Output = marshalRaw(output)
	}
	if err := r.runs.Finish(ctx, run); err != nil {
		r.log.Warn("failed to finalize agent run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func marshalRaw(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
