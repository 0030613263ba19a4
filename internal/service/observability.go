package service

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/linapoint/resortagents/internal/logger"
	"go.uber.org/zap"
)

// UseCaseEvent is emitted once per service call, after it returns.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Fields    map[string]any
}

func (e UseCaseEvent) Success() bool { return e.Err == nil }

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// fanout forwards each event to every observer it holds.
type fanout []UseCaseObserver

func (f fanout) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, obs := range f {
		obs.ObserveUseCase(ctx, event)
	}
}

// combineObservers drops nils and collapses the rest into one observer.
func combineObservers(observers []UseCaseObserver) UseCaseObserver {
	var live fanout
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	default:
		return live
	}
}

type logUseCaseObserver struct {
	log  logger.Logger
	slow time.Duration
}

// NewLogUseCaseObserver logs every use case at info, failures at error, and
// successful calls slower than slow at warn. A zero slow disables the warning.
func NewLogUseCaseObserver(log logger.Logger, slow time.Duration) UseCaseObserver {
	if log == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{log: log, slow: slow}
}

func (o *logUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	fields := []zap.Field{
		zap.String("use_case", event.Name),
		zap.Int64("duration_ms", event.Duration.Milliseconds()),
		zap.Bool("success", event.Success()),
	}
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		fields = append(fields, zap.Any(k, event.Fields[k]))
	}

	switch {
	case event.Err != nil:
		o.log.Error("service_use_case", append(fields, zap.Error(event.Err))...)
	case o.slow > 0 && event.Duration >= o.slow:
		o.log.Warn("service_use_case slow", fields...)
	default:
		o.log.Info("service_use_case", fields...)
	}
}

// observe is deferred at the top of each use case with a pointer to its
// named error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, err *error, fields map[string]any) {
	event := UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Fields:    fields,
	}
	if err != nil {
		event.Err = *err
	}
	obs.ObserveUseCase(ctx, event)
}
