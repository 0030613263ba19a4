package llm

import (
	"github.com/linapoint/resortagents/internal/logger"
	"go.uber.org/zap"
)

// LLMCallEvent describes one Generate call, including its retries.
type LLMCallEvent struct {
	Task      TaskType
	Provider  string
	Model     string
	Attempts  int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(LLMCallEvent)

func (f ObserverFunc) OnCallComplete(e LLMCallEvent) { f(e) }

type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

// LogObserver logs successful calls at debug and failures at warn.
type LogObserver struct {
	log logger.Logger
}

func NewLogObserver(log logger.Logger) *LogObserver {
	return &LogObserver{log: log.With(zap.String("component", "llm"))}
}

func (o *LogObserver) OnCallComplete(e LLMCallEvent) {
	fields := []zap.Field{
		zap.String("task", string(e.Task)),
		zap.String("provider", e.Provider),
		zap.String("model", e.Model),
		zap.Int64("latency_ms", e.LatencyMs),
	}
	if e.Attempts > 1 {
		fields = append(fields, zap.Int("attempts", e.Attempts))
	}
	if e.Success {
		o.log.Debug("llm_call", fields...)
		return
	}
	o.log.Warn("llm_call failed", append(fields, zap.String("error_code", e.ErrorCode))...)
}
