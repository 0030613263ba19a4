package llm

import (
	"bytes"
	"testing"

	"github.com/linapoint/resortagents/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(logger.NewWriterLogger("debug", &buf))

	obs.OnCallComplete(LLMCallEvent{Task: TaskConcierge, Provider: ProviderGrok, Model: "grok-beta", LatencyMs: 42, Success: true})
	obs.OnCallComplete(LLMCallEvent{Task: TaskEvaluate, Provider: ProviderGrok, Success: false, ErrorCode: "TIMEOUT"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"llm_call"`)
	assert.Contains(t, out, `"task":"concierge"`)
	assert.Contains(t, out, `"latency_ms":42`)
	assert.Contains(t, out, `"msg":"llm_call failed"`)
	assert.Contains(t, out, `"error_code":"TIMEOUT"`)
}
