package agents

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/linapoint/resortagents/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// ActivePromptSource returns the currently active prompt for an agent.
// Implementations report a missing prompt with an error; any error falls
// back to the embedded default.
type ActivePromptSource interface {
	GetActive(ctx context.Context, agentName string) (*domain.AgentPrompt, error)
}

var (
	defaultsOnce sync.Once
	defaults     map[string]string
	defaultsErr  error
)

// DefaultPrompts parses the embedded prompt seed file.
func DefaultPrompts() (map[string]string, error) {
	defaultsOnce.Do(func() {
		defaults = map[string]string{}
		if err := yaml.Unmarshal(defaultPromptsYAML, &defaults); err != nil {
			defaultsErr = fmt.Errorf("parsing default prompts: %w", err)
		}
	})
	return defaults, defaultsErr
}

// Prompts resolves system prompts, preferring an active stored version.
type Prompts struct {
	source ActivePromptSource
}

// NewPrompts builds a resolver. A nil source serves only the embedded defaults.
func NewPrompts(source ActivePromptSource) *Prompts {
	return &Prompts{source: source}
}

// System returns the system prompt for agent.
func (p *Prompts) System(ctx context.Context, agent domain.AgentName) string {
	if p != nil && p.source != nil {
		if active, err := p.source.GetActive(ctx, string(agent)); err == nil && strings.TrimSpace(active.PromptText) != "" {
			return active.PromptText
		}
	}
	d, err := DefaultPrompts()
	if err != nil {
		return ""
	}
	return d[string(agent)]
}
