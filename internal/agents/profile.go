package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/llm"
)

// ProfileAnalyst writes the "Magic is You" guest summary.
type ProfileAnalyst struct {
	client  llm.LLMClient
	prompts *Prompts
}

func NewProfileAnalyst(client llm.LLMClient, prompts *Prompts) *ProfileAnalyst {
	return &ProfileAnalyst{client: client, prompts: prompts}
}

// Summarize returns the summary and whether it came from the model.
func (a *ProfileAnalyst) Summarize(ctx context.Context, p *domain.Profile) (string, bool) {
	if a.client != nil {
		resp, err := a.client.Generate(ctx, llm.GenerateRequest{
			Task:         llm.TaskProfile,
			SystemPrompt: a.prompts.System(ctx, domain.AgentProfileAnalysis),
			UserPrompt:   ProfilePrompt(p),
		})
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return strings.TrimSpace(resp.Text), true
		}
	}
	return DeterministicProfileSummary(p), false
}

func profileFacts(p *domain.Profile) []string {
	var parts []string
	if p.FullName != "" {
		parts = append(parts, "Name: "+p.FullName)
	}
	if p.Birthday != "" {
		parts = append(parts, "Birthday: "+p.Birthday)
	}
	if p.Anniversary != "" {
		parts = append(parts, "Anniversary: "+p.Anniversary)
	}
	if p.MusicStyle != "" {
		parts = append(parts, "Music style: "+p.MusicStyle)
	}
	if len(p.MayaInterests) > 0 {
		parts = append(parts, "Maya interests: "+strings.Join(p.MayaInterests, ", "))
	}
	if len(p.SpecialEvents) > 0 {
		events := make([]string, 0, len(p.SpecialEvents))
		for _, e := range p.SpecialEvents {
			events = append(events, fmt.Sprintf("%s on %s", e.Name, e.Date))
		}
		parts = append(parts, "Special events: "+strings.Join(events, "; "))
	}
	optIn := "no"
	if p.OptInMagic {
		optIn = "yes"
	}
	return append(parts, "Opt-in magic: "+optIn)
}

// ProfilePrompt asks for a short summary plus three monetizable suggestions.
func ProfilePrompt(p *domain.Profile) string {
	return `Create a short "Magic is You" profile summary that reflects the user's preferences and highlights Maya and kundalini themes when relevant. ` +
		`Then suggest personalized experiences that could be monetized (songs, videos, guided tours, dinner packages, or curated events) ` +
		`and explain how commissions or upsells could be offered in a tasteful way. Use the following user data:` +
		"\n\n" + strings.Join(profileFacts(p), "\n") +
		"\n\nOutput as a concise, engaging paragraph (80-180 words) followed by 3 short bullet suggestions (one-line each)."
}

// DeterministicProfileSummary builds a summary without the model.
func DeterministicProfileSummary(p *domain.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, the magic is you.", p.DisplayName())
	if p.MusicStyle != "" {
		fmt.Fprintf(&b, " Your %s rhythm sets the tone for a stay shaped around you.", p.MusicStyle)
	}
	if len(p.MayaInterests) > 0 {
		fmt.Fprintf(&b, " Drawn to %s, you carry the Maya spirit of curiosity.", strings.Join(p.MayaInterests, ", "))
	}
	b.WriteString("\n- A personalized song for your next celebration")
	if p.Anniversary != "" || p.Birthday != "" {
		b.WriteString("\n- A private sunset dinner on your special day")
	} else {
		b.WriteString("\n- A sunset beachfront dinner with live music")
	}
	b.WriteString("\n- A guided Mayan ruins trek with a local expert")
	return b.String()
}
