package formatter

import (
	"fmt"
	"strings"

	"github.com/linapoint/resortagents/internal/agents"
)

func FormatSelfImprove(r *agents.SelfImproveResult, minScore float64) string {
	var b strings.Builder
	b.WriteString(Header("Self-improvement") + "\n")
	fmt.Fprintf(&b, "%s %s  %s %d\n\n", Dim("Score:"),
		ScoreColor(r.Score, minScore).Render(fmt.Sprintf("%.2f", r.Score)), Dim("Iterations:"), r.Iterations)

	b.WriteString(Bold("Insights") + "\n")
	b.WriteString(Bullets(r.Insights, "none") + "\n\n")
	b.WriteString(Bold("Booking patterns") + "\n")
	b.WriteString(Bullets(r.MLInsights, "none") + "\n")

	if len(r.PromptUpdates) > 0 {
		b.WriteString("\n" + Bold("Prompt updates") + "\n")
		for _, u := range r.PromptUpdates {
			fmt.Fprintf(&b, "  %s %s\n", StyleOrchid.Render(u.AgentName), Dim(truncate(u.PromptText, 72)))
		}
	}
	if r.CrewSummary != "" {
		b.WriteString("\n" + RenderBox("Crew summary", r.CrewSummary) + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
