package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
)

// FormatGeneratedContent renders a generated magic item with its lyrics.
func FormatGeneratedContent(c *agents.GeneratedContent, minScore float64) string {
	var lines []string
	lines = append(lines, Bold(c.Title))
	if c.Description != "" {
		lines = append(lines, Dim(c.Description))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("%s %s", Dim("Type:    "), c.Type))
	lines = append(lines, fmt.Sprintf("%s %s", Dim("Media:   "), StyleLagoon.Render(c.MediaURL)))
	lines = append(lines, fmt.Sprintf("%s %s", Dim("Length:  "), (time.Duration(c.DurationSeconds)*time.Second).String()))
	lines = append(lines, fmt.Sprintf("%s %s %s", Dim("Score:   "),
		ScoreColor(c.Score, minScore).Render(fmt.Sprintf("%.2f", c.Score)),
		Dim(fmt.Sprintf("after %d iteration(s)", c.Iterations))))
	if c.Provider != "" {
		lines = append(lines, fmt.Sprintf("%s %s", Dim("Provider:"), c.Provider))
	}

	var b strings.Builder
	b.WriteString(RenderBox("Magic moment", strings.Join(lines, "\n")))
	b.WriteString("\n")
	if lyrics := strings.TrimSpace(c.Lyrics); lyrics != "" {
		b.WriteString("\n" + Header("Lyrics") + "\n")
		b.WriteString(lyrics + "\n")
	}
	return b.String()
}
