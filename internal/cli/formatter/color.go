package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linapoint/resortagents/internal/domain"
)

// Caribbean palette: lagoon water, sand and coral.
var (
	ColorPalm      = lipgloss.Color("#3fb68b")
	ColorSand      = lipgloss.Color("#f2d492")
	ColorCoral     = lipgloss.Color("#ff6f59")
	ColorLagoon    = lipgloss.Color("#2ec4d6")
	ColorOrchid    = lipgloss.Color("#c58bd8")
	ColorDriftwood = lipgloss.Color("#8a8d91")
	ColorFoam      = lipgloss.Color("#f4f1ea")
	ColorSunset    = lipgloss.Color("#ff9f43")
)

var (
	StylePalm      = lipgloss.NewStyle().Foreground(ColorPalm)
	StyleSand      = lipgloss.NewStyle().Foreground(ColorSand)
	StyleCoral     = lipgloss.NewStyle().Foreground(ColorCoral)
	StyleLagoon    = lipgloss.NewStyle().Foreground(ColorLagoon)
	StyleOrchid    = lipgloss.NewStyle().Foreground(ColorOrchid)
	StyleDriftwood = lipgloss.NewStyle().Foreground(ColorDriftwood)
	StyleFoam      = lipgloss.NewStyle().Foreground(ColorFoam)
	StyleSunset    = lipgloss.NewStyle().Foreground(ColorSunset).Bold(true)
	StyleBold      = lipgloss.NewStyle().Foreground(ColorFoam).Bold(true)
)

// TierBadge colors a budget tier label.
func TierBadge(tier domain.BudgetTier) string {
	switch tier {
	case domain.TierLuxury:
		return StyleOrchid.Render("◆ luxury")
	case domain.TierMid:
		return StyleLagoon.Render("● mid")
	case domain.TierBudget:
		return StylePalm.Render("○ budget")
	default:
		return StyleDriftwood.Render(string(tier))
	}
}

// CampaignStatusPill returns a colored indicator for a campaign status.
func CampaignStatusPill(status domain.CampaignStatus) string {
	switch status {
	case domain.CampaignRunning:
		return StyleSand.Render("● Running")
	case domain.CampaignCompleted:
		return StylePalm.Render("✔ Completed")
	case domain.CampaignFailed:
		return StyleCoral.Render("✖ Failed")
	case domain.CampaignDraft:
		return StyleLagoon.Render("○ Draft")
	default:
		return StyleDriftwood.Render(string(status))
	}
}

// ScoreColor is palm green at or above floor, sand within 0.2 below it, and
// coral otherwise.
func ScoreColor(score, floor float64) lipgloss.Style {
	switch {
	case score >= floor:
		return StylePalm
	case score >= floor-0.2:
		return StyleSand
	default:
		return StyleCoral
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleSunset.Render(upper), StyleDriftwood.Render(line))
}

func Dim(text string) string {
	return StyleDriftwood.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
