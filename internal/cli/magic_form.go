package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/linapoint/resortagents/internal/cli/formatter"
	"github.com/linapoint/resortagents/internal/domain"
)

// resortHuhTheme styles huh forms with the formatter palette.
func resortHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorSunset).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorSunset)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorPalm)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFoam)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorSunset)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorSunset)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDriftwood)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDriftwood)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDriftwood)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDriftwood)
	return t
}

// magicAnswers is the raw questionnaire as typed by an operator.
type magicAnswers struct {
	Recipient string
	From      string
	Occasion  string
	Mood      string
	Style     string
	Memories  string
	Message   string
}

func (a magicAnswers) questionnaire() domain.Questionnaire {
	return domain.Questionnaire{
		Occasion:      domain.NormalizeOccasion(domain.CoalesceStr(a.Occasion, string(domain.OccasionCelebration))),
		RecipientName: domain.CoalesceStr(strings.TrimSpace(a.Recipient), "Guest"),
		GiftYouName:   strings.TrimSpace(a.From),
		KeyMemories:   splitList(a.Memories),
		Message:       strings.TrimSpace(a.Message),
		MusicStyle:    domain.NormalizeMusicStyle(domain.CoalesceStr(a.Style, string(domain.StyleTropical))),
		Mood:          domain.NormalizeMood(domain.CoalesceStr(a.Mood, string(domain.MoodRomantic))),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func requiredText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func magicForm(a *magicAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Who is it for?").Placeholder("Ana").Value(&a.Recipient).Validate(requiredText),
			huh.NewInput().Title("From").Placeholder("Marco").Value(&a.From),
			huh.NewSelect[string]().Title("Occasion").Value(&a.Occasion).Options(
				huh.NewOption("Anniversary", string(domain.OccasionAnniversary)),
				huh.NewOption("Birthday", string(domain.OccasionBirthday)),
				huh.NewOption("Proposal", string(domain.OccasionProposal)),
				huh.NewOption("Reunion", string(domain.OccasionReunion)),
				huh.NewOption("Celebration", string(domain.OccasionCelebration)),
			),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Mood").Value(&a.Mood).Options(
				huh.NewOption("Romantic", string(domain.MoodRomantic)),
				huh.NewOption("Energetic", string(domain.MoodEnergetic)),
				huh.NewOption("Peaceful", string(domain.MoodPeaceful)),
				huh.NewOption("Celebratory", string(domain.MoodCelebratory)),
			),
			huh.NewSelect[string]().Title("Music style").Value(&a.Style).Options(
				huh.NewOption("Tropical", string(domain.StyleTropical)),
				huh.NewOption("Reggae", string(domain.StyleReggae)),
				huh.NewOption("Calypso", string(domain.StyleCalypso)),
				huh.NewOption("Ambient", string(domain.StyleAmbient)),
			),
			huh.NewInput().Title("Key memories").Description("Comma separated").Value(&a.Memories),
			huh.NewText().Title("Personal message").Value(&a.Message),
		),
	).WithTheme(resortHuhTheme()).WithShowHelp(false)
}
