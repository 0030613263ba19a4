package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/service"
)

func errorLines(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", StyleCoral.Render(fmt.Sprintf("%d error(s)", len(errs))))
	for _, e := range errs {
		fmt.Fprintf(&b, "  %s %s\n", StyleCoral.Render("✖"), e)
	}
	return b.String()
}

func FormatReminders(r *service.ReminderResult) string {
	var b strings.Builder
	b.WriteString(Header("Check-in reminders") + "\n")
	fmt.Fprintf(&b, "%s %d\n%s %d\n", Dim("Upcoming reminders:"), r.UpcomingReminders, Dim("Welcome messages:  "), r.WelcomeMessages)
	b.WriteString(errorLines(r.Errors))
	return b.String()
}

func FormatProactive(r *service.ProactiveResult) string {
	var b strings.Builder
	b.WriteString(Header("Proactive messages") + "\n")
	if r.Message != "" {
		b.WriteString(Dim(r.Message) + "\n")
	}
	fmt.Fprintf(&b, "%s %s  %s %s\n", Dim("Sent:"), StylePalm.Render(fmt.Sprint(r.Sent)), Dim("Failed:"), StyleCoral.Render(fmt.Sprint(r.Failed)))
	b.WriteString(errorLines(r.Errors))
	return b.String()
}

func FormatDailyMarketing(r *service.DailyMarketingResult) string {
	var b strings.Builder
	b.WriteString(Header("Daily marketing") + "\n")
	fmt.Fprintf(&b, "%s %d of %d campaigns\n\n", Dim("Processed:"), r.Processed, r.Total)

	if len(r.Results) > 0 {
		rows := make([][]string, 0, len(r.Results))
		for _, o := range r.Results {
			status := CampaignStatusPill(domain.CampaignStatus(o.Status))
			if o.Error != "" {
				status = StyleCoral.Render(o.Error)
			}
			rows = append(rows, []string{TruncID(o.CampaignID), status, fmt.Sprint(o.ContentGenerated), fmt.Sprint(o.PostsScheduled)})
		}
		b.WriteString(RenderTable([]string{"CAMPAIGN", "STATUS", "CONTENT", "POSTS"}, rows, 2, 3))
	}
	if s := r.Summary; s != nil {
		fmt.Fprintf(&b, "\n%s %d impressions, %d clicks, %d conversions %s\n",
			Dim("Last 24h:"), s.Impressions, s.Clicks, s.Conversions,
			Dim(fmt.Sprintf("(CTR %s, conversion %s)", s.CTR, s.ConversionRate)))
	}
	return b.String()
}

func FormatReEngagement(r *service.ReEngagementResult) string {
	var b strings.Builder
	b.WriteString(Header("Re-engagement") + "\n")
	fmt.Fprintf(&b, "%s %d\n", Dim("Lapsed guests:"), r.Lapsed)
	fmt.Fprintf(&b, "%s %s\n", Dim("Emails scheduled:"), StylePalm.Render(fmt.Sprint(r.Scheduled)))
	if r.Lapsed > 0 && r.Scheduled == 0 {
		b.WriteString(StyleSand.Render("No email drafted; nothing scheduled.") + "\n")
	}
	return b.String()
}

func FormatEventTriggers(triggers []service.EventTrigger) string {
	var b strings.Builder
	b.WriteString(Header("Event triggers") + "\n")
	if len(triggers) == 0 {
		b.WriteString(Dim("  No guests need outreach today.") + "\n")
		return b.String()
	}
	rows := make([][]string, 0, len(triggers))
	for _, t := range triggers {
		rows = append(rows, []string{TruncID(t.UserID), StyleSand.Render(t.Reason)})
	}
	b.WriteString(RenderTable([]string{"GUEST", "REASON"}, rows))
	return b.String()
}

// FormatCampaigns lists campaigns with their status and creation date.
func FormatCampaigns(campaigns []*domain.Campaign, now time.Time) string {
	if len(campaigns) == 0 {
		return Dim("No campaigns yet.") + "\n"
	}
	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{TruncID(c.ID), c.Name, c.Objective, CampaignStatusPill(c.Status), HumanDate(c.CreatedAt, now)})
	}
	return RenderTable([]string{"ID", "NAME", "OBJECTIVE", "STATUS", "CREATED"}, rows)
}
