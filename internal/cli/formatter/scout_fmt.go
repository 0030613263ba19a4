package formatter

import (
	"fmt"
	"strings"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
)

// FormatPriceScout renders every OTA quote, cheapest first, with the direct
// rate that beats the best of them.
func FormatPriceScout(res *agents.PriceScoutResult) string {
	var b strings.Builder
	b.WriteString(Header("OTA prices"))
	b.WriteString("\n")

	rows := make([][]string, 0, len(res.AllPrices))
	for _, name := range SortedKeys(res.AllPrices) {
		price := Money(res.AllPrices[name])
		if name == res.BestOTA {
			name = StylePalm.Render(name + " ★")
		}
		rows = append(rows, []string{name, price})
	}
	b.WriteString(RenderTable([]string{"OTA", "PRICE"}, rows, 1))
	b.WriteString("\n")

	summary := fmt.Sprintf("%s %s\n%s %s  %s\n%s %d",
		Dim("Best OTA:"), fmt.Sprintf("%s at %s", res.BestOTA, Money(res.BestPrice)),
		Dim("Book direct:"), StylePalm.Render(Money(res.BeatPrice)),
		StyleSand.Render(fmt.Sprintf("save %s (%s)", Money(res.Savings), Percent(res.SavingsPercent))),
		Dim("Scans:"), res.Iterations,
	)
	b.WriteString(RenderBox("Lina Point direct", summary))
	b.WriteString("\n")
	return b.String()
}

// FormatCuratedExperience renders a tour package and its affiliate links.
func FormatCuratedExperience(tier domain.BudgetTier, budget float64, res agents.CuratedExperience) string {
	var b strings.Builder
	b.WriteString(Header("Curated experience"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s  %s %s\n\n", Dim("Tier:"), TierBadge(tier), Dim("Budget:"), Money(budget))

	if len(res.Tours) == 0 {
		b.WriteString(Dim("  No tours fit this budget.") + "\n")
	} else {
		rows := make([][]string, 0, len(res.Tours))
		for _, t := range res.Tours {
			rows = append(rows, []string{t.Name, StyleOrchid.Render(string(t.Type)), t.Duration, Money(t.Price)})
		}
		b.WriteString(RenderTable([]string{"TOUR", "TYPE", "DURATION", "PRICE"}, rows, 3))
		fmt.Fprintf(&b, "%s %s\n", Dim("Total:"), Bold(Money(res.TotalPrice)))
	}

	if len(res.AffiliateLinks) > 0 {
		b.WriteString("\n" + Header("Affiliate links") + "\n")
		for _, l := range res.AffiliateLinks {
			fmt.Fprintf(&b, "  %s %s %s\n", l.Provider, Dim(l.URL), StylePalm.Render("+"+Money(l.Commission)))
		}
	}
	if len(res.Recommendations) > 0 {
		b.WriteString("\n" + Header("Recommendations") + "\n")
		b.WriteString(Bullets(res.Recommendations, "") + "\n")
	}
	return b.String()
}
