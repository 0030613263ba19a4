package agents

import (
	"fmt"
	"slices"
	"strings"

	"github.com/linapoint/resortagents/internal/domain"
)

// Tour is a bookable excursion from the partner catalogue.
type Tour struct {
	Name        string              `json:"name"`
	Type        domain.TourCategory `json:"type"`
	Price       float64             `json:"price"`
	Description string              `json:"description"`
	Duration    string              `json:"duration"`
	Affiliate   bool                `json:"affiliate"`
	URL         string              `json:"url"`
}

type AffiliateLink struct {
	Provider   string  `json:"provider"`
	URL        string  `json:"url"`
	Commission float64 `json:"commission"`
}

type CuratorPreferences struct {
	Interests     []string
	ActivityLevel domain.ActivityLevel
	Budget        domain.BudgetTier
}

type CuratedExperience struct {
	Tours           []Tour          `json:"tours"`
	TotalPrice      float64         `json:"totalPrice"`
	AffiliateLinks  []AffiliateLink `json:"affiliateLinks"`
	Recommendations []string        `json:"recommendations"`
}

var tourCatalogue = map[domain.TourCategory][]Tour{
	domain.TourFishing: {
		{Name: "Half-Day Saltwater Fishing Adventure", Type: domain.TourFishing, Price: 280,
			Description: "Expert guides, tackle provided, photo opportunities", Duration: "4 hours",
			Affiliate: true, URL: "https://belize-tours.com/fishing?aff=lina-point"},
		{Name: "Full-Day Deep Sea Fishing", Type: domain.TourFishing, Price: 450,
			Description: "Multiple locations, lunch included", Duration: "8 hours",
			Affiliate: true, URL: "https://belize-tours.com/deep-sea?aff=lina-point"},
	},
	domain.TourSnorkeling: {
		{Name: "Coral Garden Snorkeling", Type: domain.TourSnorkeling, Price: 105,
			Description: "Pristine coral reefs, tropical fish, small group", Duration: "3 hours",
			Affiliate: true, URL: "https://belize-tours.com/snorkel?aff=lina-point"},
		{Name: "Lighthouse Reef Atoll", Type: domain.TourSnorkeling, Price: 210,
			Description: "Three distinct reef sites, lunch, drinks included", Duration: "6 hours",
			Affiliate: true, URL: "https://belize-tours.com/lighthouse?aff=lina-point"},
	},
	domain.TourMainland: {
		{Name: "Mayan Ruins Deep Jungle Trek", Type: domain.TourMainland, Price: 185,
			Description: "Caracol or Xunantunich ruins with experienced guides", Duration: "8 hours",
			Affiliate: true, URL: "https://belize-tours.com/mayan?aff=lina-point"},
		{Name: "Belizean Village Cultural Experience", Type: domain.TourMainland, Price: 125,
			Description: "Meet local artisans, traditional cooking, crafts", Duration: "5 hours",
			Affiliate: true, URL: "https://belize-tours.com/cultural?aff=lina-point"},
	},
	domain.TourDining: {
		{Name: "Sunset Beachfront Dinner", Type: domain.TourDining, Price: 95,
			Description: "Fresh seafood, wine pairing, live music", Duration: "3 hours",
			Affiliate: false, URL: "https://belize-restaurants.com/sunset?aff=lina-point"},
		{Name: "Garifuna Culinary Tour", Type: domain.TourDining, Price: 75,
			Description: "Authentic Garifuna cooking class and dinner", Duration: "4 hours",
			Affiliate: true, URL: "https://belize-tours.com/culinary?aff=lina-point"},
	},
}

// Curator assembles a tour package within a budget.
type Curator struct{}

func NewCurator() *Curator { return &Curator{} }

// Curate filters the catalogue by interest and budget tier, then picks a
// snorkeling trip (within 60% of budget), one more tour (within 80%) and a
// dinner (within the full budget).
// Prices are per package, so group size does not enter the selection.
func (c *Curator) Curate(prefs CuratorPreferences, budget float64) CuratedExperience {
	interests := prefs.Interests
	if len(interests) == 0 {
		interests = domain.DefaultInterests
	}

	var options []Tour
	for _, interest := range interests {
		for _, tour := range tourCatalogue[domain.TourCategory(strings.ToLower(interest))] {
			if prefs.Budget.Allows(tour.Price) {
				options = append(options, tour)
			}
		}
	}

	var (
		selected []Tour
		total    float64
	)
	isSelected := func(t Tour) bool {
		return slices.ContainsFunc(selected, func(s Tour) bool { return s.Name == t.Name })
	}
	pick := func(t Tour, limit float64) bool {
		if isSelected(t) || total+t.Price > limit {
			return false
		}
		selected = append(selected, t)
		total += t.Price
		return true
	}

	if i := slices.IndexFunc(options, func(t Tour) bool { return t.Type == domain.TourSnorkeling }); i >= 0 {
		pick(options[i], budget*0.6)
	}
	for _, t := range options {
		if pick(t, budget*0.8) {
			break
		}
	}
	if i := slices.IndexFunc(options, func(t Tour) bool { return t.Type == domain.TourDining && !isSelected(t) }); i >= 0 {
		pick(options[i], budget)
	}

	links := make([]AffiliateLink, 0, len(selected))
	for _, t := range selected {
		if !t.Affiliate {
			continue
		}
		links = append(links, AffiliateLink{
			Provider:   providerName(t.Name),
			URL:        t.URL,
			Commission: domain.Commission(t.Price),
		})
	}

	return CuratedExperience{
		Tours:          selected,
		TotalPrice:     total,
		AffiliateLinks: links,
		Recommendations: []string{
			fmt.Sprintf("Book %d experiences for optimal Belize experience", len(selected)),
			fmt.Sprintf("Total tour cost: $%s", formatAmount(total)),
			"Book in advance for better rates",
			"Best travel period: December to April",
		},
	}
}

func providerName(tourName string) string {
	words := strings.Fields(tourName)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// formatAmount prints whole amounts without decimals.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
