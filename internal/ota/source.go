// Package ota scans online travel agency price sources for the resort's rooms.
package ota

import (
	"context"
	"math/rand/v2"

	"github.com/linapoint/resortagents/internal/domain"
)

// Query identifies the stay being priced.
type Query struct {
	RoomType string
	CheckIn  string
	CheckOut string
	Location string
}

func (q Query) key() string {
	return q.RoomType + "|" + q.CheckIn + "|" + q.CheckOut + "|" + q.Location
}

// Quote is one OTA's price for a Query.
type Quote struct {
	OTA   string  `json:"ota"`
	Price float64 `json:"price"`
	URL   string  `json:"url"`
}

// Source quotes a price. variance is the relative jitter band; zero means
// the source returns its list price.
type Source interface {
	Name() string
	Quote(ctx context.Context, q Query, variance float64) (Quote, error)
}

// MockSource returns a fixed list price with optional jitter.
type MockSource struct {
	name  string
	price float64
	url   string
	// Rand yields values in [0,1). Defaults to math/rand/v2.
	Rand func() float64
}

func NewMockSource(name string, price float64, url string) *MockSource {
	return &MockSource{name: name, price: price, url: url, Rand: rand.Float64}
}

func (m *MockSource) Name() string { return m.name }

func (m *MockSource) Quote(ctx context.Context, _ Query, variance float64) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	price := m.price
	if variance > 0 {
		price = price * (1 + (m.Rand()-0.5)*variance)
	}
	return Quote{OTA: m.name, Price: domain.Round2(price), URL: m.url}, nil
}

// Catalogue returns the known OTA listings for the resort.
func Catalogue() []Source {
	return []Source{
		NewMockSource("expedia", 450, "https://www.expedia.com/hotels/lina-point"),
		NewMockSource("booking", 435, "https://www.booking.com/hotel/bz/lina-point"),
		NewMockSource("agoda", 455, "https://www.agoda.com/hotels/lina-point"),
		NewMockSource("hotels", 440, "https://www.hotels.com/hotel/bz/lina-point"),
		NewMockSource("tripadvisor", 460, "https://www.tripadvisor.com/Hotel_Review-g154381-d123456-Reviews-Lina_Point.html"),
		NewMockSource("airbnb", 425, "https://www.airbnb.com/rooms/lina-point"),
		NewMockSource("booking_last", 432, "https://www.booking.com/deals/lina-point"),
	}
}

// affiliateCommission is the percentage paid by OTAs with an affiliate programme.
var affiliateCommission = map[string]float64{
	"expedia":     5,
	"booking":     5,
	"agoda":       5,
	"hotels":      3,
	"tripadvisor": 4,
}

// AffiliateCommission returns the commission percent for an OTA, or 0.
func AffiliateCommission(ota string) float64 {
	return affiliateCommission[ota]
}
