package domain

import (
	"slices"
	"time"
)

// Reservation is a room stay.
type Reservation struct {
	ID        string
	UserID    string
	Title     string
	RoomType  string
	CheckIn   time.Time
	CheckOut  time.Time
	Status    ReservationStatus
	AddOns    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllowsMagic reports whether magic content may be generated for the stay.
// Reservations without any add-ons recorded are treated as eligible.
func (r *Reservation) AllowsMagic() bool {
	if r.AddOns == nil {
		return true
	}
	return slices.Contains(r.AddOns, "magic")
}

// DaysUntilCheckIn rounds up partial days, matching how guests count them.
func (r *Reservation) DaysUntilCheckIn(now time.Time) int {
	d := r.CheckIn.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// PriceQuote is the persisted outcome of a price scout run.
type PriceQuote struct {
	ID           string
	UserID       string
	RoomType     string
	CheckInDate  string
	CheckOutDate string
	Location     string
	OTAName      string
	Price        float64
	BeatPrice    float64
	URL          string
	CreatedAt    time.Time
}

// TourBooking is a curated tour attached to a guest, earning an affiliate commission.
type TourBooking struct {
	ID               string
	UserID           string
	BookingID        string
	TourName         string
	TourType         TourCategory
	Price            float64
	AffiliateLink    string
	CommissionEarned float64
	Status           TourBookingStatus
	PaymentIntent    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CommissionRate is the affiliate share earned on every tour.
const CommissionRate = 0.10

// Commission returns the affiliate commission for a tour price.
func Commission(price float64) float64 {
	return Round2(price * CommissionRate)
}
