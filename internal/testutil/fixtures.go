package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/linapoint/resortagents/internal/domain"
)

var phoneCounter atomic.Int64

// Profile options
type ProfileOption func(*domain.Profile)

func WithPhone(phone string) ProfileOption {
	return func(p *domain.Profile) {
		p.PhoneNumber = phone
	}
}

func WithOptInMagic(on bool) ProfileOption {
	return func(p *domain.Profile) {
		p.OptInMagic = on
	}
}

func WithAdmin() ProfileOption {
	return func(p *domain.Profile) {
		p.IsAdmin = true
	}
}

func WithAccessToken(token string) ProfileOption {
	return func(p *domain.Profile) {
		p.AccessToken = token
	}
}

func WithBirthday(date string) ProfileOption {
	return func(p *domain.Profile) {
		p.Birthday = date
	}
}

func WithAnniversary(date string) ProfileOption {
	return func(p *domain.Profile) {
		p.Anniversary = date
	}
}

func WithMayaInterests(interests ...string) ProfileOption {
	return func(p *domain.Profile) {
		p.MayaInterests = interests
	}
}

func WithInterests(interests ...string) ProfileOption {
	return func(p *domain.Profile) {
		p.Interests = interests
	}
}

func WithEmail(email string) ProfileOption {
	return func(p *domain.Profile) {
		p.Email = email
	}
}

func NewTestProfile(name string, opts ...ProfileOption) *domain.Profile {
	now := time.Now().UTC()
	p := &domain.Profile{
		ID:          uuid.New().String(),
		UserID:      uuid.New().String(),
		FullName:    name,
		Email:       fmt.Sprintf("guest%d@example.com", phoneCounter.Add(1)),
		PhoneNumber: fmt.Sprintf("+5016%06d", phoneCounter.Add(1)),
		MusicStyle:  "tropical",
		OptInMagic:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reservation options
type ReservationOption func(*domain.Reservation)

func WithCheckIn(in time.Time, nights int) ReservationOption {
	return func(r *domain.Reservation) {
		r.CheckIn = in
		r.CheckOut = in.AddDate(0, 0, nights)
	}
}

func WithReservationStatus(s domain.ReservationStatus) ReservationOption {
	return func(r *domain.Reservation) {
		r.Status = s
	}
}

func WithAddOns(addOns ...string) ReservationOption {
	return func(r *domain.Reservation) {
		if addOns == nil {
			addOns = []string{}
		}
		r.AddOns = addOns
	}
}

func NewTestReservation(userID string, opts ...ReservationOption) *domain.Reservation {
	now := time.Now().UTC()
	in := now.AddDate(0, 0, 14)
	r := &domain.Reservation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     "Overwater Suite stay",
		RoomType:  "Overwater Suite",
		CheckIn:   in,
		CheckOut:  in.AddDate(0, 0, 4),
		Status:    domain.ReservationConfirmed,
		AddOns:    []string{"magic"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Campaign options
type CampaignOption func(*domain.Campaign)

func WithCampaignStatus(s domain.CampaignStatus) CampaignOption {
	return func(c *domain.Campaign) {
		c.Status = s
	}
}

func WithCreatedAt(t time.Time) CampaignOption {
	return func(c *domain.Campaign) {
		c.CreatedAt = t
		c.UpdatedAt = t
	}
}

func WithMetrics(m domain.CampaignMetrics) CampaignOption {
	return func(c *domain.Campaign) {
		c.Metrics = &m
	}
}

func NewTestCampaign(name string, opts ...CampaignOption) *domain.Campaign {
	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:             uuid.New().String(),
		Name:           name,
		Objective:      string(domain.ObjectiveDirectBookings),
		TargetAudience: "couples 30-50",
		KeyMessages:    []string{"The magic is YOU"},
		Platforms:      []string{"instagram", "facebook"},
		Status:         domain.CampaignDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithoutAddOns models a reservation that predates add-on tracking.
func WithoutAddOns() ReservationOption {
	return func(r *domain.Reservation) {
		r.AddOns = nil
	}
}
