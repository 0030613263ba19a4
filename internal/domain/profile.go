package domain

import (
	"strings"
	"time"
)

type SpecialEvent struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Profile is a guest or staff account with its personalization preferences.
type Profile struct {
	ID            string
	UserID        string
	FullName      string
	Email         string
	PhoneNumber   string
	Birthday      string
	Anniversary   string
	SpecialEvents []SpecialEvent
	MusicStyle    string
	MayaInterests []string
	Interests     []string
	ActivityLevel string
	OptInMagic    bool
	MagicProfile  string
	IsAdmin       bool
	AccessToken   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName returns the guest's name, or "Guest" when unknown.
func (p *Profile) DisplayName() string {
	if p == nil {
		return "Guest"
	}
	return CoalesceStr(strings.TrimSpace(p.FullName), "Guest")
}

// OccasionsOn lists the yearly occasions (birthday, anniversary) whose
// month and day fall on day in UTC.
func (p *Profile) OccasionsOn(day time.Time) []Occasion {
	day = day.UTC()
	var out []Occasion
	if sameMonthDay(p.Birthday, day) {
		out = append(out, OccasionBirthday)
	}
	if sameMonthDay(p.Anniversary, day) {
		out = append(out, OccasionAnniversary)
	}
	return out
}

func sameMonthDay(date string, day time.Time) bool {
	t, ok := ParseEventDate(date)
	if !ok {
		return false
	}
	return t.Month() == day.Month() && t.Day() == day.Day()
}

// ParseEventDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
