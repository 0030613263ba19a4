package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type Occasion string

const (
	OccasionBirthday    Occasion = "birthday"
	OccasionAnniversary Occasion = "anniversary"
	OccasionReunion     Occasion = "reunion"
	OccasionProposal    Occasion = "proposal"
	OccasionCelebration Occasion = "celebration"
)

// NormalizeOccasion maps free text onto a known occasion, defaulting to birthday.
func NormalizeOccasion(s string) Occasion {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "anniversary"):
		return OccasionAnniversary
	case strings.Contains(lower, "proposal"):
		return OccasionProposal
	case strings.Contains(lower, "reunion"):
		return OccasionReunion
	case strings.Contains(lower, "celebration"):
		return OccasionCelebration
	default:
		return OccasionBirthday
	}
}

type Mood string

const (
	MoodRomantic    Mood = "romantic"
	MoodEnergetic   Mood = "energetic"
	MoodPeaceful    Mood = "peaceful"
	MoodCelebratory Mood = "celebratory"
)

func NormalizeMood(s string) Mood {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "energetic"):
		return MoodEnergetic
	case strings.Contains(lower, "peace"):
		return MoodPeaceful
	case strings.Contains(lower, "celebrat"):
		return MoodCelebratory
	default:
		return MoodRomantic
	}
}

type MusicStyle string

const (
	StyleTropical MusicStyle = "tropical"
	StyleEDM      MusicStyle = "edm"
	StyleReggae   MusicStyle = "reggae"
	StyleCalypso  MusicStyle = "calypso"
	StyleAmbient  MusicStyle = "ambient"
)

func NormalizeMusicStyle(s string) MusicStyle {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "edm"):
		return StyleEDM
	case strings.Contains(lower, "reggae"):
		return StyleReggae
	case strings.Contains(lower, "calypso"):
		return StyleCalypso
	case strings.Contains(lower, "tropical"):
		return StyleTropical
	default:
		return StyleAmbient
	}
}

// Questionnaire is the normalized input for one magic content generation.
type Questionnaire struct {
	Occasion             Occasion
	RecipientName        string
	GiftYouName          string
	KeyMemories          []string
	FavoriteColors       []string
	FavoriteSongsArtists []string
	Message              string
	MusicStyle           MusicStyle
	Mood                 Mood
}

// QuestionnaireRow is a guest-submitted questionnaire as stored. List fields
// are free text.
type QuestionnaireRow struct {
	ID                   string
	UserID               string
	ReservationID        string
	Occasion             string
	RecipientName        string
	GiftYouName          string
	KeyMemories          string
	FavoriteColors       string
	FavoriteSongsArtists string
	Message              string
	MusicStyle           string
	Mood                 string
	CreatedAt            time.Time
}

// Normalize converts a stored row into a Questionnaire.
func (r *QuestionnaireRow) Normalize() Questionnaire {
	return Questionnaire{
		Occasion:             NormalizeOccasion(CoalesceStr(r.Occasion, string(OccasionCelebration))),
		RecipientName:        CoalesceStr(r.RecipientName, "Guest"),
		GiftYouName:          CoalesceStr(r.GiftYouName, "Lina Point Resort"),
		KeyMemories:          ParseList(r.KeyMemories),
		FavoriteColors:       ParseList(r.FavoriteColors),
		FavoriteSongsArtists: ParseList(r.FavoriteSongsArtists),
		Message:              r.Message,
		MusicStyle:           NormalizeMusicStyle(r.MusicStyle),
		Mood:                 NormalizeMood(r.Mood),
	}
}

// ParseList reads a JSON array, a comma separated list or a single value.
func ParseList(s string) []string {
	if s == "" {
		return nil
	}
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		out := make([]string, 0, len(arr))
		for _, v := range arr {
			switch x := v.(type) {
			case string:
				out = append(out, x)
			default:
				b, _ := json.Marshal(x)
				out = append(out, string(b))
			}
		}
		return out
	}
	if strings.Contains(s, ",") {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return []string{s}
}

// MagicContent is one generated song or video.
type MagicContent struct {
	ID                 string
	UserID             string
	ReservationID      string
	ContentType        ContentType
	Title              string
	Description        string
	Genre              string
	Prompt             string
	MediaURL           string
	DurationSeconds    int
	FileSizeBytes      int64
	Status             ContentStatus
	ErrorMessage       string
	GenerationProvider string
	ProcessingTimeMs   int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
