package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/db"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/repository"
)

const (
	defaultDinnerName  = "Sunset Beachfront Dinner"
	defaultDinnerPrice = 85.0
)

type BookFlowRequest struct {
	RoomType      string   `json:"roomType"`
	CheckInDate   string   `json:"checkInDate"`
	CheckOutDate  string   `json:"checkOutDate"`
	Location      string   `json:"location"`
	GroupSize     int      `json:"groupSize"`
	TourBudget    float64  `json:"tourBudget"`
	Interests     []string `json:"interests"`
	ActivityLevel string   `json:"activityLevel"`
}

type RoomOffer struct {
	Price float64 `json:"price"`
	OTA   string  `json:"ota"`
	URL   string  `json:"url"`
}

type PackageTour struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration"`
}

type DinnerOffer struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type CuratedPackage struct {
	Room           RoomOffer              `json:"room"`
	Tours          []PackageTour          `json:"tours"`
	Dinner         DinnerOffer            `json:"dinner"`
	Total          float64                `json:"total"`
	AffiliateLinks []agents.AffiliateLink `json:"affiliate_links"`
}

type BookFlowResult struct {
	BookingID       string         `json:"booking_id"`
	BeatPrice       float64        `json:"beat_price"`
	SavingsPercent  float64        `json:"savings_percent"`
	CuratedPackage  CuratedPackage `json:"curated_package"`
	Recommendations []string       `json:"recommendations"`
}

// EmptyPackage is the package shape returned alongside errors.
func EmptyPackage() CuratedPackage {
	return CuratedPackage{Tours: []PackageTour{}, AffiliateLinks: []agents.AffiliateLink{}}
}

type bookingService struct {
	scout    *agents.PriceScout
	curator  *agents.Curator
	profiles repository.ProfileRepo
	tours    repository.TourBookingRepo
	uow      db.UnitOfWork
	runs     *runRecorder
	observer UseCaseObserver
}

func NewBookingService(
	scout *agents.PriceScout,
	curator *agents.Curator,
	profiles repository.ProfileRepo,
	tours repository.TourBookingRepo,
	uow db.UnitOfWork,
	runs repository.AgentRunRepo,
	observers ...UseCaseObserver,
) BookingService {
	return &bookingService{
		scout:    scout,
		curator:  curator,
		profiles: profiles,
		tours:    tours,
		uow:      uow,
		runs:     newRunRecorder(runs, nil),
		observer: combineObservers(observers),
	}
}

func (s *bookingService) BookFlow(ctx context.Context, userID string, req BookFlowRequest) (result *BookFlowResult, err error) {
	fields := map[string]any{"user_id": userID, "room_type": req.RoomType}
	defer observe(ctx, s.observer, "book-flow", time.Now(), &err, fields)

	if req.RoomType == "" || req.CheckInDate == "" || req.CheckOutDate == "" {
		return nil, invalidf("roomType, checkInDate and checkOutDate are required")
	}
	if req.TourBudget < 0 {
		return nil, invalidf("tourBudget must not be negative")
	}

	var profile *domain.Profile
	profile, err = s.profiles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	err = nil
	prefs := preferencesFor(req, profile)
	fields["tier"] = string(prefs.Budget)

	scoutRun := s.runs.start(ctx, domain.AgentPriceScout, userID, "", req)
	scouted, scoutErr := s.scout.Run(ctx, req.RoomType, req.CheckInDate, req.CheckOutDate, req.Location)
	s.runs.finish(ctx, scoutRun, scouted, scoutErr)
	if scoutErr != nil {
		return nil, fmt.Errorf("scouting prices: %w", scoutErr)
	}

	curatorRun := s.runs.start(ctx, domain.AgentExperienceCurator, userID, "", prefs)
	curated := s.curator.Curate(prefs, req.TourBudget)
	s.runs.finish(ctx, curatorRun, curated, nil)

	bookingID := uuid.New().String()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLitePriceRepo(tx).Create(ctx, &domain.PriceQuote{
			UserID:       userID,
			RoomType:     req.RoomType,
			CheckInDate:  req.CheckInDate,
			CheckOutDate: req.CheckOutDate,
			Location:     req.Location,
			OTAName:      scouted.BestOTA,
			Price:        scouted.BestPrice,
			BeatPrice:    scouted.BeatPrice,
			URL:          scouted.PriceURL,
		}); err != nil {
			return err
		}
		tourRepo := repository.NewSQLiteTourBookingRepo(tx)
		for _, t := range curated.Tours {
			if err := tourRepo.Create(ctx, &domain.TourBooking{
				UserID:           userID,
				BookingID:        bookingID,
				TourName:         t.Name,
				TourType:         t.Type,
				Price:            t.Price,
				AffiliateLink:    t.URL,
				CommissionEarned: domain.Commission(t.Price),
				Status:           domain.TourBookingPending,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving booking: %w", err)
	}
	fields["booking_id"] = bookingID
	fields["tours"] = len(curated.Tours)

	return buildBookFlowResult(bookingID, scouted, curated), nil
}

func preferencesFor(req BookFlowRequest, profile *domain.Profile) agents.CuratorPreferences {
	var profileInterests []string
	var profileActivity string
	if profile != nil {
		profileInterests = profile.Interests
		profileActivity = profile.ActivityLevel
	}
	return agents.CuratorPreferences{
		Interests:     domain.CoalesceList(req.Interests, profileInterests, domain.DefaultInterests),
		ActivityLevel: domain.ActivityLevel(domain.CoalesceStr(req.ActivityLevel, profileActivity, string(domain.ActivityMedium))),
		Budget:        domain.TierForBudget(req.TourBudget),
	}
}

func buildBookFlowResult(bookingID string, scouted *agents.PriceScoutResult, curated agents.CuratedExperience) *BookFlowResult {
	pkg := CuratedPackage{
		Room:           RoomOffer{Price: scouted.BestPrice, OTA: scouted.BestOTA, URL: scouted.PriceURL},
		Tours:          []PackageTour{},
		Dinner:         DinnerOffer{Name: defaultDinnerName, Price: defaultDinnerPrice},
		AffiliateLinks: curated.AffiliateLinks,
	}
	if pkg.AffiliateLinks == nil {
		pkg.AffiliateLinks = []agents.AffiliateLink{}
	}

	var hasDining bool
	for _, t := range curated.Tours {
		if t.Type == domain.TourDining {
			if !hasDining {
				pkg.Dinner = DinnerOffer{Name: t.Name, Price: t.Price}
				hasDining = true
			}
			continue
		}
		pkg.Tours = append(pkg.Tours, PackageTour{Name: t.Name, Type: string(t.Type), Price: t.Price, Duration: t.Duration})
	}

	pkg.Total = scouted.BestPrice + curated.TotalPrice
	if !hasDining {
		pkg.Total += defaultDinnerPrice
	}
	pkg.Total = domain.Round2(pkg.Total)

	return &BookFlowResult{
		BookingID:       bookingID,
		BeatPrice:       scouted.BeatPrice,
		SavingsPercent:  scouted.SavingsPercent,
		CuratedPackage:  pkg,
		Recommendations: curated.Recommendations,
	}
}

func (s *bookingService) DebugTourBookings(ctx context.Context, bookingID string) ([]*domain.TourBooking, error) {
	if bookingID == "" {
		return nil, invalidf("booking_id required")
	}
	rows, err := s.tours.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("listing tour bookings: %w", err)
	}
	return rows, nil
}
