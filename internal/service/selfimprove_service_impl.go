package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const selfImproveSampleSize = 50

// Improver analyses activity digests and proposes prompt updates.
type Improver interface {
	Run(ctx context.Context, in agents.SelfImproveInputs) (*agents.SelfImproveResult, error)
}

type selfImproveService struct {
	improver     Improver
	runs         repository.AgentRunRepo
	reservations repository.ReservationRepo
	tours        repository.TourBookingRepo
	profiles     repository.ProfileRepo
	prompts      repository.AgentPromptRepo
	recorder     *runRecorder
	log          logger.Logger
	observer     UseCaseObserver
}

func NewSelfImproveService(
	improver Improver,
	runs repository.AgentRunRepo,
	reservations repository.ReservationRepo,
	tours repository.TourBookingRepo,
	profiles repository.ProfileRepo,
	prompts repository.AgentPromptRepo,
	log logger.Logger,
	observers ...UseCaseObserver,
) SelfImproveService {
	if log == nil {
		log = logger.NewNop()
	}
	return &selfImproveService{
		improver:     improver,
		runs:         runs,
		reservations: reservations,
		tours:        tours,
		profiles:     profiles,
		prompts:      prompts,
		recorder:     newRunRecorder(runs, log),
		log:          log,
		observer:     combineObservers(observers),
	}
}

// RunAndPersist digests recent activity, runs the improver and activates
// every prompt update it proposes.
func (s *selfImproveService) RunAndPersist(ctx context.Context) (result *agents.SelfImproveResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "self-improve", time.Now(), &err, fields)

	in, err := s.collectInputs(ctx)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, in, fields)
}

// RunWithInputs is RunAndPersist with caller supplied digests.
func (s *selfImproveService) RunWithInputs(ctx context.Context, in agents.SelfImproveInputs) (result *agents.SelfImproveResult, err error) {
	fields := map[string]any{"source": "inputs"}
	defer observe(ctx, s.observer, "self-improve", time.Now(), &err, fields)
	return s.run(ctx, in, fields)
}

func (s *selfImproveService) run(ctx context.Context, in agents.SelfImproveInputs, fields map[string]any) (*agents.SelfImproveResult, error) {
	run := s.recorder.start(ctx, domain.AgentSelfImprove, "", "", in)
	result, err := s.improver.Run(ctx, in)
	s.recorder.finish(ctx, run, result, err)
	if err != nil {
		return nil, err
	}

	applied := 0
	for _, u := range result.PromptUpdates {
		if u.AgentName == "" || strings.TrimSpace(u.PromptText) == "" {
			continue
		}
		if _, err := s.prompts.Activate(ctx, u.AgentName, u.PromptText); err != nil {
			return nil, fmt.Errorf("activating prompt for %s: %w", u.AgentName, err)
		}
		applied++
	}
	fields["prompt_updates"] = applied
	fields["score"] = result.Score
	s.log.Info("self-improvement completed",
		zap.Int("prompt_updates", applied),
		zap.Float64("score", result.Score),
		zap.Int("iterations", result.Iterations))
	return result, nil
}

func (s *selfImproveService) collectInputs(ctx context.Context) (agents.SelfImproveInputs, error) {
	var (
		runs         []*domain.AgentRun
		reservations []*domain.Reservation
		tours        []*domain.TourBooking
		profiles     []*domain.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		runs, err = s.runs.ListRecent(gctx, selfImproveSampleSize)
		return err
	})
	g.Go(func() (err error) {
		reservations, err = s.reservations.ListRecent(gctx, selfImproveSampleSize)
		return err
	})
	g.Go(func() (err error) {
		tours, err = s.tours.ListRecent(gctx, selfImproveSampleSize)
		return err
	})
	g.Go(func() (err error) {
		profiles, err = s.profiles.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return agents.SelfImproveInputs{}, fmt.Errorf("collecting activity: %w", err)
	}
	if len(profiles) > selfImproveSampleSize {
		profiles = profiles[:selfImproveSampleSize]
	}
	return agents.SelfImproveInputs{
		LogsSummary:       summarizeRuns(runs),
		BookingSummary:    summarizeReservations(reservations),
		PrefsSummary:      summarizePreferences(profiles),
		ConversionSummary: summarizeConversions(tours),
	}, nil
}

func summarizeRuns(runs []*domain.AgentRun) string {
	failed := map[string]int{}
	total := map[string]int{}
	for _, r := range runs {
		total[string(r.AgentName)]++
		if r.Status == domain.RunFailed {
			failed[string(r.AgentName)]++
		}
	}
	parts := []string{fmt.Sprintf("Agent runs: %d", len(runs))}
	for _, name := range sortedKeys(total) {
		parts = append(parts, fmt.Sprintf("%s %d (%d failed)", name, total[name], failed[name]))
	}
	return strings.Join(parts, "; ")
}

func summarizeReservations(list []*domain.Reservation) string {
	rooms := map[string]int{}
	for _, r := range list {
		rooms[domain.CoalesceStr(r.RoomType, "unknown")]++
	}
	parts := []string{fmt.Sprintf("Bookings: %d", len(list))}
	for _, room := range sortedKeys(rooms) {
		parts = append(parts, fmt.Sprintf("%s %d", room, rooms[room]))
	}
	return strings.Join(parts, "; ")
}

func summarizePreferences(profiles []*domain.Profile) string {
	styles := map[string]int{}
	interests := map[string]int{}
	optIn := 0
	for _, p := range profiles {
		if p.OptInMagic {
			optIn++
		}
		if p.MusicStyle != "" {
			styles[p.MusicStyle]++
		}
		for _, i := range p.MayaInterests {
			interests[i]++
		}
	}
	parts := []string{
		fmt.Sprintf("Profiles sampled: %d", len(profiles)),
		fmt.Sprintf("opted in to magic: %d", optIn),
	}
	if len(styles) > 0 {
		parts = append(parts, "music styles: "+strings.Join(sortedKeys(styles), ", "))
	}
	if len(interests) > 0 {
		parts = append(parts, "maya interests: "+strings.Join(sortedKeys(interests), ", "))
	}
	return strings.Join(parts, "; ")
}

func summarizeConversions(tours []*domain.TourBooking) string {
	var total, commission float64
	paid := 0
	for _, t := range tours {
		total += t.Price
		commission += t.CommissionEarned
		if t.Status == domain.TourBookingPaid {
			paid++
		}
	}
	return fmt.Sprintf("Recent tour bookings: %d (%d paid); total %.2f; commission %.2f",
		len(tours), paid, domain.Round2(total), domain.Round2(commission))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
