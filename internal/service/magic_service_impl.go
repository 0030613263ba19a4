package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/repository"
	"github.com/linapoint/resortagents/internal/whatsapp"
	"go.uber.org/zap"
)

// MagicRequest carries the guest's overrides for a generation. Only
// ReservationID and Occasion are required.
type MagicRequest struct {
	ReservationID string `json:"reservationId"`
	Occasion      string `json:"occasion"`
	MusicStyle    string `json:"musicStyle"`
	Mood          string `json:"mood"`
	RecipientName string `json:"recipientName"`
	GiftYouName   string `json:"giftYouName"`
	Message       string `json:"message"`
}

type MagicItem struct {
	ContentType domain.ContentType `json:"contentType"`
	RecordID    string             `json:"recordId"`
	MediaURL    string             `json:"mediaUrl,omitempty"`
}

// ContentGenerator renders one magic content item.
type ContentGenerator interface {
	Generate(ctx context.Context, req agents.ContentRequest) (*agents.GeneratedContent, error)
}

// MessageSender delivers a WhatsApp message and returns its provider id.
type MessageSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type magicService struct {
	content        ContentGenerator
	reservations   repository.ReservationRepo
	profiles       repository.ProfileRepo
	questionnaires repository.QuestionnaireRepo
	contents       repository.MagicContentRepo
	sender         MessageSender
	runs           *runRecorder
	log            logger.Logger
	observer       UseCaseObserver
}

// NewMagicService wires the magic content use cases. sender may be nil, in
// which case finished content is not announced over WhatsApp.
func NewMagicService(
	content ContentGenerator,
	reservations repository.ReservationRepo,
	profiles repository.ProfileRepo,
	questionnaires repository.QuestionnaireRepo,
	contents repository.MagicContentRepo,
	runs repository.AgentRunRepo,
	sender MessageSender,
	log logger.Logger,
	observers ...UseCaseObserver,
) MagicService {
	if log == nil {
		log = logger.NewNop()
	}
	return &magicService{
		content:        content,
		reservations:   reservations,
		profiles:       profiles,
		questionnaires: questionnaires,
		contents:       contents,
		sender:         sender,
		runs:           newRunRecorder(runs, log),
		log:            log,
		observer:       combineObservers(observers),
	}
}

func (s *magicService) GenerateForReservation(ctx context.Context, userID string, req MagicRequest) (items []MagicItem, err error) {
	fields := map[string]any{"user_id": userID, "reservation_id": req.ReservationID}
	defer observe(ctx, s.observer, "generate-magic", time.Now(), &err, fields)

	if req.ReservationID == "" || req.Occasion == "" {
		return nil, invalidf("Missing reservationId or occasion")
	}

	reservation, err := s.reservations.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, lookupErr(err, "reservation")
	}
	if reservation.UserID != userID {
		return nil, fmt.Errorf("reservation: %w", ErrNotFound)
	}
	if !reservation.AllowsMagic() {
		return nil, invalidf("Magic add-on not included in reservation")
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil || !profile.OptInMagic {
		return nil, fmt.Errorf("%w: Magic agent not enabled in profile", ErrForbidden)
	}

	q, err := s.questionnaire(ctx, userID, req, profile)
	if err != nil {
		return nil, err
	}
	fields["occasion"] = string(q.Occasion)

	run := s.runs.start(ctx, domain.AgentContentMagic, userID, req.ReservationID, req)
	for _, kind := range []domain.ContentType{domain.ContentSong, domain.ContentVideo} {
		var item MagicItem
		item, err = s.generateOne(ctx, userID, req.ReservationID, kind, q)
		if err != nil {
			s.runs.finish(ctx, run, nil, err)
			return nil, err
		}
		items = append(items, item)
	}
	s.runs.finish(ctx, run, items, nil)

	s.announce(ctx, profile, q, items)
	return items, nil
}

// questionnaire prefers the guest's stored answers for the reservation and
// falls back to the request and profile.
func (s *magicService) questionnaire(ctx context.Context, userID string, req MagicRequest, profile *domain.Profile) (domain.Questionnaire, error) {
	row, err := s.questionnaires.GetLatest(ctx, userID, req.ReservationID)
	if err == nil {
		return row.Normalize(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Questionnaire{}, fmt.Errorf("loading questionnaire: %w", err)
	}

	return domain.Questionnaire{
		Occasion:      domain.NormalizeOccasion(req.Occasion),
		RecipientName: domain.CoalesceStr(req.RecipientName, profile.FullName, "Guest"),
		GiftYouName:   domain.CoalesceStr(req.GiftYouName, profile.FullName, "Lina Point Resort"),
		Message:       req.Message,
		MusicStyle:    domain.NormalizeMusicStyle(domain.CoalesceStr(req.MusicStyle, profile.MusicStyle)),
		Mood:          domain.NormalizeMood(req.Mood),
	}, nil
}

func (s *magicService) generateOne(ctx context.Context, userID, reservationID string, kind domain.ContentType, q domain.Questionnaire) (MagicItem, error) {
	record := &domain.MagicContent{
		UserID:        userID,
		ReservationID: reservationID,
		ContentType:   kind,
		Title:         "Processing " + string(kind),
		Genre:         string(q.MusicStyle),
		Status:        domain.ContentProcessing,
	}
	if err := s.contents.Create(ctx, record); err != nil {
		return MagicItem{}, fmt.Errorf("creating magic content record: %w", err)
	}
	item := MagicItem{ContentType: kind, RecordID: record.ID}

	generated, genErr := s.content.Generate(ctx, agents.ContentRequest{
		UserID:        userID,
		ReservationID: reservationID,
		Type:          kind,
		Questionnaire: q,
	})
	if genErr != nil {
		s.log.Warn("magic content generation failed",
			zap.String("record_id", record.ID), zap.String("type", string(kind)), zap.Error(genErr))
		record.Status = domain.ContentFailed
		record.ErrorMessage = genErr.Error()
		if err := s.contents.Update(ctx, record); err != nil {
			return MagicItem{}, fmt.Errorf("marking magic content failed: %w", err)
		}
		return item, nil
	}

	record.Title = domain.CoalesceStr(generated.Title, fmt.Sprintf("%s %s for %s", q.Occasion, kind, q.RecipientName))
	record.Description = generated.Description
	record.Prompt = generated.Prompt
	record.MediaURL = generated.MediaURL
	record.DurationSeconds = generated.DurationSeconds
	record.FileSizeBytes = generated.FileSizeBytes
	record.GenerationProvider = generated.Provider
	record.ProcessingTimeMs = generated.ProcessingTimeMs
	record.Status = domain.ContentCompleted
	if err := s.contents.Update(ctx, record); err != nil {
		return MagicItem{}, fmt.Errorf("completing magic content: %w", err)
	}
	item.MediaURL = generated.MediaURL
	return item, nil
}

func (s *magicService) announce(ctx context.Context, profile *domain.Profile, q domain.Questionnaire, items []MagicItem) {
	if s.sender == nil || profile.PhoneNumber == "" {
		return
	}
	links := whatsapp.ContentLinks{Title: fmt.Sprintf("%s magic for %s", q.Occasion, q.RecipientName)}
	for _, it := range items {
		switch it.ContentType {
		case domain.ContentSong:
			links.SongURL = it.MediaURL
		case domain.ContentVideo:
			links.VideoURL = it.MediaURL
		}
	}
	if links.SongURL == "" && links.VideoURL == "" {
		return
	}
	if _, err := s.sender.Send(ctx, profile.PhoneNumber, whatsapp.MagicContentDelivery(links)); err != nil {
		s.log.Warn("failed to deliver magic content over whatsapp", zap.String("user_id", profile.UserID), zap.Error(err))
	}
}

func (s *magicService) ListForUser(ctx context.Context, userID string) ([]*domain.MagicContent, error) {
	rows, err := s.contents.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing magic content: %w", err)
	}
	return rows, nil
}
