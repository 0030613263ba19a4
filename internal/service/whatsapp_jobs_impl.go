package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/repository"
	"github.com/linapoint/resortagents/internal/whatsapp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	reminderWindowDays = 7
	welcomeDay         = 7
)

type ReminderResult struct {
	UpcomingReminders int      `json:"upcomingReminders"`
	WelcomeMessages   int      `json:"welcomeMessages"`
	Errors            []string `json:"errors"`
}

type ProactiveResult struct {
	Message string   `json:"message,omitempty"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type whatsAppJobs struct {
	sender       MessageSender
	profiles     repository.ProfileRepo
	reservations repository.ReservationRepo
	chats        repository.WhatsAppRepo
	limiter      *rate.Limiter
	log          logger.Logger
	observer     UseCaseObserver
	pick         func(n int) int
}

// NewWhatsAppJobs wires the scheduled WhatsApp jobs. Bulk sends are spaced
// to sendsPerSecond; zero disables throttling.
func NewWhatsAppJobs(
	sender MessageSender,
	profiles repository.ProfileRepo,
	reservations repository.ReservationRepo,
	chats repository.WhatsAppRepo,
	sendsPerSecond float64,
	log logger.Logger,
	observers ...UseCaseObserver,
) WhatsAppJobs {
	if log == nil {
		log = logger.NewNop()
	}
	limit := rate.Inf
	if sendsPerSecond > 0 {
		limit = rate.Limit(sendsPerSecond)
	}
	return &whatsAppJobs{
		sender:       sender,
		profiles:     profiles,
		reservations: reservations,
		chats:        chats,
		limiter:      rate.NewLimiter(limit, 1),
		log:          log,
		observer:     combineObservers(observers),
		pick:         rand.IntN,
	}
}

// SendCheckInReminders welcomes guests a week out and reminds them three
// days and one day before check-in.
func (j *whatsAppJobs) SendCheckInReminders(ctx context.Context, now time.Time) (result *ReminderResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, j.observer, "checkin-reminders", time.Now(), &err, fields)

	upcoming, err := j.reservations.ListCheckInBetween(ctx, domain.ReservationConfirmed, now, now.AddDate(0, 0, reminderWindowDays))
	if err != nil {
		return nil, fmt.Errorf("listing upcoming reservations: %w", err)
	}
	fields["reservations"] = len(upcoming)

	result = &ReminderResult{Errors: []string{}}
	for _, r := range upcoming {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		profile, err := j.profiles.GetByUserID(ctx, r.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("Booking %s: %v", r.ID, err))
			}
			continue
		}
		if profile.PhoneNumber == "" {
			j.log.Debug("skipping reminder without phone", zap.String("reservation_id", r.ID))
			continue
		}

		days := r.DaysUntilCheckIn(now)
		var body string
		switch days {
		case welcomeDay:
			body = whatsapp.Welcome(profile.DisplayName())
		case 3, 1:
			body = whatsapp.Reminder(profile.DisplayName(), r.CheckIn.Format("Monday, January 2"), days)
		default:
			continue
		}

		if err := j.limiter.Wait(ctx); err != nil {
			return result, err
		}
		if _, err := j.sender.Send(ctx, profile.PhoneNumber, body); err != nil {
			kind := "reminder"
			if days == welcomeDay {
				kind = "welcome"
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to send %s to %s: %v", kind, profile.PhoneNumber, err))
			continue
		}
		if days == welcomeDay {
			result.WelcomeMessages++
		} else {
			result.UpcomingReminders++
		}
	}
	fields["welcome"] = result.WelcomeMessages
	fields["reminders"] = result.UpcomingReminders
	return result, nil
}

// SendProactiveMessages nudges opted-in guests with an upcoming or current stay.
func (j *whatsAppJobs) SendProactiveMessages(ctx context.Context, now time.Time) (result *ProactiveResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, j.observer, "proactive-messages", time.Now(), &err, fields)

	targets, err := j.profiles.ListProactiveTargets(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("listing proactive targets: %w", err)
	}
	fields["targets"] = len(targets)
	if len(targets) == 0 {
		return &ProactiveResult{Message: "No eligible users"}, nil
	}

	result = &ProactiveResult{}
	for _, p := range targets {
		if err := j.limiter.Wait(ctx); err != nil {
			return result, err
		}
		body := whatsapp.ProactiveTemplates[j.pick(len(whatsapp.ProactiveTemplates))]
		if len(p.MayaInterests) > 0 {
			body = whatsapp.InterestMessage(p.MayaInterests[0])
		}

		sid, err := j.sender.Send(ctx, p.PhoneNumber, body)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("User %s: %v", p.UserID, err))
			j.log.Warn("proactive send failed", zap.String("user_id", p.UserID), zap.Error(err))
			continue
		}
		if err := j.chats.CreateMessage(ctx, &domain.WhatsAppMessage{
			UserID:      p.UserID,
			PhoneNumber: p.PhoneNumber,
			Direction:   domain.DirectionOutbound,
			Body:        body,
			TwilioSID:   sid,
		}); err != nil {
			j.log.Warn("failed to log proactive message", zap.String("user_id", p.UserID), zap.Error(err))
		}
		result.Sent++
	}
	fields["sent"] = result.Sent
	fields["failed"] = result.Failed
	return result, nil
}

func (j *whatsAppJobs) SendAdminMessage(ctx context.Context, phone, message string) (string, error) {
	if phone == "" || message == "" {
		return "", invalidf("phone and message are required")
	}
	sid, err := j.sender.Send(ctx, whatsapp.NormalizePhone(phone), message)
	if err != nil {
		return "", fmt.Errorf("sending admin message: %w", err)
	}
	return sid, nil
}
