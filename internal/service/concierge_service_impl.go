package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/repository"
	"github.com/linapoint/resortagents/internal/whatsapp"
	"go.uber.org/zap"
)

const historyTurns = 5

type InboundResult struct {
	Reply      string `json:"reply"`
	Intent     string `json:"intent"`
	Action     string `json:"action,omitempty"`
	MessageSID string `json:"messageSid"`
}

// ConciergeResponder produces a reply for one inbound message.
type ConciergeResponder interface {
	Reply(ctx context.Context, in agents.ConciergeInput) (*agents.ConciergeReply, error)
}

type conciergeService struct {
	agent    ConciergeResponder
	profiles repository.ProfileRepo
	chats    repository.WhatsAppRepo
	sender   MessageSender
	runs     *runRecorder
	log      logger.Logger
	observer UseCaseObserver
	now      func() time.Time
}

func NewConciergeService(
	agent ConciergeResponder,
	profiles repository.ProfileRepo,
	chats repository.WhatsAppRepo,
	sender MessageSender,
	runs repository.AgentRunRepo,
	log logger.Logger,
	observers ...UseCaseObserver,
) ConciergeService {
	if log == nil {
		log = logger.NewNop()
	}
	return &conciergeService{
		agent:    agent,
		profiles: profiles,
		chats:    chats,
		sender:   sender,
		runs:     newRunRecorder(runs, log),
		log:      log,
		observer: combineObservers(observers),
		now:      time.Now,
	}
}

// HandleInbound answers a guest message and records both sides of the
// exchange on the guest's active session.
func (s *conciergeService) HandleInbound(ctx context.Context, phone, body string) (result *InboundResult, err error) {
	phone = whatsapp.NormalizePhone(phone)
	fields := map[string]any{"phone": phone}
	defer observe(ctx, s.observer, "whatsapp-inbound", time.Now(), &err, fields)

	if phone == "" || strings.TrimSpace(body) == "" {
		return nil, invalidf("Missing required fields")
	}

	profile, err := s.profiles.GetByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		profile = nil
	}
	var userID string
	if profile != nil {
		userID = profile.UserID
	}

	session, err := s.activeSession(ctx, phone, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.chats.ListRecentMessages(ctx, session.ID, historyTurns)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	run := s.runs.start(ctx, domain.AgentConcierge, userID, session.ID, map[string]string{"message": body})
	reply, err := s.agent.Reply(ctx, agents.ConciergeInput{
		Message:       body,
		Profile:       profile,
		History:       history,
		PendingAction: session.Context.PendingAction,
	})
	s.runs.finish(ctx, run, reply, err)
	if err != nil {
		return nil, fmt.Errorf("running concierge: %w", err)
	}
	fields["intent"] = reply.Intent

	if err = s.chats.CreateMessage(ctx, &domain.WhatsAppMessage{
		SessionID:   session.ID,
		UserID:      userID,
		PhoneNumber: phone,
		Direction:   domain.DirectionInbound,
		Body:        body,
	}); err != nil {
		return nil, fmt.Errorf("saving inbound message: %w", err)
	}

	sid, err := s.sender.Send(ctx, phone, reply.Reply)
	if err != nil {
		return nil, fmt.Errorf("sending reply: %w", err)
	}

	if err = s.chats.CreateMessage(ctx, &domain.WhatsAppMessage{
		SessionID:   session.ID,
		UserID:      userID,
		PhoneNumber: phone,
		Direction:   domain.DirectionOutbound,
		Body:        reply.Reply,
		TwilioSID:   sid,
		AgentResponse: map[string]any{
			"intent":     reply.Intent,
			"action":     reply.Action,
			"iterations": reply.Iterations,
			"score":      reply.Score,
		},
	}); err != nil {
		return nil, fmt.Errorf("saving outbound message: %w", err)
	}

	now := s.now().UTC()
	session.LastMessage = body
	session.LastMessageAt = &now
	session.Context = domain.ConversationContext{
		LastIntent:    reply.Intent,
		LastAction:    reply.Action,
		PendingAction: reply.PendingAction,
	}
	if err = s.chats.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	return &InboundResult{Reply: reply.Reply, Intent: reply.Intent, Action: reply.Action, MessageSID: sid}, nil
}

func (s *conciergeService) activeSession(ctx context.Context, phone, userID string) (*domain.WhatsAppSession, error) {
	session, err := s.chats.GetActiveSession(ctx, phone)
	if err == nil {
		if session.UserID == "" && userID != "" {
			session.UserID = userID
		}
		return session, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	session = &domain.WhatsAppSession{PhoneNumber: phone, UserID: userID, IsActive: true}
	if err := s.chats.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	s.log.Debug("started whatsapp session", zap.String("session_id", session.ID))
	return session, nil
}
