package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/recursion"
	"go.uber.org/zap"
)

const (
	IntentBooking = "booking"
	IntentMagic   = "magic"
	IntentGeneral = "general"
)

// Actions the concierge can tag a reply with.
const (
	ActionBookRoom      = "BOOK_ROOM"
	ActionGenerateMagic = "GENERATE_MAGIC"
	ActionExplainMagic  = "EXPLAIN_MAGIC"
	ActionHelp          = "HELP"
)

const (
	conciergeGoal        = "Provide a short, friendly WhatsApp reply that moves the conversation forward."
	conciergeDefaultHint = "Be shorter and ask one clear question."
	// ConciergeFallbackReply is sent when the model cannot be reached.
	ConciergeFallbackReply = "I'm having a bit of trouble right now. Please try again in a moment, or reply HELP for options."
	conciergeEmptyReply    = "Got it. Let me check on that."
)

var (
	actionTag   = regexp.MustCompile(`\[ACTION:(BOOK_ROOM|GENERATE_MAGIC|EXPLAIN_MAGIC|HELP)\]`)
	isoDate     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	groupSizeRe = regexp.MustCompile(`(?i)(\d+)\s+(guests|people|adults)`)
	uuidRe      = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

type ConciergeInput struct {
	Message       string
	Profile       *domain.Profile
	History       []*domain.WhatsAppMessage
	PendingAction *domain.PendingAction
}

type ConciergeReply struct {
	Reply         string                `json:"reply"`
	Intent        string                `json:"intent"`
	Action        string                `json:"action,omitempty"`
	PendingAction *domain.PendingAction `json:"pending_action,omitempty"`
	Iterations    int                   `json:"iterations"`
	Score         float64               `json:"score"`
	Fallback      bool                  `json:"fallback,omitempty"`
}

// Concierge answers WhatsApp guests as "Maya Guide".
type Concierge struct {
	client    llm.LLMClient
	evaluator *recursion.TextEvaluator
	prompts   *Prompts
	opts      recursion.Options
	log       logger.Logger
}

func NewConcierge(client llm.LLMClient, prompts *Prompts, opts recursion.Options, log logger.Logger) *Concierge {
	if log == nil {
		log = logger.NewNop()
	}
	return &Concierge{
		client:    client,
		evaluator: recursion.NewTextEvaluator(client),
		prompts:   prompts,
		opts:      opts,
		log:       log,
	}
}

type draftReply struct {
	text     string
	action   string
	fallback bool
}

func (c *Concierge) Reply(ctx context.Context, in ConciergeInput) (*ConciergeReply, error) {
	generate := func(ctx context.Context, _ int) (draftReply, error) {
		return c.respond(ctx, in, ""), nil
	}
	evaluate := func(ctx context.Context, d draftReply, _ int) (recursion.Evaluation[draftReply], error) {
		if d.fallback {
			return recursion.Evaluation[draftReply]{Score: 1, Feedback: "fallback reply", Value: d}, nil
		}
		grade := c.evaluator.Evaluate(ctx, conciergeGoal, "Reply: "+d.text)
		return recursion.Evaluation[draftReply]{Score: grade.Score, Feedback: grade.Feedback, Value: d}, nil
	}
	refine := func(ctx context.Context, _ draftReply, feedback string, iteration int) (draftReply, error) {
		hint := fmt.Sprintf("Iteration %d: %s", iteration+1, domain.CoalesceStr(feedback, conciergeDefaultHint))
		return c.respond(ctx, in, hint), nil
	}

	out, err := recursion.Run(ctx, generate, evaluate, refine, c.opts)
	if err != nil {
		return nil, fmt.Errorf("concierge: %w", err)
	}

	intent, action := DetectIntent(in.Message, in.PendingAction)
	if out.Value.action != "" {
		action = out.Value.action
	}

	reply := &ConciergeReply{
		Reply:      domain.CoalesceStr(out.Value.text, conciergeEmptyReply),
		Intent:     intent,
		Action:     action,
		Iterations: out.Iterations,
		Score:      out.Score,
		Fallback:   out.Value.fallback,
	}
	var existing map[string]any
	if in.PendingAction != nil {
		existing = in.PendingAction.Data
	}
	switch intent {
	case IntentBooking:
		reply.PendingAction = &domain.PendingAction{Type: domain.PendingBookFlow, Data: ExtractBookingDetails(in.Message, existing)}
	case IntentMagic:
		reply.PendingAction = &domain.PendingAction{Type: domain.PendingMagicContent, Data: ExtractMagicDetails(in.Message, existing)}
	}
	return reply, nil
}

func (c *Concierge) respond(ctx context.Context, in ConciergeInput, hint string) draftReply {
	if c.client == nil {
		return draftReply{text: ConciergeFallbackReply, fallback: true}
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskConcierge,
		SystemPrompt: c.systemPrompt(ctx, in.Profile, hint),
		UserPrompt:   conversationPrompt(in.History, in.Message),
	})
	if err != nil {
		c.log.Warn("concierge reply failed", zap.Error(err))
		return draftReply{text: ConciergeFallbackReply, fallback: true}
	}
	text, action := SplitActionTag(resp.Text)
	return draftReply{text: text, action: action}
}

func (c *Concierge) systemPrompt(ctx context.Context, p *domain.Profile, hint string) string {
	var b strings.Builder
	b.WriteString(c.prompts.System(ctx, domain.AgentConcierge))
	fmt.Fprintf(&b, "\nUse user preferences for personalization: %s.", profilePrefsJSON(p))
	b.WriteString("\nIf an action is needed, end with one of [ACTION:BOOK_ROOM], [ACTION:GENERATE_MAGIC], [ACTION:EXPLAIN_MAGIC], [ACTION:HELP].")
	if hint != "" {
		b.WriteString(" Refinement: " + hint)
	}
	return b.String()
}

func profilePrefsJSON(p *domain.Profile) string {
	if p == nil {
		return "{}"
	}
	prefs := map[string]any{
		"name":           p.DisplayName(),
		"birthday":       p.Birthday,
		"anniversary":    p.Anniversary,
		"events":         p.SpecialEvents,
		"music_style":    p.MusicStyle,
		"maya_interests": p.MayaInterests,
		"opt_in_magic":   p.OptInMagic,
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// conversationPrompt renders the last few turns followed by the new message.
func conversationPrompt(history []*domain.WhatsAppMessage, message string) string {
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	var b strings.Builder
	for _, m := range history {
		who := "Guest"
		if m.Direction == domain.DirectionOutbound {
			who = "Maya"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, m.Body)
	}
	fmt.Fprintf(&b, "Guest: %s", message)
	return b.String()
}

// SplitActionTag removes an [ACTION:...] tag from a reply and returns it.
func SplitActionTag(reply string) (string, string) {
	m := actionTag.FindStringSubmatch(reply)
	if m == nil {
		return strings.TrimSpace(reply), ""
	}
	return strings.TrimSpace(actionTag.ReplaceAllString(reply, "")), m[1]
}

// DetectIntent classifies a guest message. An unfinished flow from the
// session takes precedence over keywords.
func DetectIntent(message string, pending *domain.PendingAction) (intent, action string) {
	if pending != nil {
		switch pending.Type {
		case domain.PendingBookFlow:
			return IntentBooking, ActionBookRoom
		case domain.PendingMagicContent:
			return IntentMagic, ActionExplainMagic
		}
	}
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "book", "reservation", "room"):
		return IntentBooking, ActionBookRoom
	case containsAny(lower, "magic", "song", "video"):
		return IntentMagic, ActionExplainMagic
	default:
		return IntentGeneral, ""
	}
}

// ExtractBookingDetails pulls dates, party size and room type out of a
// message, keeping values already collected.
func ExtractBookingDetails(message string, existing map[string]any) map[string]any {
	data := maps.Clone(existing)
	if data == nil {
		data = map[string]any{}
	}
	dates := isoDate.FindAllString(message, -1)
	if len(dates) >= 1 && data["checkInDate"] == nil {
		data["checkInDate"] = dates[0]
	}
	if len(dates) >= 2 && data["checkOutDate"] == nil {
		data["checkOutDate"] = dates[1]
	}
	if m := groupSizeRe.FindStringSubmatch(message); m != nil && data["groupSize"] == nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			data["groupSize"] = n
		}
	}
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "suite"):
		data["roomType"] = "suite"
	case strings.Contains(lower, "villa"):
		data["roomType"] = "villa"
	case strings.Contains(lower, "overwater"):
		data["roomType"] = "overwater room"
	}
	return data
}

// ExtractMagicDetails pulls a reservation id and an occasion out of a message.
func ExtractMagicDetails(message string, existing map[string]any) map[string]any {
	data := maps.Clone(existing)
	if data == nil {
		data = map[string]any{}
	}
	if id := uuidRe.FindString(message); id != "" && data["reservationId"] == nil {
		data["reservationId"] = strings.ToLower(id)
	}
	lower := strings.ToLower(message)
	for _, occasion := range []string{"birthday", "anniversary", "proposal", "renewal"} {
		if strings.Contains(lower, occasion) {
			data["occasion"] = occasion
		}
	}
	return data
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
