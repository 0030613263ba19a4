package agents

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/media"
	"github.com/linapoint/resortagents/internal/recursion"
	"go.uber.org/zap"
)

// ErrNoMedia means the pipeline finished without any media to deliver.
var ErrNoMedia = errors.New("no media generated to save")

const (
	contentGoal        = "Produce a personalized magic experience with clear, uplifting tone."
	contentDefaultHint = "Tighten personalization."
)

type ContentRequest struct {
	UserID        string
	ReservationID string
	Type          domain.ContentType
	Questionnaire domain.Questionnaire
}

// GeneratedContent is a finished magic content item ready to persist.
type GeneratedContent struct {
	Type             domain.ContentType `json:"type"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	MediaURL         string             `json:"mediaUrl"`
	DurationSeconds  int                `json:"durationSeconds"`
	FileSizeBytes    int64              `json:"fileSizeBytes"`
	Provider         string             `json:"provider"`
	Prompt           string             `json:"prompt"`
	Lyrics           string             `json:"lyrics"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
	Iterations       int                `json:"iterations"`
	Score            float64            `json:"score"`
}

// Content writes lyrics or a script with the LLM, then renders media through
// the studio providers.
type Content struct {
	client    llm.LLMClient
	studio    media.Studio
	evaluator *recursion.TextEvaluator
	prompts   *Prompts
	opts      recursion.Options
	log       logger.Logger
	rand      func() float64
	now       func() time.Time
}

func NewContent(client llm.LLMClient, studio media.Studio, prompts *Prompts, opts recursion.Options, log logger.Logger) *Content {
	if log == nil {
		log = logger.NewNop()
	}
	return &Content{
		client:    client,
		studio:    studio,
		evaluator: recursion.NewTextEvaluator(client),
		prompts:   prompts,
		opts:      opts,
		log:       log,
		rand:      rand.Float64,
		now:       time.Now,
	}
}

type contentState struct {
	prompt   string
	lyrics   string
	audioURL string
	videoURL string
	remixURL string
	mediaURL string
	status   domain.ContentStatus
	err      error
}

func (s contentState) summary() string {
	return fmt.Sprintf("Status: %s Media: %s", s.status, domain.CoalesceStr(s.mediaURL, "pending"))
}

// Generate runs the content pipeline, refining it until the evaluator is
// satisfied or the iteration cap is hit.
func (c *Content) Generate(ctx context.Context, req ContentRequest) (*GeneratedContent, error) {
	if !domain.ValidContentTypes[string(req.Type)] {
		return nil, fmt.Errorf("unsupported content type %q", req.Type)
	}
	start := c.now()
	c.log.Debug("generating magic content",
		zap.String("user_id", req.UserID),
		zap.String("type", string(req.Type)),
		zap.String("occasion", string(req.Questionnaire.Occasion)))

	generate := func(ctx context.Context, _ int) (contentState, error) {
		return c.pipeline(ctx, req, "")
	}
	evaluate := func(ctx context.Context, st contentState, _ int) (recursion.Evaluation[contentState], error) {
		grade := c.evaluator.Evaluate(ctx, contentGoal, st.summary())
		return recursion.Evaluation[contentState]{Score: grade.Score, Feedback: grade.Feedback, Value: st}, nil
	}
	refine := func(ctx context.Context, _ contentState, feedback string, iteration int) (contentState, error) {
		hint := fmt.Sprintf("Iteration %d: %s", iteration+1, domain.CoalesceStr(feedback, contentDefaultHint))
		return c.pipeline(ctx, req, hint)
	}

	out, err := recursion.Run(ctx, generate, evaluate, refine, c.opts)
	if err != nil {
		return nil, fmt.Errorf("content agent: %w", err)
	}
	st := out.Value
	if st.status == domain.ContentFailed {
		return nil, fmt.Errorf("content agent: %w", st.err)
	}

	q := req.Questionnaire
	occasion := string(q.Occasion)
	res := &GeneratedContent{
		Type:             req.Type,
		Title:            fmt.Sprintf("%s %s for %s", capitalize(occasion), req.Type, q.RecipientName),
		Description:      fmt.Sprintf("Personalized %s created for %s", req.Type, occasion),
		MediaURL:         st.mediaURL,
		DurationSeconds:  180,
		FileSizeBytes:    int64(c.rand()*10_000_000) + 5_000_000,
		Provider:         media.ProviderLTX,
		Prompt:           st.prompt,
		Lyrics:           st.lyrics,
		ProcessingTimeMs: c.now().Sub(start).Milliseconds(),
		Iterations:       out.Iterations,
		Score:            out.Score,
	}
	if req.Type == domain.ContentVideo {
		res.DurationSeconds = 90
	}
	if req.Type == domain.ContentSong {
		res.Provider = media.ProviderSuno
	}
	return res, nil
}

// pipeline runs one pass. Provider failures mark the state failed; only
// context cancellation aborts.
func (c *Content) pipeline(ctx context.Context, req ContentRequest, hint string) (contentState, error) {
	st := contentState{prompt: BuildContentPrompt(req.Type, req.Questionnaire, hint)}

	lyrics, err := c.writeLyrics(ctx, st.prompt)
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		c.log.Warn("lyrics generation failed, using template", zap.Error(err))
		lyrics = FallbackLyrics(req.Type, req.Questionnaire)
	}
	st.lyrics = lyrics

	fail := func(step string, err error) (contentState, error) {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		st.status = domain.ContentFailed
		st.err = fmt.Errorf("%s: %w", step, err)
		return st, nil
	}

	if req.Type != domain.ContentVideo {
		song, err := c.studio.Songs.GenerateSong(ctx, media.SongRequest{
			UserID: req.UserID, Lyrics: lyrics, Style: string(req.Questionnaire.MusicStyle),
		})
		if err != nil {
			return fail("song generation", err)
		}
		st.audioURL = song.URL
	}

	skipVideo := req.Type == domain.ContentAudioRemix ||
		(req.Type == domain.ContentSong && req.Questionnaire.Message == "")
	if !skipVideo {
		video, err := c.studio.Videos.GenerateVideo(ctx, media.VideoRequest{UserID: req.UserID, Script: lyrics})
		if err != nil {
			return fail("video generation", err)
		}
		st.videoURL = video.URL
	}

	if st.audioURL != "" {
		remix, err := c.studio.Remix.Remix(ctx, media.RemixRequest{UserID: req.UserID, AudioURL: st.audioURL})
		if err != nil {
			return fail("remix", err)
		}
		st.remixURL = remix.URL
	}

	switch req.Type {
	case domain.ContentSong:
		st.mediaURL = domain.CoalesceStr(st.remixURL, st.audioURL)
	case domain.ContentVideo:
		st.mediaURL = st.videoURL
	case domain.ContentAudioRemix:
		st.mediaURL = st.remixURL
	}
	if st.mediaURL == "" {
		return fail("merge", ErrNoMedia)
	}
	st.status = domain.ContentCompleted
	return st, nil
}

func (c *Content) writeLyrics(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", llm.ErrUnavailable
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskLyrics,
		SystemPrompt: c.prompts.System(ctx, domain.AgentContentMagic),
		UserPrompt:   prompt,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", llm.ErrInvalidOutput
	}
	return text, nil
}

// BuildContentPrompt renders the lyric or script request for the LLM.
func BuildContentPrompt(kind domain.ContentType, q domain.Questionnaire, hint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a personalized %s %s for a %s.\n\n", q.MusicStyle, kind, q.Occasion)
	fmt.Fprintf(&b, "Recipient: %s\nGift from: %s\nMood: %s\nMusic Style: %s\n", q.RecipientName, q.GiftYouName, q.Mood, q.MusicStyle)

	var extra []string
	if len(q.KeyMemories) > 0 {
		extra = append(extra, "Key Memories: "+strings.Join(q.KeyMemories, ", "))
	}
	if len(q.FavoriteColors) > 0 {
		extra = append(extra, "Favorite Colors: "+strings.Join(q.FavoriteColors, ", "))
	}
	if len(q.FavoriteSongsArtists) > 0 {
		extra = append(extra, "Favorite Artists: "+strings.Join(q.FavoriteSongsArtists, ", "))
	}
	if q.Message != "" {
		extra = append(extra, fmt.Sprintf("Personal Message: %q", q.Message))
	}
	if len(extra) > 0 {
		b.WriteString("\n" + strings.Join(extra, "\n") + "\n")
	}

	switch kind {
	case domain.ContentSong:
		b.WriteString("\nCreate lyrics with the mantra \"The Magic is You\" woven throughout. Include Maya wisdom and kundalini energy themes. Structure: Verse 1 → Chorus → Verse 2 → Bridge → Chorus → Outro.\n")
	case domain.ContentVideo:
		b.WriteString("\nCreate a script for a 60-90 second video. Include scene descriptions, timing, and voiceover elements.\n")
	case domain.ContentAudioRemix:
		b.WriteString("\nCreate an ambient remix description with binaural beats, frequency suggestions, and emotional journey arc.\n")
	}

	b.WriteString("\nMake it magical, personal, and uplifting. Maximum 500 words.")
	if hint != "" {
		b.WriteString("\nRefinement: " + hint)
	}
	return b.String()
}

// FallbackLyrics is used when the LLM cannot write the piece.
func FallbackLyrics(kind domain.ContentType, q domain.Questionnaire) string {
	switch kind {
	case domain.ContentVideo:
		return fmt.Sprintf("Scene 1 (0-20s): Sunrise over the Caribbean from the Lina Point dock.\n"+
			"Scene 2 (20-60s): Moments for %s, %s.\n"+
			"Scene 3 (60-90s): Sunset toast. Voiceover: \"%s, the magic is you.\" From %s.",
			q.RecipientName, q.Mood, q.RecipientName, q.GiftYouName)
	case domain.ContentAudioRemix:
		return fmt.Sprintf("Ambient %s remix for %s: ocean waves, 432 Hz base with a 7.83 Hz binaural layer, "+
			"rising from calm to %s and settling into stillness.", q.MusicStyle, q.RecipientName, q.Mood)
	default:
		return fmt.Sprintf("Verse 1:\nUnder Belize skies, %s, this %s is yours\n"+
			"Chorus:\nThe Magic is You, the Magic is You\n"+
			"Verse 2:\nA %s gift from %s, carried on the tide\n"+
			"Bridge:\nMaya stars above, the fire awake inside\n"+
			"Chorus:\nThe Magic is You, the Magic is You\n"+
			"Outro:\nThe Magic is You.",
			q.RecipientName, q.Occasion, q.Mood, q.GiftYouName)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
