package agents

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/media"
	"github.com/linapoint/resortagents/internal/recursion"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedStudio() media.Studio {
	now := func() time.Time { return fixedNow }
	return media.Studio{
		Songs:  &media.MockSuno{Now: now},
		Videos: &media.MockLTX{Now: now},
		Remix:  &media.MockKlangio{Now: now},
	}
}

func sampleQuestionnaire() domain.Questionnaire {
	return domain.Questionnaire{
		Occasion:       domain.OccasionAnniversary,
		RecipientName:  "Ana",
		GiftYouName:    "Marco",
		KeyMemories:    []string{"first dive", "Caye Caulker"},
		FavoriteColors: []string{"turquoise"},
		MusicStyle:     domain.StyleReggae,
		Mood:           domain.MoodRomantic,
	}
}

func newTestContent(client llm.LLMClient, studio media.Studio) *Content {
	c := NewContent(client, studio, NewPrompts(nil), recursion.Options{}, logger.NewNop())
	c.rand = func() float64 { return 0.5 }
	return c
}

func TestContent_SongPrefersRemix(t *testing.T) {
	fake := testutil.NewFakeLLM("Verse 1: the magic is you", `{"score": 0.9, "feedback": "lovely"}`)
	got, err := newTestContent(fake, fixedStudio()).Generate(context.Background(), ContentRequest{
		UserID: "u1", Type: domain.ContentSong, Questionnaire: sampleQuestionnaire(),
	})
	require.NoError(t, err)

	ms := fixedNow.UnixMilli()
	assert.Equal(t, "https://storage.linapoint.magic/audio/u1/"+strconv.FormatInt(ms, 10)+"-remix.mp3", got.MediaURL)
	assert.Equal(t, "Anniversary song for Ana", got.Title)
	assert.Equal(t, "Personalized song created for anniversary", got.Description)
	assert.Equal(t, 180, got.DurationSeconds)
	assert.Equal(t, int64(10_000_000), got.FileSizeBytes)
	assert.Equal(t, media.ProviderSuno, got.Provider)
	assert.Equal(t, 1, got.Iterations)
	assert.Equal(t, "Verse 1: the magic is you", got.Lyrics)

	require.Equal(t, 1, fake.CallsFor(llm.TaskLyrics))
	assert.Contains(t, fake.Requests[0].SystemPrompt, "magical content creator")
	assert.Equal(t, "Goal: "+contentGoal+"\nOutput: Status: completed Media: "+got.MediaURL, fake.Requests[1].UserPrompt)
}

func TestContent_VideoUsesLTX(t *testing.T) {
	fake := testutil.NewFakeLLM("Scene 1", `{"score": 1}`)
	got, err := newTestContent(fake, fixedStudio()).Generate(context.Background(), ContentRequest{
		UserID: "u1", Type: domain.ContentVideo, Questionnaire: sampleQuestionnaire(),
	})
	require.NoError(t, err)
	assert.Contains(t, got.MediaURL, "/video/u1/")
	assert.Equal(t, 90, got.DurationSeconds)
	assert.Equal(t, media.ProviderLTX, got.Provider)
	assert.Equal(t, "Anniversary video for Ana", got.Title)
}

func TestContent_LLMDownUsesTemplateAndRefines(t *testing.T) {
	fake := testutil.NewFailingLLM()
	got, err := newTestContent(fake, fixedStudio()).Generate(context.Background(), ContentRequest{
		UserID: "u2", Type: domain.ContentSong, Questionnaire: sampleQuestionnaire(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, got.Iterations)
	assert.InDelta(t, 0.5, got.Score, 1e-9)
	assert.Contains(t, got.Lyrics, "The Magic is You")
	assert.Contains(t, got.Prompt, "Refinement: Iteration 3: Could not parse evaluator response.")
	assert.Equal(t, 3, fake.CallsFor(llm.TaskLyrics))
	assert.Equal(t, 3, fake.CallsFor(llm.TaskEvaluate))
}

type failingSongs struct{ err error }

func (f failingSongs) GenerateSong(context.Context, media.SongRequest) (media.Result, error) {
	return media.Result{}, f.err
}

func TestContent_ProviderFailureSurfaces(t *testing.T) {
	boom := errors.New("suno quota exceeded")
	studio := fixedStudio()
	studio.Songs = failingSongs{err: boom}

	_, err := newTestContent(testutil.NewFakeLLM("lyrics", `{"score":1}`), studio).Generate(context.Background(), ContentRequest{
		UserID: "u1", Type: domain.ContentAudioRemix, Questionnaire: sampleQuestionnaire(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "song generation")
}

func TestContent_RejectsUnknownType(t *testing.T) {
	_, err := newTestContent(testutil.NewFakeLLM(), fixedStudio()).Generate(context.Background(), ContentRequest{Type: "poem"})
	assert.Error(t, err)
}

func TestBuildContentPrompt(t *testing.T) {
	q := sampleQuestionnaire()
	q.Message = "Forever yours"
	prompt := BuildContentPrompt(domain.ContentSong, q, "Iteration 2: warmer")

	assert.Contains(t, prompt, "Create a personalized reggae song for a anniversary.")
	assert.Contains(t, prompt, "Recipient: Ana\nGift from: Marco\nMood: romantic\nMusic Style: reggae\n")
	assert.Contains(t, prompt, "Key Memories: first dive, Caye Caulker")
	assert.Contains(t, prompt, "Favorite Colors: turquoise")
	assert.NotContains(t, prompt, "Favorite Artists")
	assert.Contains(t, prompt, `Personal Message: "Forever yours"`)
	assert.Contains(t, prompt, `mantra "The Magic is You"`)
	assert.Contains(t, prompt, "Maximum 500 words.\nRefinement: Iteration 2: warmer")

	video := BuildContentPrompt(domain.ContentVideo, q, "")
	assert.Contains(t, video, "60-90 second video")
	assert.NotContains(t, video, "Refinement")
}
