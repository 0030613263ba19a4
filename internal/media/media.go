// Package media wraps the song, video and remix generation providers.
package media

import (
	"context"
	"fmt"
	"time"
)

const storageBase = "https://storage.linapoint.magic"

// Provider names recorded on generated content.
const (
	ProviderSuno    = "suno"
	ProviderLTX     = "ltx_studio"
	ProviderKlangio = "klangio"
)

// Result is a stored media artefact.
type Result struct {
	URL      string
	Provider string
}

type SongRequest struct {
	UserID string
	Lyrics string
	Style  string
}

type VideoRequest struct {
	UserID string
	Script string
}

type RemixRequest struct {
	UserID   string
	AudioURL string
}

type SongProvider interface {
	GenerateSong(ctx context.Context, req SongRequest) (Result, error)
}

type VideoProvider interface {
	GenerateVideo(ctx context.Context, req VideoRequest) (Result, error)
}

type RemixProvider interface {
	Remix(ctx context.Context, req RemixRequest) (Result, error)
}

// Studio bundles the three providers used by the content pipeline.
type Studio struct {
	Songs  SongProvider
	Videos VideoProvider
	Remix  RemixProvider
}

// NewMockStudio returns a Studio whose providers fabricate storage URLs.
func NewMockStudio() Studio {
	return Studio{
		Songs:  &MockSuno{Now: time.Now},
		Videos: &MockLTX{Now: time.Now},
		Remix:  &MockKlangio{Now: time.Now},
	}
}

// MockSuno stands in for the Suno song API.
type MockSuno struct {
	Now func() time.Time
}

func (m *MockSuno) GenerateSong(ctx context.Context, req SongRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		URL:      fmt.Sprintf("%s/audio/%s/%d.mp3", storageBase, req.UserID, m.Now().UnixMilli()),
		Provider: ProviderSuno,
	}, nil
}

// MockLTX stands in for LTX Studio video rendering.
type MockLTX struct {
	Now func() time.Time
}

func (m *MockLTX) GenerateVideo(ctx context.Context, req VideoRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		URL:      fmt.Sprintf("%s/video/%s/%d.mp4", storageBase, req.UserID, m.Now().UnixMilli()),
		Provider: ProviderLTX,
	}, nil
}

// MockKlangio stands in for the Klangio ambient remix API.
type MockKlangio struct {
	Now func() time.Time
}

func (m *MockKlangio) Remix(ctx context.Context, req RemixRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if req.AudioURL == "" {
		return Result{}, fmt.Errorf("klangio remix: no source audio")
	}
	return Result{
		URL:      fmt.Sprintf("%s/audio/%s/%d-remix.mp3", storageBase, req.UserID, m.Now().UnixMilli()),
		Provider: ProviderKlangio,
	}, nil
}
