package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/repository"
)

type authService struct {
	profiles    repository.ProfileRepo
	adminEmails map[string]struct{}
}

// NewAuthService resolves access tokens against stored profiles. Profiles
// flagged as admin or whose email is listed in adminEmails are admins.
func NewAuthService(profiles repository.ProfileRepo, adminEmails []string) AuthService {
	emails := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails[e] = struct{}{}
		}
	}
	return &authService{profiles: profiles, adminEmails: emails}
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}
	p, err := s.profiles.GetByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("resolving access token: %w", err)
	}
	return p, nil
}

func (s *authService) IsAdmin(p *domain.Profile) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin {
		return true
	}
	_, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(p.Email))]
	return ok && p.Email != ""
}
