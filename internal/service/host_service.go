package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/AdamBeresnev/trivia-tournament/internal/host"
	"github.com/AdamBeresnev/trivia-tournament/internal/middleware"
	"github.com/AdamBeresnev/trivia-tournament/internal/store"
	"github.com/google/uuid"
	"github.com/markbates/goth"
)

type HostService struct {
	store *store.HostStore
}

func NewHostService(store *store.HostStore) *HostService {
	return &HostService{store: store}
}

// FindOrCreateHostByProvider returns the host behind an OAuth login, creating
// it on first sight and refreshing its profile afterwards.
func (s *HostService) FindOrCreateHostByProvider(ctx context.Context, gothUser goth.User) (*host.Host, error) {
	h, err := s.store.GetHostByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		avatar, name := optional(gothUser.AvatarURL), displayName(gothUser)
		if !sameOptional(h.AvatarURL, avatar) || h.Username != name {
			h.AvatarURL = avatar
			h.Username = name
			if err := s.store.UpdateHostProfile(ctx, h); err != nil {
				return nil, err
			}
		}
		return h, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		provider, providerID := gothUser.Provider, gothUser.UserID
		newHost := &host.Host{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   displayName(gothUser),
			Provider:   &provider,
			ProviderID: &providerID,
			AvatarURL:  optional(gothUser.AvatarURL),
		}
		err := s.store.CreateHost(ctx, newHost)
		return newHost, err
	}

	return nil, err
}

// optional returns nil on an empty or all whitespace string
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func displayName(u goth.User) string {
	if u.NickName != "" {
		return u.NickName
	}
	return u.Name
}

// EnsureGuestHost returns the shared guest host used for local play.
func (s *HostService) EnsureGuestHost(ctx context.Context) (*host.Host, error) {
	guestID := uuid.MustParse(middleware.GuestHostID)
	h, err := s.store.GetHost(ctx, guestID)
	if err == nil {
		return h, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guest := &host.Host{
			ID:       guestID,
			Email:    "guest@trivia.local",
			Username: "Guest Host",
		}
		err := s.store.CreateHost(ctx, guest)
		return guest, err
	}
	return nil, err
}
