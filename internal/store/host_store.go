package store

import (
	"context"

	"github.com/AdamBeresnev/trivia-tournament/internal/host"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type HostStore struct {
	db *sqlx.DB
}

func NewHostStore(db *sqlx.DB) *HostStore {
	return &HostStore{db: db}
}

const (
	createHostQuery = `
		INSERT INTO hosts (id, email, username, provider, provider_id, avatar_url)
		VALUES (:id, :email, :username, :provider, :provider_id, :avatar_url)
	`
	updateHostProfileQuery = `
		UPDATE hosts SET
		username = :username,
		avatar_url = :avatar_url
		WHERE id = :id
	`
)

func (s *HostStore) GetHostByProvider(ctx context.Context, provider, providerID string) (*host.Host, error) {
	var h host.Host
	err := s.db.GetContext(ctx, &h, "SELECT * FROM hosts WHERE provider = ? AND provider_id = ?", provider, providerID)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HostStore) GetHost(ctx context.Context, id uuid.UUID) (*host.Host, error) {
	var h host.Host
	err := s.db.GetContext(ctx, &h, "SELECT * FROM hosts WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HostStore) CreateHost(ctx context.Context, h *host.Host) error {
	_, err := s.db.NamedExecContext(ctx, createHostQuery, h)
	return err
}

func (s *HostStore) UpdateHostProfile(ctx context.Context, h *host.Host) error {
	_, err := s.db.NamedExecContext(ctx, updateHostProfileQuery, h)
	return err
}
