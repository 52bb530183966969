package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
)

// GetOrg retrieves an organisation by id
func (s *Store) GetOrg(ctx context.Context, id uuid.UUID) (*model.Org, error) {
	var o model.Org
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, received_donations, created_at, version
		FROM orgs WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.ReceivedDonations, &o.CreatedAt, &o.Version)
	if err != nil {
		return nil, lookupError(err, "org", id)
	}
	return &o, nil
}

// GetOrgByName retrieves an organisation by name
func (s *Store) GetOrgByName(ctx context.Context, name string) (*model.Org, error) {
	var o model.Org
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, received_donations, created_at, version
		FROM orgs WHERE name = $1
	`, name).Scan(&o.ID, &o.Name, &o.ReceivedDonations, &o.CreatedAt, &o.Version)
	if err != nil {
		return nil, lookupError(err, "org", name)
	}
	return &o, nil
}

// InsertOrg inserts a new organisation record
func (s *Store) InsertOrg(ctx context.Context, org *model.Org) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orgs (id, name, received_donations, created_at, version)
		VALUES ($1, $2, $3, $4, 1)
	`, org.ID, org.Name, org.ReceivedDonations, org.CreatedAt)
	if err != nil {
		return insertError(err, "org")
	}
	org.Version = 1
	return nil
}

func updateOrg(ctx context.Context, tx *sql.Tx, org *model.Org) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orgs SET name = $3, received_donations = $4, version = version + 1
		WHERE id = $1 AND version = $2
	`, org.ID, org.Version, org.Name, org.ReceivedDonations)
	if err != nil {
		return fmt.Errorf("failed to update org %s: %w", org.ID, err)
	}
	return checkUpdated(res, "org", org.ID, org.Version)
}
