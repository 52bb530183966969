package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
)

const userColumns = `id, username, first_name, last_name, status, active, given_donations,
	volunteered_time, reserved_slots, reserved_events, created_at, version`

// GetUser retrieves a user by id
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, lookupError(err, "user", id)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, lookupError(err, "user", username)
	}
	return user, nil
}

// GetUsers retrieves all users ordered by username
func (s *Store) GetUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// InsertUser inserts a new user record
func (s *Store) InsertUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
	`,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		string(user.Status),
		user.Active,
		user.GivenDonations,
		user.VolunteeredTime.String(),
		TokensColumn(user.ReservedSlots),
		UUIDsColumn(user.ReservedEvents),
		user.CreatedAt,
	)
	if err != nil {
		return insertError(err, "user")
	}
	user.Version = 1
	return nil
}

func updateUser(ctx context.Context, tx *sql.Tx, user *model.User) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET
			first_name = $3, last_name = $4, status = $5, active = $6, given_donations = $7,
			volunteered_time = $8, reserved_slots = $9, reserved_events = $10,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		user.ID,
		user.Version,
		user.FirstName,
		user.LastName,
		string(user.Status),
		user.Active,
		user.GivenDonations,
		user.VolunteeredTime.String(),
		TokensColumn(user.ReservedSlots),
		UUIDsColumn(user.ReservedEvents),
	)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return checkUpdated(res, "user", user.ID, user.Version)
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var status, volunteered string
	var reservedSlots TokensColumn
	var reservedEvents UUIDsColumn
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&status,
		&u.Active,
		&u.GivenDonations,
		&volunteered,
		&reservedSlots,
		&reservedEvents,
		&u.CreatedAt,
		&u.Version,
	); err != nil {
		return nil, err
	}

	u.Status = model.Status(status)
	if !u.Status.Valid() {
		return nil, fmt.Errorf("user %s has unknown status %q: %w", u.ID, status, model.ErrFormat)
	}
	d, err := clock.ParseDuration(volunteered)
	if err != nil {
		return nil, fmt.Errorf("user %s volunteered time: %w", u.ID, err)
	}
	u.VolunteeredTime = d
	u.ReservedSlots = reservedSlots
	u.ReservedEvents = reservedEvents

	return &u, nil
}
