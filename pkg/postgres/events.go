package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

const eventColumns = `id, name, event_date, start_time, end_time, location, description, active, slots,
	volunteers_needed, volunteers_attending, donations_needed, donations_received, created_at, version`

// GetEvent retrieves an event by id
func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		return nil, lookupError(err, "event", id)
	}
	return event, nil
}

// GetEvents retrieves all events ordered by date then start time
func (s *Store) GetEvents(ctx context.Context) ([]*model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY event_date, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	// start_time is text, so order by time of day in Go
	db.SortEvents(events)
	return events, nil
}

// InsertEvent inserts a new event record
func (s *Store) InsertEvent(ctx context.Context, event *model.Event) error {
	if err := insertEvent(ctx, s.db, event); err != nil {
		return err
	}
	event.Version = 1
	return nil
}

// InsertEvents inserts all events in one transaction; on error none are stored
func (s *Store) InsertEvents(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, event := range events {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	for _, event := range events {
		event.Version = 1
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvent(ctx context.Context, ex execer, event *model.Event) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)
	`,
		event.ID,
		event.Name,
		event.Date,
		event.Window.Start.String(),
		event.Window.End.String(),
		event.Location,
		event.Description,
		event.Active,
		TokensColumn(event.Slots),
		event.VolunteersNeeded,
		event.VolunteersAttending,
		event.DonationsNeeded,
		event.DonationsReceived,
		event.CreatedAt,
	)
	if err != nil {
		return insertError(err, "event")
	}
	return nil
}

func updateEvent(ctx context.Context, tx *sql.Tx, event *model.Event) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE events SET
			name = $3, event_date = $4, start_time = $5, end_time = $6, location = $7,
			description = $8, active = $9, slots = $10, volunteers_needed = $11,
			volunteers_attending = $12, donations_needed = $13, donations_received = $14,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		event.ID,
		event.Version,
		event.Name,
		event.Date,
		event.Window.Start.String(),
		event.Window.End.String(),
		event.Location,
		event.Description,
		event.Active,
		TokensColumn(event.Slots),
		event.VolunteersNeeded,
		event.VolunteersAttending,
		event.DonationsNeeded,
		event.DonationsReceived,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}
	return checkUpdated(res, "event", event.ID, event.Version)
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var start, end string
	var tokens TokensColumn
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Date,
		&start,
		&end,
		&e.Location,
		&e.Description,
		&e.Active,
		&tokens,
		&e.VolunteersNeeded,
		&e.VolunteersAttending,
		&e.DonationsNeeded,
		&e.DonationsReceived,
		&e.CreatedAt,
		&e.Version,
	); err != nil {
		return nil, err
	}

	startTime, err := clock.ParseMilitary(start)
	if err != nil {
		return nil, fmt.Errorf("event %s start: %w", e.ID, err)
	}
	endTime, err := clock.ParseMilitary(end)
	if err != nil {
		return nil, fmt.Errorf("event %s end: %w", e.ID, err)
	}
	e.Window = slots.Window{Start: startTime, End: endTime}
	e.Date = slots.CivilDate(e.Date)
	e.Slots = tokens

	return &e, nil
}
