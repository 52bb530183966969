package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

// Store provides persistence using PostgreSQL
type Store struct {
	db *sql.DB
}

var _ db.Store = (*Store)(nil)

// Connect opens a PostgreSQL connection through the pgx driver and checks it is reachable
func Connect(ctx context.Context, connString string) (*Store, error) {
	conn, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: conn}, nil
}

// New wraps an existing connection
func New(conn *sql.DB) *Store {
	return &Store{db: conn}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RunMigrations executes all pending SQL migration files in order.
// It tracks which migrations have been applied in a schema_migrations table.
func (s *Store) RunMigrations(ctx context.Context) ([]string, error) {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan migration filename: %w", err)
		}
		applied[filename] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applied migrations: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	var ran []string
	for _, filename := range sqlFiles {
		if applied[filename] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return ran, fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return ran, fmt.Errorf("failed to begin transaction for %s: %w", filename, err)
		}

		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return ran, fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
			tx.Rollback()
			return ran, fmt.Errorf("failed to record migration %s: %w", filename, err)
		}

		if err := tx.Commit(); err != nil {
			return ran, fmt.Errorf("failed to commit migration %s: %w", filename, err)
		}
		ran = append(ran, filename)
	}

	return ran, nil
}

// Save writes all changed aggregates in one transaction, guarded by their versions
func (s *Store) Save(ctx context.Context, changes db.Changes) error {
	if changes.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, user := range changes.Users {
		if err := updateUser(ctx, tx, user); err != nil {
			return err
		}
	}
	for _, event := range changes.Events {
		if err := updateEvent(ctx, tx, event); err != nil {
			return err
		}
	}
	for _, org := range changes.Orgs {
		if err := updateOrg(ctx, tx, org); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}

	// Only reflect the new versions once the write is durable
	for _, user := range changes.Users {
		user.Version++
	}
	for _, event := range changes.Events {
		event.Version++
	}
	for _, org := range changes.Orgs {
		org.Version++
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// checkUpdated turns a zero-row versioned update into a concurrency error
func checkUpdated(res sql.Result, kind string, id fmt.Stringer, version int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s at version %d: %w", kind, id, version, model.ErrConcurrentUpdate)
	}
	return nil
}

// insertError maps unique violations to model.ErrAlreadyExists
func insertError(err error, kind string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", kind, pgErr.ConstraintName, model.ErrAlreadyExists)
	}
	return fmt.Errorf("failed to insert %s: %w", kind, err)
}

// lookupError maps sql.ErrNoRows to model.ErrNotFound
func lookupError(err error, kind string, key any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", kind, key, model.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %v: %w", kind, key, err)
}
