package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
)

// EventStore defines the interface for event record operations
type EventStore interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error)
	GetEvents(ctx context.Context) ([]*model.Event, error)
	InsertEvent(ctx context.Context, event *model.Event) error
	// InsertEvents stores all events or none of them
	InsertEvents(ctx context.Context, events []*model.Event) error
}

// UserStore defines the interface for user account operations
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUsers(ctx context.Context) ([]*model.User, error)
	InsertUser(ctx context.Context, user *model.User) error
}

// OrgStore defines the interface for organisation operations
type OrgStore interface {
	GetOrg(ctx context.Context, id uuid.UUID) (*model.Org, error)
	GetOrgByName(ctx context.Context, name string) (*model.Org, error)
	InsertOrg(ctx context.Context, org *model.Org) error
}

// Changes is the set of aggregates touched by one ledger operation
type Changes struct {
	Users  []*model.User
	Events []*model.Event
	Orgs   []*model.Org
}

// Empty reports whether there is nothing to write
func (c Changes) Empty() bool {
	return len(c.Users) == 0 && len(c.Events) == 0 && len(c.Orgs) == 0
}

// Store defines the interface for all persistence operations.
// Both the in-memory MemoryStore and postgres.Store implement this interface.
//
// Lookups return copies; callers mutate them and hand them back through Save.
// Save writes every aggregate in Changes or none of them. Each aggregate's
// Version must match the stored version, otherwise Save fails with
// model.ErrConcurrentUpdate. On success each Version is incremented in place.
type Store interface {
	EventStore
	UserStore
	OrgStore
	Save(ctx context.Context, changes Changes) error
}
