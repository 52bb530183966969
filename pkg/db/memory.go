package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
)

// MemoryStore is a Store kept entirely in process memory. It backs the service
// and API tests; the CLI always runs against postgres.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*model.Event
	users  map[uuid.UUID]*model.User
	orgs   map[uuid.UUID]*model.Org
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[uuid.UUID]*model.Event),
		users:  make(map[uuid.UUID]*model.User),
		orgs:   make(map[uuid.UUID]*model.Org),
	}
}

// GetEvent retrieves an event by id
func (s *MemoryStore) GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, model.ErrNotFound)
	}
	return event.Clone(), nil
}

// GetEvents retrieves all events ordered by date then start time
func (s *MemoryStore) GetEvents(ctx context.Context) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*model.Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event.Clone())
	}
	SortEvents(events)
	return events, nil
}

// SortEvents orders events by date, then start time, then name
func SortEvents(events []*model.Event) {
	slices.SortStableFunc(events, func(a, b *model.Event) int {
		return cmp.Or(
			a.Date.Compare(b.Date),
			cmp.Compare(a.Window.Start.Minutes(), b.Window.Start.Minutes()),
			strings.Compare(a.Name, b.Name),
		)
	})
}

// InsertEvent inserts a new event
func (s *MemoryStore) InsertEvent(ctx context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return fmt.Errorf("event %s: %w", event.ID, model.ErrAlreadyExists)
	}
	event.Version = 1
	s.events[event.ID] = event.Clone()
	return nil
}

// InsertEvents inserts every event or, if any id is taken, none of them
func (s *MemoryStore) InsertEvents(ctx context.Context, events []*model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(events))
	for _, event := range events {
		if _, exists := s.events[event.ID]; exists || seen[event.ID] {
			return fmt.Errorf("event %s: %w", event.ID, model.ErrAlreadyExists)
		}
		seen[event.ID] = true
	}
	for _, event := range events {
		event.Version = 1
		s.events[event.ID] = event.Clone()
	}
	return nil
}

// GetUser retrieves a user by id
func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}
	return user.Clone(), nil
}

// GetUserByUsername retrieves a user by username
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return user.Clone(), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, model.ErrNotFound)
}

// GetUsers retrieves all users ordered by username
func (s *MemoryStore) GetUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Clone())
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

// InsertUser inserts a new user. Usernames are unique.
func (s *MemoryStore) InsertUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, model.ErrAlreadyExists)
	}
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, model.ErrAlreadyExists)
		}
	}
	user.Version = 1
	s.users[user.ID] = user.Clone()
	return nil
}

// GetOrg retrieves an organisation by id
func (s *MemoryStore) GetOrg(ctx context.Context, id uuid.UUID) (*model.Org, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, fmt.Errorf("org %s: %w", id, model.ErrNotFound)
	}
	return org.Clone(), nil
}

// GetOrgByName retrieves an organisation by name
func (s *MemoryStore) GetOrgByName(ctx context.Context, name string) (*model.Org, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.orgs {
		if org.Name == name {
			return org.Clone(), nil
		}
	}
	return nil, fmt.Errorf("org %q: %w", name, model.ErrNotFound)
}

// InsertOrg inserts a new organisation. Names are unique.
func (s *MemoryStore) InsertOrg(ctx context.Context, org *model.Org) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orgs[org.ID]; exists {
		return fmt.Errorf("org %s: %w", org.ID, model.ErrAlreadyExists)
	}
	for _, existing := range s.orgs {
		if existing.Name == org.Name {
			return fmt.Errorf("org %q: %w", org.Name, model.ErrAlreadyExists)
		}
	}
	org.Version = 1
	s.orgs[org.ID] = org.Clone()
	return nil
}

// Save writes all changed aggregates atomically
func (s *MemoryStore) Save(ctx context.Context, changes Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every version before writing anything
	for _, user := range changes.Users {
		if err := checkVersion("user", user.ID, s.users[user.ID], user.Version, func(u *model.User) int64 { return u.Version }); err != nil {
			return err
		}
	}
	for _, event := range changes.Events {
		if err := checkVersion("event", event.ID, s.events[event.ID], event.Version, func(e *model.Event) int64 { return e.Version }); err != nil {
			return err
		}
	}
	for _, org := range changes.Orgs {
		if err := checkVersion("org", org.ID, s.orgs[org.ID], org.Version, func(o *model.Org) int64 { return o.Version }); err != nil {
			return err
		}
	}

	for _, user := range changes.Users {
		user.Version++
		s.users[user.ID] = user.Clone()
	}
	for _, event := range changes.Events {
		event.Version++
		s.events[event.ID] = event.Clone()
	}
	for _, org := range changes.Orgs {
		org.Version++
		s.orgs[org.ID] = org.Clone()
	}
	return nil
}

func checkVersion[T any](kind string, id uuid.UUID, stored *T, version int64, versionOf func(*T) int64) error {
	if stored == nil {
		return fmt.Errorf("%s %s: %w", kind, id, model.ErrNotFound)
	}
	if current := versionOf(stored); current != version {
		return fmt.Errorf("%s %s at version %d, have %d: %w", kind, id, current, version, model.ErrConcurrentUpdate)
	}
	return nil
}
