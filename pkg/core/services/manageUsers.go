package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

const maxConcurrentEventLookups = 8

// RegisterInput describes a new account
type RegisterInput struct {
	Username  string `validate:"required,min=3,max=64"`
	FirstName string `validate:"max=100"`
	LastName  string `validate:"max=100"`
}

// UserResult is returned by operations producing a single user
type UserResult struct {
	User         *model.User
	Notification Notification
}

// RegisterUser creates a new active Volunteer account with no volunteered time.
// Self-registration never grants admin status.
func (s *Service) RegisterUser(ctx context.Context, input RegisterInput) (result *UserResult, err error) {
	defer s.metrics.ObserveOperation(string(OpRegisterUser), time.Now(), &err)
	return s.register(ctx, OpRegisterUser, input, model.StatusVolunteer)
}

// RegisterAdmin creates an administrator account. It performs no permission
// check and is only reachable from operator tooling such as the CLI.
func (s *Service) RegisterAdmin(ctx context.Context, input RegisterInput) (result *UserResult, err error) {
	defer s.metrics.ObserveOperation(string(OpRegisterAdmin), time.Now(), &err)
	return s.register(ctx, OpRegisterAdmin, input, model.StatusAdmin)
}

func (s *Service) register(ctx context.Context, op Operation, input RegisterInput, status model.Status) (*UserResult, error) {
	// Validate input
	input.Username = strings.TrimSpace(input.Username)
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: invalid registration: %v", model.ErrFormat, err)
	}

	// Build and insert the account; the store rejects duplicate usernames
	user := &model.User{
		ID:              uuid.New(),
		Username:        input.Username,
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		Status:          status,
		Active:          true,
		VolunteeredTime: clock.Duration{},
		CreatedAt:       s.now(),
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("status", string(user.Status)))

	return &UserResult{User: user, Notification: NotificationFor(op, nil)}, nil
}

// SetAccountActive deactivates or reactivates a user account
func (s *Service) SetAccountActive(ctx context.Context, principal model.Principal, userID uuid.UUID, active bool) (result *UserResult, err error) {
	op := OpDeactivateUser
	if active {
		op = OpActivateUser
	}
	defer s.metrics.ObserveOperation(string(op), time.Now(), &err)

	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if principal.UserID == userID && !active {
		return nil, fmt.Errorf("%w: administrators cannot deactivate themselves", model.ErrPermissionDenied)
	}

	unlock := s.locks.Lock(userKey(userID))
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ledger.SetAccountActive(user, active)
	if err := s.save(ctx, db.Changes{Users: []*model.User{user}}); err != nil {
		return nil, err
	}

	s.logger.Info("Account status changed",
		zap.String("user_id", user.ID.String()),
		zap.Bool("active", active),
		zap.String("admin_id", principal.UserID.String()))

	return &UserResult{User: user, Notification: NotificationFor(op, nil)}, nil
}

// Profile is a user together with every event they hold increments for
type Profile struct {
	User   *model.User
	Events []*model.Event
}

// GetUserProfile loads a user and the events in their ReservedEvents. Event
// lookups run concurrently; the profile is returned only after all of them finish.
// Users may view their own profile; admins may view anyone's.
func (s *Service) GetUserProfile(ctx context.Context, principal model.Principal, userID uuid.UUID) (*Profile, error) {
	if principal.UserID != userID && !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: cannot view another user's profile", model.ErrPermissionDenied)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	events := make([]*model.Event, len(user.ReservedEvents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEventLookups)

	for i, eventID := range user.ReservedEvents {
		g.Go(func() error {
			event, err := s.store.GetEvent(gctx, eventID)
			if err != nil {
				return fmt.Errorf("failed to load reserved event %s: %w", eventID, err)
			}
			events[i] = event
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded profile",
		zap.String("user_id", user.ID.String()),
		zap.Int("events", len(events)),
		zap.Int("slots", len(user.ReservedSlots)))

	return &Profile{User: user, Events: events}, nil
}

// EnsureOrg returns the organisation with the given name, creating it if needed
func (s *Service) EnsureOrg(ctx context.Context, name string) (*model.Org, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: org name is required", model.ErrFormat)
	}

	unlock := s.locks.Lock("org-name:" + name)
	defer unlock()

	org, err := s.store.GetOrgByName(ctx, name)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up org: %w", err)
	}

	org = &model.Org{ID: uuid.New(), Name: name, CreatedAt: s.now()}
	if err := s.store.InsertOrg(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to insert org: %w", err)
	}

	s.logger.Info("Organisation created", zap.String("org_id", org.ID.String()), zap.String("name", name))
	return org, nil
}
