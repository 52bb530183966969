package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
	"github.com/teamaptiv/volunteer-hub/pkg/metrics"
)

var (
	// ErrAccountInactive is returned when a deactivated user tries to act
	ErrAccountInactive = fmt.Errorf("%w: account has been deactivated", model.ErrPermissionDenied)

	// ErrAdminOnly is returned when a non-admin calls an administrative operation
	ErrAdminOnly = fmt.Errorf("%w: administrator access required", model.ErrPermissionDenied)

	// ErrEventInactive is returned when reserving or donating to a cancelled event
	ErrEventInactive = fmt.Errorf("%w: event has been cancelled", model.ErrPermissionDenied)
)

var validate = validator.New()

// Service applies ledger operations against a store. Mutations on the same
// user, event or org are serialised; everything else runs in parallel.
type Service struct {
	store   db.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	locks   *keyedLocks
	now     func() time.Time
}

// New creates a Service. A nil metrics creates unregistered metrics.
func New(store db.Store, logger *zap.Logger, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		locks:   newKeyedLocks(),
		now:     time.Now,
	}
}

func userKey(id uuid.UUID) string  { return "user:" + id.String() }
func eventKey(id uuid.UUID) string { return "event:" + id.String() }
func orgKey(id uuid.UUID) string   { return "org:" + id.String() }

func requireAdmin(principal model.Principal) error {
	if !principal.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// loadActiveUser fetches the acting user and rejects deactivated accounts
func (s *Service) loadActiveUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return nil, fmt.Errorf("user %s: %w", id, ErrAccountInactive)
	}
	return user, nil
}

func (s *Service) save(ctx context.Context, changes db.Changes) error {
	if err := s.store.Save(ctx, changes); err != nil {
		if errors.Is(err, model.ErrConcurrentUpdate) {
			s.logger.Warn("Concurrent update detected, operation discarded", zap.Error(err))
		}
		return fmt.Errorf("failed to save changes: %w", err)
	}
	return nil
}
