package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

// ReserveInput selects increments of one event. Tokens are in the unclaimed
// storage form. Date is optional; when set it must be the event's date.
type ReserveInput struct {
	EventID uuid.UUID
	Date    time.Time
	Tokens  []string
}

// ReservationResult reports the user's holdings after a reserve or cancel
type ReservationResult struct {
	Tokens          []slots.Token
	VolunteeredTime clock.Duration
	Notification    Notification
}

// ReserveSlots moves the selected increments from the event to the calling user
func (s *Service) ReserveSlots(ctx context.Context, principal model.Principal, input ReserveInput) (result *ReservationResult, err error) {
	defer s.metrics.ObserveOperation(string(OpReserveSlots), time.Now(), &err)

	logger := s.logger.With(
		zap.String("user_id", principal.UserID.String()),
		zap.String("event_id", input.EventID.String()))

	// Validate the selection
	if len(input.Tokens) == 0 {
		return nil, model.ErrNoSelection
	}
	// Parse the selected tokens; reservations always start from the unclaimed form
	chosen := make([]slots.Token, 0, len(input.Tokens))
	for _, raw := range input.Tokens {
		tok, err := slots.ParseUnclaimed(raw)
		if err != nil {
			return nil, err
		}
		chosen = append(chosen, tok)
	}

	// Lock the user and the event so competing requests for either wait their turn
	unlock := s.locks.Lock(userKey(principal.UserID), eventKey(input.EventID))
	defer unlock()

	// Fetch fresh copies of the user and event while holding the locks
	user, err := s.loadActiveUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	event, err := s.store.GetEvent(ctx, input.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	// Check the event can still take volunteers on the requested date
	if !event.Active {
		return nil, ErrEventInactive
	}
	if !input.Date.IsZero() && !slots.CivilDate(input.Date).Equal(event.Date) {
		return nil, fmt.Errorf("%w: date %s does not match event date %s", model.ErrFormat,
			input.Date.Format(slots.DateLayout), event.Date.Format(slots.DateLayout))
	}

	// Move the slots onto the user; the ledger checks availability and overlaps first
	reserved, err := ledger.Reserve(user, event, chosen)
	if err != nil {
		logger.Debug("Reservation rejected", zap.Error(err))
		return nil, fmt.Errorf("failed to reserve slots: %w", err)
	}
	if event.VolunteersNeeded < 0 {
		logger.Warn("Event is over-subscribed", zap.Int("volunteers_needed", event.VolunteersNeeded))
	}

	// Write the user and event together; a version clash fails the whole request
	if err := s.save(ctx, db.Changes{Users: []*model.User{user}, Events: []*model.Event{event}}); err != nil {
		return nil, err
	}

	// Record the outcome
	s.metrics.SlotsMoved.WithLabelValues("reserved").Add(float64(len(reserved.Claimed)))

	logger.Info("Slots reserved",
		zap.Int("count", len(reserved.Claimed)),
		zap.String("added", reserved.Added.String()),
		zap.String("volunteered_time", user.VolunteeredTime.String()),
		zap.Bool("first_for_event", reserved.FirstForEvent))

	return &ReservationResult{
		Tokens:          user.ReservedSlots,
		VolunteeredTime: user.VolunteeredTime,
		Notification:    NotificationFor(OpReserveSlots, nil),
	}, nil
}
