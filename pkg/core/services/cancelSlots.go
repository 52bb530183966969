package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

// CancelInput selects held increments of one event. Tokens may be in either
// storage form. RemainingCount is the number of increments the caller believes
// the user holds for the event before cancelling.
type CancelInput struct {
	EventID        uuid.UUID
	Tokens         []string
	RemainingCount int
}

// CancelSlots returns the selected increments from the calling user to the event
func (s *Service) CancelSlots(ctx context.Context, principal model.Principal, input CancelInput) (result *ReservationResult, err error) {
	defer s.metrics.ObserveOperation(string(OpCancelSlots), time.Now(), &err)

	logger := s.logger.With(
		zap.String("user_id", principal.UserID.String()),
		zap.String("event_id", input.EventID.String()))

	// Validate the selection
	if len(input.Tokens) == 0 {
		return nil, model.ErrNoSelection
	}
	// Parse the selected tokens; either storage form is accepted
	chosen := make([]slots.Token, 0, len(input.Tokens))
	for _, raw := range input.Tokens {
		tok, err := slots.ParseToken(raw)
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


	// Return the slots to the event pool
	cancelled, err := ledger.Cancel(user, event, chosen, input.RemainingCount)
	if err != nil {
		logger.Debug("Cancellation rejected", zap.Error(err))
		return nil, fmt.Errorf("failed to cancel slots: %w", err)
	}

	// Flag anything unusual left behind by the cancellation
	if cancelled.HintMismatch {
		logger.Warn("Remaining count disagrees with holdings",
			zap.Int("hint", input.RemainingCount),
			zap.Int("cancelled", len(cancelled.Released)),
			zap.Int("still_held", len(user.SlotsFor(event.ID))))
	}
	if cancelled.NegativeTime {
		logger.Warn("Volunteered time is negative after cancellation",
			zap.String("volunteered_time", user.VolunteeredTime.String()))
	}

	// Write the user and event together; a version clash fails the whole request
	if err := s.save(ctx, db.Changes{Users: []*model.User{user}, Events: []*model.Event{event}}); err != nil {
		return nil, err
	}

	// Record the outcome
	s.metrics.SlotsMoved.WithLabelValues("released").Add(float64(len(cancelled.Released)))

	logger.Info("Slots cancelled",
		zap.Int("count", len(cancelled.Released)),
		zap.String("removed", cancelled.Removed.String()),
		zap.Bool("left_event", cancelled.LeftEvent))

	return &ReservationResult{
		Tokens:          user.ReservedSlots,
		VolunteeredTime: user.VolunteeredTime,
		Notification:    NotificationFor(OpCancelSlots, nil),
	}, nil
}
