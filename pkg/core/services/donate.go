package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

// DonationResult reports the donor's status and running total
type DonationResult struct {
	Status         model.Status
	GivenDonations decimal.Decimal
	Notification   Notification
}

// Donate records a donation from the calling user towards an event
func (s *Service) Donate(ctx context.Context, principal model.Principal, eventID uuid.UUID, amount decimal.Decimal) (result *DonationResult, err error) {
	defer s.metrics.ObserveOperation(string(OpDonate), time.Now(), &err)

	unlock := s.locks.Lock(userKey(principal.UserID), eventKey(eventID))
	defer unlock()

	user, err := s.loadActiveUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if !event.Active {
		return nil, ErrEventInactive
	}

	if err := ledger.Donate(user, event, amount); err != nil {
		return nil, err
	}
	if err := s.save(ctx, db.Changes{Users: []*model.User{user}, Events: []*model.Event{event}}); err != nil {
		return nil, err
	}
	amountFloat, _ := amount.Float64()
	s.metrics.DonationsTotal.WithLabelValues("event").Add(amountFloat)

	s.logger.Info("Donation received",
		zap.String("user_id", user.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("donations_needed", event.DonationsNeeded.StringFixed(2)))

	return &DonationResult{
		Status:         user.Status,
		GivenDonations: user.GivenDonations,
		Notification:   NotificationFor(OpDonate, nil),
	}, nil
}

// DonateToOrg records a donation from the calling user directly to an organisation
func (s *Service) DonateToOrg(ctx context.Context, principal model.Principal, orgID uuid.UUID, amount decimal.Decimal) (result *DonationResult, err error) {
	defer s.metrics.ObserveOperation(string(OpDonateToOrg), time.Now(), &err)

	unlock := s.locks.Lock(userKey(principal.UserID), orgKey(orgID))
	defer unlock()

	user, err := s.loadActiveUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	org, err := s.store.GetOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load org: %w", err)
	}

	if err := ledger.DonateToOrg(user, org, amount); err != nil {
		return nil, err
	}
	if err := s.save(ctx, db.Changes{Users: []*model.User{user}, Orgs: []*model.Org{org}}); err != nil {
		return nil, err
	}
	amountFloat, _ := amount.Float64()
	s.metrics.DonationsTotal.WithLabelValues("org").Add(amountFloat)

	s.logger.Info("Organisation donation received",
		zap.String("user_id", user.ID.String()),
		zap.String("org", org.Name),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("received_donations", org.ReceivedDonations.StringFixed(2)))

	return &DonationResult{
		Status:         user.Status,
		GivenDonations: user.GivenDonations,
		Notification:   NotificationFor(OpDonateToOrg, nil),
	}, nil
}
