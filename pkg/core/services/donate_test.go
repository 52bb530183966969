package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
)

func TestDonate(t *testing.T) {
	f := newFixture(t)
	vera := f.volunteer(t, "vera")
	event := f.event(t, jan5, at(9, 0), at(12, 0), 3)

	res, err := f.svc.Donate(context.Background(), vera, event.ID, decimal.RequireFromString("125.50"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusDonor, res.Status)
	assert.Equal(t, "125.50", res.GivenDonations.StringFixed(2))
	assert.Equal(t, KeySuccessVolunteeredOrDonated, res.Notification.Key)

	stored, user := f.reload(t, event.ID, vera.UserID)
	assert.Equal(t, "374.50", stored.DonationsNeeded.StringFixed(2))
	assert.Equal(t, "125.50", stored.DonationsReceived.StringFixed(2))
	assert.Equal(t, model.StatusDonor, user.Status)
}

func TestDonate_Rejections(t *testing.T) {
	f := newFixture(t)
	vera := f.volunteer(t, "vera")
	event := f.event(t, jan5, at(9, 0), at(12, 0), 3)

	_, err := f.svc.Donate(context.Background(), vera, event.ID, decimal.Zero)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	assert.Equal(t, KeyInvalidInput, NotificationFor(OpDonate, err).Key)

	_, err = f.svc.Donate(context.Background(), vera, uuid.New(), decimal.NewFromInt(5))
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.CancelEvent(context.Background(), f.admin, event.ID)
	require.NoError(t, err)
	_, err = f.svc.Donate(context.Background(), vera, event.ID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, ErrEventInactive)

	_, user := f.reload(t, event.ID, vera.UserID)
	assert.Equal(t, model.StatusVolunteer, user.Status)
	assert.True(t, user.GivenDonations.IsZero())
}

func TestDonateToOrg(t *testing.T) {
	f := newFixture(t)
	vera := f.volunteer(t, "vera")

	org, err := f.svc.EnsureOrg(context.Background(), " Aptiv ")
	require.NoError(t, err)
	again, err := f.svc.EnsureOrg(context.Background(), "Aptiv")
	require.NoError(t, err)
	assert.Equal(t, org.ID, again.ID)

	res, err := f.svc.DonateToOrg(context.Background(), vera, org.ID, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.Equal(t, KeyThanksForDonation, res.Notification.Key)
	assert.Equal(t, model.StatusDonor, res.Status)

	_, err = f.svc.DonateToOrg(context.Background(), f.admin, org.ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	stored, err := f.store.GetOrg(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", stored.ReceivedDonations.String())

	admin, err := f.store.GetUser(context.Background(), f.admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAdmin, admin.Status)

	_, err = f.svc.EnsureOrg(context.Background(), "   ")
	assert.ErrorIs(t, err, model.ErrFormat)
}
