package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamaptiv/volunteer-hub/pkg/core/ledger"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
)

func TestCancelSlots(t *testing.T) {
	f := newFixture(t)
	vera := f.volunteer(t, "vera")
	morning := f.event(t, jan5, at(9, 0), at(10, 30), 1)
	afternoon := f.event(t, jan5, at(13, 0), at(14, 0), 1)

	for _, event := range []*model.Event{morning, afternoon} {
		_, err := f.svc.ReserveSlots(context.Background(), vera, ReserveInput{
			EventID: event.ID,
			Tokens:  []string{event.Slots[0].String()},
		})
		require.NoError(t, err)
	}

	_, user := f.reload(t, afternoon.ID, vera.UserID)
	require.Equal(t, "2:30", user.VolunteeredTime.String())
	held := user.SlotsFor(afternoon.ID)
	require.Len(t, held, 1)

	res, err := f.svc.CancelSlots(context.Background(), vera, CancelInput{
		EventID:        afternoon.ID,
		Tokens:         []string{held[0].String()},
		RemainingCount: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "1:30", res.VolunteeredTime.String())
	assert.Equal(t, KeySuccessCancelled, res.Notification.Key)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, morning.ID, res.Tokens[0].EventID)

	stored, user := f.reload(t, afternoon.ID, vera.UserID)
	require.Len(t, stored.Slots, 1)
	assert.False(t, stored.Slots[0].Claimed())
	assert.Equal(t, afternoon.Slots[0], stored.Slots[0])
	assert.Equal(t, 1, stored.VolunteersNeeded)
	assert.Equal(t, 0, stored.VolunteersAttending)
	assert.False(t, user.AttendsEvent(afternoon.ID))
	assert.True(t, user.AttendsEvent(morning.ID))
}

func TestCancelSlots_AcceptsUnclaimedForm(t *testing.T) {
	f := newFixture(t)
	vera := f.volunteer(t, "vera")
	event := f.event(t, jan5, at(9, 0), at(12, 0), 3)
	tokens := []string{event.Slots[0].String(), event.Slots[1].String()}

	_, err := f.svc.ReserveSlots(context.Background(), vera, ReserveInput{EventID: event.ID, Tokens: tokens})
	require.NoError(t, err)

	res, err := f.svc.CancelSlots(context.Background(), vera, CancelInput{
		EventID:        event.ID,
		Tokens:         tokens[:1],
		RemainingCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "1:00", res.VolunteeredTime.String())

	// Still holds one increment, so the event stays on the profile
	_, user := f.reload(t, event.ID, vera.UserID)
	assert.True(t, user.AttendsEvent(event.ID))
}

func TestCancelSlots_HintMismatchStillCancels(t *testing.T) {
	f := newFixture(t)
	vera := f.volunteer(t, "vera")
	event := f.event(t, jan5, at(9, 0), at(12, 0), 3)
	tokens := []string{event.Slots[0].String(), event.Slots[1].String()}

	_, err := f.svc.ReserveSlots(context.Background(), vera, ReserveInput{EventID: event.ID, Tokens: tokens})
	require.NoError(t, err)

	// The caller thinks this is the last increment but one more remains
	_, err = f.svc.CancelSlots(context.Background(), vera, CancelInput{
		EventID:        event.ID,
		Tokens:         tokens[:1],
		RemainingCount: 1,
	})
	require.NoError(t, err)

	_, user := f.reload(t, event.ID, vera.UserID)
	assert.True(t, user.AttendsEvent(event.ID))
	assert.Len(t, user.SlotsFor(event.ID), 1)
}

func TestCancelSlots_Rejections(t *testing.T) {
	f := newFixture(t)
	vera := f.volunteer(t, "vera")
	event := f.event(t, jan5, at(9, 0), at(12, 0), 3)

	_, err := f.svc.ReserveSlots(context.Background(), vera, ReserveInput{
		EventID: event.ID,
		Tokens:  []string{event.Slots[0].String()},
	})
	require.NoError(t, err)

	_, err = f.svc.CancelSlots(context.Background(), vera, CancelInput{EventID: event.ID})
	require.ErrorIs(t, err, model.ErrNoSelection)
	n := NotificationFor(OpCancelSlots, err)
	assert.Equal(t, KeyPermissionDenied, n.Key)
	assert.Equal(t, "Please select at least one checkbox", n.Message)

	_, err = f.svc.CancelSlots(context.Background(), vera, CancelInput{
		EventID: event.ID,
		Tokens:  []string{event.Slots[2].String()},
	})
	assert.ErrorIs(t, err, ledger.ErrSlotNotHeld)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.CancelSlots(context.Background(), vera, CancelInput{
		EventID: event.ID,
		Tokens:  []string{"9:00 A.M. - 10:00 A.M."},
	})
	assert.ErrorIs(t, err, model.ErrFormat)

	_, user := f.reload(t, event.ID, vera.UserID)
	assert.Len(t, user.ReservedSlots, 1)
	assert.Equal(t, "1:00", user.VolunteeredTime.String())
}
