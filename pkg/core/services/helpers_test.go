package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

var jan5 = time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

// mockStore wraps a MemoryStore and lets tests inject failures
type mockStore struct {
	*db.MemoryStore
	saveErr         error
	getEventErr     error
	insertEventsErr error
}

func (m *mockStore) InsertEvents(ctx context.Context, events []*model.Event) error {
	if m.insertEventsErr != nil {
		return m.insertEventsErr
	}
	return m.MemoryStore.InsertEvents(ctx, events)
}

func (m *mockStore) Save(ctx context.Context, changes db.Changes) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	return m.MemoryStore.Save(ctx, changes)
}

func (m *mockStore) GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	if m.getEventErr != nil {
		return nil, m.getEventErr
	}
	return m.MemoryStore.GetEvent(ctx, id)
}

type fixture struct {
	store *mockStore
	svc   *Service
	admin model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := &mockStore{MemoryStore: db.NewMemoryStore()}
	svc := New(store, zap.NewNop(), nil)

	admin, err := svc.RegisterAdmin(context.Background(), RegisterInput{Username: "admin"})
	require.NoError(t, err)

	return &fixture{
		store: store,
		svc:   svc,
		admin: model.Principal{UserID: admin.User.ID, Status: model.StatusAdmin},
	}
}

func (f *fixture) volunteer(t *testing.T, username string) model.Principal {
	t.Helper()
	res, err := f.svc.RegisterUser(context.Background(), RegisterInput{Username: username})
	require.NoError(t, err)
	return model.Principal{UserID: res.User.ID, Status: res.User.Status}
}

func (f *fixture) event(t *testing.T, date time.Time, start, end clock.TimeOfDay, volunteers int) *model.Event {
	t.Helper()
	res, err := f.svc.CreateEvent(context.Background(), f.admin, CreateEventInput{
		Name:           "Food bank",
		Date:           date,
		Start:          start,
		End:            end,
		Location:       "Community hall",
		VolunteerCount: volunteers,
		DonationTarget: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	return res.Event
}

func (f *fixture) reload(t *testing.T, eventID uuid.UUID, userID uuid.UUID) (*model.Event, *model.User) {
	t.Helper()
	event, err := f.store.MemoryStore.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	user, err := f.store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return event, user
}

func at(hour, minute int) clock.TimeOfDay {
	return clock.TimeOfDay{Hour: hour, Minute: minute}
}
