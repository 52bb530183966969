package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

// maxSeriesEvents caps how many events one recurrence rule may create
const maxSeriesEvents = 100

// CreateEventInput describes a new event
type CreateEventInput struct {
	Name           string    `validate:"required,max=200"`
	Date           time.Time `validate:"required"`
	Start          clock.TimeOfDay
	End            clock.TimeOfDay
	Location       string `validate:"max=200"`
	Description    string `validate:"max=2000"`
	VolunteerCount int    `validate:"min=0"`
	DonationTarget decimal.Decimal
}

// EventResult is returned by operations producing a single event
type EventResult struct {
	Event        *model.Event
	Notification Notification
}

// CreateEvent partitions the window into volunteer increments and stores the new event
func (s *Service) CreateEvent(ctx context.Context, principal model.Principal, input CreateEventInput) (result *EventResult, err error) {
	defer s.metrics.ObserveOperation(string(OpCreateEvent), time.Now(), &err)

	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	event, err := s.buildEvent(input)
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	s.logger.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("name", event.Name),
		zap.String("date", event.Date.Format(slots.DateLayout)),
		zap.String("window", event.Window.Display()),
		zap.Int("increments", len(event.Slots)))

	return &EventResult{Event: event, Notification: NotificationFor(OpCreateEvent, nil)}, nil
}

// SeriesInput describes a recurring event. Template.Date is ignored; the
// dates come from RRule occurrences between From and Until inclusive.
type SeriesInput struct {
	Template CreateEventInput `validate:"-"`
	RRule    string           `validate:"required"`
	From     time.Time        `validate:"required"`
	Until    time.Time        `validate:"required,gtefield=From"`
}

// SeriesResult lists the events created for a recurrence
type SeriesResult struct {
	Events       []*model.Event
	Notification Notification
}

// CreateEventSeries creates one event per occurrence of an RRULE
func (s *Service) CreateEventSeries(ctx context.Context, principal model.Principal, input SeriesInput) (result *SeriesResult, err error) {
	defer s.metrics.ObserveOperation(string(OpCreateSeries), time.Now(), &err)

	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: invalid series: %v", model.ErrFormat, err)
	}

	rule, err := rrule.StrToRRule(input.RRule)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rrule %q: %v", model.ErrFormat, input.RRule, err)
	}
	from := slots.CivilDate(input.From)
	until := slots.CivilDate(input.Until)
	rule.DTStart(from)

	occurrences := rule.Between(from, until, true)
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("%w: rrule %q has no occurrences between %s and %s",
			model.ErrFormat, input.RRule, from.Format(slots.DateLayout), until.Format(slots.DateLayout))
	}
	if len(occurrences) > maxSeriesEvents {
		return nil, fmt.Errorf("%w: rrule %q yields %d events, limit is %d",
			model.ErrFormat, input.RRule, len(occurrences), maxSeriesEvents)
	}

	s.logger.Debug("Expanding event series",
		zap.String("rrule", input.RRule),
		zap.Int("occurrences", len(occurrences)))

	// Build everything first so a bad template inserts nothing
	events := make([]*model.Event, 0, len(occurrences))
	for _, occurrence := range occurrences {
		tmpl := input.Template
		tmpl.Date = occurrence
		event, err := s.buildEvent(tmpl)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	// Insert the whole series at once so a failure leaves no partial series behind
	if err := s.store.InsertEvents(ctx, events); err != nil {
		return nil, fmt.Errorf("failed to insert %d events: %w", len(events), err)
	}

	s.logger.Info("Event series created",
		zap.String("name", input.Template.Name),
		zap.Int("count", len(events)),
		zap.String("first", events[0].Date.Format(slots.DateLayout)),
		zap.String("last", events[len(events)-1].Date.Format(slots.DateLayout)))

	return &SeriesResult{Events: events, Notification: NotificationFor(OpCreateSeries, nil)}, nil
}

// PreviewSlots partitions a window without storing anything
func PreviewSlots(start, end clock.TimeOfDay, volunteerCount int) ([]slots.Window, error) {
	return slots.Partition(slots.Window{Start: start, End: end}, volunteerCount)
}

func (s *Service) buildEvent(input CreateEventInput) (*model.Event, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Location = strings.TrimSpace(input.Location)

	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: invalid event: %v", model.ErrFormat, err)
	}
	if input.DonationTarget.IsNegative() {
		return nil, fmt.Errorf("%w: donation target must not be negative", model.ErrFormat)
	}

	window := slots.Window{Start: input.Start, End: input.End}
	increments, err := slots.Partition(window, input.VolunteerCount)
	if err != nil {
		return nil, fmt.Errorf("failed to partition event window: %w", err)
	}
	if input.VolunteerCount > 0 && len(increments) < input.VolunteerCount {
		s.logger.Warn("Window yields fewer increments than volunteers",
			zap.String("window", window.Display()),
			zap.Int("volunteers", input.VolunteerCount),
			zap.Int("increments", len(increments)))
	}

	id := uuid.New()
	return &model.Event{
		ID:               id,
		Name:             input.Name,
		Date:             slots.CivilDate(input.Date),
		Window:           window,
		Location:         input.Location,
		Description:      input.Description,
		Active:           true,
		Slots:            slots.NewEventSlots(id, increments),
		VolunteersNeeded: input.VolunteerCount,
		DonationsNeeded:  input.DonationTarget,
		CreatedAt:        s.now(),
	}, nil
}
