package slots

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
)

// Window is a time range within a single day
type Window struct {
	Start clock.TimeOfDay
	End   clock.TimeOfDay
}

// Validate checks both ends are real times and that Start is strictly before End
func (w Window) Validate() error {
	if !w.Start.Valid() || !w.End.Valid() {
		return fmt.Errorf("%w: window %s - %s out of range", clock.ErrFormat, w.Start, w.End)
	}
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w: window start %s must be before end %s", clock.ErrFormat, w.Start, w.End)
	}
	return nil
}

// Duration returns the length of the window
func (w Window) Duration() clock.Duration {
	return clock.Between(w.Start, w.End)
}

// Display returns the range as it appears in a slot token, e.g. "9:00 A.M. - 10:00 A.M."
func (w Window) Display() string {
	return w.Start.Display() + " - " + w.End.Display()
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Partition splits the window into consecutive increments, one per volunteer.
//
// The increment length is the window length divided by volunteerCount and may
// be fractional. The cursor advances by that exact amount and each boundary is
// truncated to the minute, so the k-th increment ends at
// start + floor(k*total/volunteerCount). Generation stops as soon as the cursor
// reaches the hour of the window end or volunteerCount increments have been
// emitted, whichever comes first. As a result an event that ends within the
// same hour as its last increment start yields fewer increments than
// volunteers.
//
// A volunteerCount of zero yields the whole window as a single increment.
func Partition(w Window, volunteerCount int) ([]Window, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if volunteerCount < 0 {
		return nil, fmt.Errorf("%w: volunteer count must not be negative, got %d", clock.ErrFormat, volunteerCount)
	}
	if volunteerCount == 0 {
		return []Window{w}, nil
	}

	// Below one minute per volunteer some boundaries would coincide
	total := w.Duration().TotalMinutes()
	if total < volunteerCount {
		return nil, fmt.Errorf("%w: window %s is too short for %d volunteers", clock.ErrFormat, w, volunteerCount)
	}

	start := w.Start.Minutes()
	previous := w.Start
	increments := make([]Window, 0, volunteerCount)

	for step := 1; ; step++ {
		cursor := start + step*total/volunteerCount
		current := clock.TimeOfDay{Hour: cursor / 60, Minute: cursor % 60}
		increments = append(increments, Window{Start: previous, End: current})
		previous = current

		if current.Hour == w.End.Hour || step >= volunteerCount {
			break
		}
	}

	return increments, nil
}

// NewEventSlots wraps each increment in an unclaimed token for the given event
func NewEventSlots(eventID uuid.UUID, increments []Window) []Token {
	tokens := make([]Token, 0, len(increments))
	for _, inc := range increments {
		tokens = append(tokens, Token{EventID: eventID, Window: inc})
	}
	return tokens
}
