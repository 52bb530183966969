package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormat is returned for any malformed clock or duration string
var ErrFormat = errors.New("malformed input")

const (
	modifierAM = "A.M."
	modifierPM = "P.M."

	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// TimeOfDay is a wall-clock time within a single day
type TimeOfDay struct {
	Hour   int
	Minute int
}

// New returns a validated TimeOfDay
func New(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: time %d:%02d out of range", ErrFormat, hour, minute)
	}
	return t, nil
}

// Valid reports whether the hour is in [0,23] and the minute in [0,59]
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// Minutes returns the number of minutes since midnight
func (t TimeOfDay) Minutes() int {
	return t.Hour*minutesPerHour + t.Minute
}

// Before reports whether t is strictly earlier than other
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// String returns the 24-hour wire form, e.g. "9:05" or "14:30"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%d:%02d", t.Hour, t.Minute)
}

// Display returns the 12-hour form used in slot tokens, e.g. "2:30 P.M."
func (t TimeOfDay) Display() string {
	hour := t.Hour
	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}

	modifier := modifierAM
	if t.Hour >= 12 {
		modifier = modifierPM
	}

	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, modifier)
}

// Military returns hour + minute/100 (e.g. 14:59 -> 14.59).
// The value orders times within a day but is not a fraction of an hour,
// so it must only be used for comparisons.
func (t TimeOfDay) Military() float64 {
	return float64(t.Hour) + float64(t.Minute)/100
}

// ParseDisplay parses the 12-hour form "h:MM A.M." / "h:MM P.M."
func ParseDisplay(s string) (TimeOfDay, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: display time %q must look like h:MM A.M.", ErrFormat, s)
	}

	hour, minute, err := splitClock(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("display time %q: %w", s, err)
	}
	if hour < 1 || hour > 12 {
		return TimeOfDay{}, fmt.Errorf("%w: display hour %d outside 1-12", ErrFormat, hour)
	}

	// 12 maps to 0 before the modifier is applied
	if hour == 12 {
		hour = 0
	}

	switch parts[1] {
	case modifierAM:
	case modifierPM:
		hour += 12
	default:
		return TimeOfDay{}, fmt.Errorf("%w: unrecognised modifier %q", ErrFormat, parts[1])
	}

	return New(hour, minute)
}

// ParseMilitary parses the 24-hour form "H:MM" (leading zero on the hour optional)
func ParseMilitary(s string) (TimeOfDay, error) {
	hour, minute, err := splitClock(strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("time %q: %w", s, err)
	}
	return New(hour, minute)
}

// splitClock parses "H:MM" into its components. Minutes must be two digits.
func splitClock(s string) (int, int, error) {
	hourStr, minuteStr, ok := strings.Cut(s, ":")
	if !ok || hourStr == "" || len(hourStr) > 2 || len(minuteStr) != 2 {
		return 0, 0, fmt.Errorf("%w: expected H:MM", ErrFormat)
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 {
		return 0, 0, fmt.Errorf("%w: invalid hour %q", ErrFormat, hourStr)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: invalid minute %q", ErrFormat, minuteStr)
	}

	return hour, minute, nil
}
