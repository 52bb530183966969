package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Duration is a signed span of hours and minutes. Minutes are always kept in
// [0,59]; a negative span borrows from Hours (-30m is {Hours: -1, Minutes: 30}).
type Duration struct {
	Hours   int
	Minutes int
}

// DurationOf normalises a number of minutes into a Duration
func DurationOf(minutes int) Duration {
	hours := minutes / minutesPerHour
	rem := minutes % minutesPerHour
	if rem < 0 {
		hours--
		rem += minutesPerHour
	}
	return Duration{Hours: hours, Minutes: rem}
}

// TotalMinutes returns the span in minutes
func (d Duration) TotalMinutes() int {
	return d.Hours*minutesPerHour + d.Minutes
}

// IsNegative reports whether the span is below zero
func (d Duration) IsNegative() bool {
	return d.TotalMinutes() < 0
}

// String returns "H:MM", with a leading "-" for negative spans ("-0:30")
func (d Duration) String() string {
	total := d.TotalMinutes()
	if total < 0 {
		return "-" + DurationOf(-total).String()
	}
	n := DurationOf(total)
	return fmt.Sprintf("%d:%02d", n.Hours, n.Minutes)
}

// ParseDuration parses the stored "H:MM" form, optionally prefixed with "-"
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")

	hourStr, minuteStr, ok := strings.Cut(body, ":")
	if !ok || hourStr == "" || minuteStr == "" || len(minuteStr) > 2 {
		return Duration{}, fmt.Errorf("%w: duration %q must look like H:MM", ErrFormat, s)
	}
	hours, err := strconv.Atoi(hourStr)
	if err != nil || hours < 0 {
		return Duration{}, fmt.Errorf("%w: duration %q has invalid hours", ErrFormat, s)
	}
	minutes, err := strconv.Atoi(minuteStr)
	if err != nil || minutes < 0 || minutes > 59 {
		return Duration{}, fmt.Errorf("%w: duration %q has invalid minutes", ErrFormat, s)
	}

	total := hours*minutesPerHour + minutes
	if negative {
		total = -total
	}
	return DurationOf(total), nil
}

// Between returns end - start. When end is earlier than start the span is
// taken to cross midnight and 24 hours are added, so the result is never negative.
func Between(start, end TimeOfDay) Duration {
	diff := end.Minutes() - start.Minutes()
	if diff < 0 {
		diff += minutesPerDay
	}
	return DurationOf(diff)
}

// Add returns a + b with minute carry
func Add(a, b Duration) Duration {
	return DurationOf(a.TotalMinutes() + b.TotalMinutes())
}

// Sub returns a - b with minute borrow. The result is not clamped at zero.
func Sub(a, b Duration) Duration {
	return DurationOf(a.TotalMinutes() - b.TotalMinutes())
}
