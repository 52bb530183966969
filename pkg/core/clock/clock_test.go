package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		time     TimeOfDay
		expected string
	}{
		{"midnight", TimeOfDay{0, 0}, "12:00 A.M."},
		{"early morning", TimeOfDay{0, 5}, "12:05 A.M."},
		{"morning", TimeOfDay{9, 0}, "9:00 A.M."},
		{"before noon", TimeOfDay{11, 59}, "11:59 A.M."},
		{"noon", TimeOfDay{12, 0}, "12:00 P.M."},
		{"afternoon", TimeOfDay{13, 30}, "1:30 P.M."},
		{"last minute", TimeOfDay{23, 59}, "11:59 P.M."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.time.Display())
		})
	}
}

func TestParseDisplay_RoundTripsEveryMinute(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			original := TimeOfDay{Hour: hour, Minute: minute}
			parsed, err := ParseDisplay(original.Display())
			require.NoError(t, err, "display %q", original.Display())
			assert.Equal(t, original, parsed)
		}
	}
}

func TestParseDisplay_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"9:00",
		"0:30 A.M.",
		"13:00 P.M.",
		"9:60 A.M.",
		"9:5 A.M.",
		"9:00 AM",
		"9:00 p.m.",
		"nine:00 A.M.",
		"9:00 A.M. extra",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDisplay(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestParseMilitary(t *testing.T) {
	parsed, err := ParseMilitary("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{9, 30}, parsed)

	parsed, err = ParseMilitary("17:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{17, 5}, parsed)
	assert.Equal(t, "17:05", parsed.String())

	_, err = ParseMilitary("24:00")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = ParseMilitary("7")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestMilitary_OrdersWithinDay(t *testing.T) {
	assert.Equal(t, 14.59, TimeOfDay{14, 59}.Military())
	assert.Equal(t, 9.0, TimeOfDay{9, 0}.Military())
	assert.Less(t, TimeOfDay{9, 59}.Military(), TimeOfDay{10, 0}.Military())
	assert.Less(t, TimeOfDay{0, 0}.Military(), TimeOfDay{12, 0}.Military())
}
