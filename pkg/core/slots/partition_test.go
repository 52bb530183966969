package slots

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
)

func at(hour, minute int) clock.TimeOfDay {
	return clock.TimeOfDay{Hour: hour, Minute: minute}
}

func TestPartition_MorningThreeVolunteers(t *testing.T) {
	increments, err := Partition(Window{Start: at(9, 0), End: at(12, 0)}, 3)
	require.NoError(t, err)
	require.Len(t, increments, 3)

	expected := []string{
		"9:00 A.M. - 10:00 A.M.",
		"10:00 A.M. - 11:00 A.M.",
		"11:00 A.M. - 12:00 P.M.",
	}
	for i, inc := range increments {
		assert.Equal(t, expected[i], inc.Display())
	}
}

func TestPartition_ZeroVolunteersIsWholeWindow(t *testing.T) {
	w := Window{Start: at(13, 15), End: at(17, 45)}
	increments, err := Partition(w, 0)
	require.NoError(t, err)
	assert.Equal(t, []Window{w}, increments)
}

func TestPartition_TruncatesEachBoundary(t *testing.T) {
	// 100 minutes over 3 volunteers is 33.3 minutes each
	increments, err := Partition(Window{Start: at(9, 0), End: at(10, 40)}, 3)
	require.NoError(t, err)
	require.Len(t, increments, 2)

	// the cursor reaches the end hour after two steps and generation stops
	assert.Equal(t, Window{Start: at(9, 0), End: at(9, 33)}, increments[0])
	assert.Equal(t, Window{Start: at(9, 33), End: at(10, 6)}, increments[1])
}

func TestPartition_StopsAtCount(t *testing.T) {
	// 60 minutes over 7 volunteers is 8.57 minutes each
	increments, err := Partition(Window{Start: at(9, 0), End: at(10, 0)}, 7)
	require.NoError(t, err)
	require.Len(t, increments, 7)

	ends := make([]clock.TimeOfDay, 0, len(increments))
	for _, inc := range increments {
		ends = append(ends, inc.End)
	}
	assert.Equal(t, []clock.TimeOfDay{
		at(9, 8), at(9, 17), at(9, 25), at(9, 34), at(9, 42), at(9, 51), at(10, 0),
	}, ends)
}

func TestPartition_RemainderIsSpreadAcrossIncrements(t *testing.T) {
	// 300 minutes over 7 volunteers: increments of 42 or 43 minutes, none left over
	increments, err := Partition(Window{Start: at(9, 0), End: at(14, 0)}, 7)
	require.NoError(t, err)
	require.Len(t, increments, 7)

	assert.Equal(t, "1:17 P.M. - 2:00 P.M.", increments[6].Display())
	for i, inc := range increments {
		length := inc.Duration().TotalMinutes()
		assert.True(t, length == 42 || length == 43, "increment %d is %d minutes", i, length)
	}
}

func TestPartition_OneMinuteEach(t *testing.T) {
	increments, err := Partition(Window{Start: at(9, 0), End: at(9, 5)}, 5)
	require.NoError(t, err)
	// the cursor is already in the end hour, so only the first increment is emitted
	assert.Equal(t, []Window{{Start: at(9, 0), End: at(9, 1)}}, increments)
}

func TestPartition_SameHourStopsAfterFirstIncrement(t *testing.T) {
	increments, err := Partition(Window{Start: at(9, 0), End: at(9, 30)}, 3)
	require.NoError(t, err)
	assert.Equal(t, []Window{{Start: at(9, 0), End: at(9, 10)}}, increments)
}

func TestPartition_Errors(t *testing.T) {
	tests := []struct {
		name   string
		window Window
		count  int
	}{
		{"negative count", Window{Start: at(9, 0), End: at(10, 0)}, -1},
		{"start after end", Window{Start: at(11, 0), End: at(10, 0)}, 2},
		{"empty window", Window{Start: at(10, 0), End: at(10, 0)}, 1},
		{"invalid time", Window{Start: at(9, 0), End: at(25, 0)}, 1},
		{"more volunteers than minutes", Window{Start: at(9, 0), End: at(9, 5)}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Partition(tt.window, tt.count)
			require.Error(t, err)
			assert.ErrorIs(t, err, clock.ErrFormat)
		})
	}
}

func TestPartition_IncrementsAreContiguous(t *testing.T) {
	for startHour := 0; startHour < 23; startHour++ {
		for endHour := startHour + 1; endHour <= 23; endHour++ {
			for count := 1; count <= 12; count++ {
				w := Window{Start: at(startHour, 0), End: at(endHour, 0)}
				t.Run(fmt.Sprintf("%s/%d", w, count), func(t *testing.T) {
					increments, err := Partition(w, count)
					require.NoError(t, err)
					require.NotEmpty(t, increments)
					assert.LessOrEqual(t, len(increments), count)

					assert.Equal(t, w.Start, increments[0].Start)
					for i, inc := range increments {
						assert.True(t, inc.Start.Before(inc.End), "increment %d is empty", i)
						if i > 0 {
							assert.Equal(t, increments[i-1].End, inc.Start, "gap before increment %d", i)
						}
					}

					// whole-hour windows always finish exactly on the end
					assert.Equal(t, w.End, increments[len(increments)-1].End)
				})
			}
		}
	}
}

func TestNewEventSlots(t *testing.T) {
	id := uuid.New()
	increments := []Window{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(10, 0), End: at(11, 0)},
	}

	tokens := NewEventSlots(id, increments)
	require.Len(t, tokens, 2)
	for i, tok := range tokens {
		assert.Equal(t, id, tok.EventID)
		assert.False(t, tok.Claimed())
		assert.Equal(t, increments[i], tok.Window)
	}
	assert.Equal(t, id.String()+" 9:00 A.M. - 10:00 A.M.", tokens[0].String())
}
