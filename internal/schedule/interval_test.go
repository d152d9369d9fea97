package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(h, m int) TimeOfDay { return TimeOfDay{Hour: h, Minute: m} }

func iv(sh, sm, eh, em int) Interval { return Interval{Start: tod(sh, sm), End: tod(eh, em)} }

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"same", iv(9, 30, 10, 0), iv(9, 30, 10, 0), true},
		{"partial", iv(9, 30, 10, 0), iv(9, 45, 10, 15), true},
		{"contained", iv(9, 0, 12, 0), iv(10, 0, 10, 30), true},
		{"adjacent", iv(9, 30, 10, 0), iv(10, 0, 10, 30), false},
		{"disjoint", iv(8, 0, 9, 0), iv(13, 0, 14, 0), false},
		{"minute precision", iv(9, 0, 9, 59), iv(9, 58, 10, 30), true},
		{"hour dominates minute", iv(9, 50, 10, 5), iv(10, 5, 10, 40), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.a.Overlaps(tt.b), tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestOverlaps_SelfWhenPositiveLength(t *testing.T) {
	for _, i := range []Interval{iv(0, 0, 0, 1), iv(9, 30, 10, 0), iv(12, 0, 23, 59)} {
		require.True(t, i.Valid())
		assert.True(t, i.Overlaps(i), i.String())
	}

	empty := iv(9, 30, 9, 30)
	assert.False(t, empty.Valid())
	assert.False(t, empty.Overlaps(empty))
}

func TestTimeOfDay_CompareLexicographic(t *testing.T) {
	assert.True(t, tod(9, 59).Before(tod(10, 0)))
	assert.True(t, tod(10, 0).Before(tod(10, 1)))
	assert.False(t, tod(10, 1).Before(tod(10, 1)))
	assert.Equal(t, 0, tod(7, 15).Compare(tod(7, 15)))
	assert.Equal(t, 1, tod(11, 0).Compare(tod(10, 59)))
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, tod(9, 5), got)
	assert.Equal(t, "09:05", got.String())

	for _, bad := range []string{"", "9", "24:00", "12:60", "noon"} {
		_, err := ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeOfDay, bad)
	}
}

func TestNewTimeOfDay_Bounds(t *testing.T) {
	_, err := NewTimeOfDay(23, 59)
	assert.NoError(t, err)
	_, err = NewTimeOfDay(24, 0)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
	_, err = NewTimeOfDay(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestTimeOfDayOf_UsesUTC(t *testing.T) {
	madrid := time.FixedZone("CET", 3600)
	ts := time.Date(2025, time.March, 3, 10, 30, 0, 0, madrid)
	assert.Equal(t, tod(9, 30), TimeOfDayOf(ts))
}

func TestOn(t *testing.T) {
	day := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC), tod(9, 30).On(day))
}

func TestValidity_Contains(t *testing.T) {
	from := time.Date(2025, time.March, 3, 15, 0, 0, 0, time.UTC)
	until := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	open := Validity{From: from}
	assert.False(t, open.Contains(from.AddDate(0, 0, -1)))
	assert.True(t, open.Contains(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)), "date-only comparison")
	assert.True(t, open.Contains(from.AddDate(5, 0, 0)))

	bounded := Validity{From: from, Until: &until}
	assert.True(t, bounded.Contains(until.Add(23*time.Hour)), "until is inclusive")
	assert.False(t, bounded.Contains(until.AddDate(0, 0, 1)))
}
