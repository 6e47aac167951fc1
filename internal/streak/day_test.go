package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name    string
		zone    string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to UTC", zone: "", want: "UTC"},
		{name: "UTC", zone: "UTC", want: "UTC"},
		{name: "IANA zone", zone: "America/New_York", want: "America/New_York"},
		{name: "surrounding spaces", zone: " Europe/Berlin ", want: "Europe/Berlin"},
		{name: "garbage", zone: "Mars/Olympus_Mons", wantErr: true},
		{name: "host local zone", zone: "Local", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.zone)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimezone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.String())
		})
	}
}

func TestDayIn(t *testing.T) {
	instant := time.Date(2024, 6, 15, 2, 30, 0, 0, time.UTC)

	tests := []struct {
		zone string
		want Day
	}{
		{zone: "UTC", want: Day{2024, time.June, 15}},
		{zone: "America/New_York", want: Day{2024, time.June, 14}},
		{zone: "Asia/Tokyo", want: Day{2024, time.June, 15}},
		{zone: "Pacific/Honolulu", want: Day{2024, time.June, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			assert.Equal(t, tt.want, DayIn(instant, mustLoad(t, tt.zone)))
		})
	}
}

func TestDaySub(t *testing.T) {
	tests := []struct {
		name string
		a, b Day
		want int
	}{
		{name: "same day", a: Day{2024, 3, 10}, b: Day{2024, 3, 10}, want: 0},
		{name: "consecutive", a: Day{2024, 3, 10}, b: Day{2024, 3, 9}, want: 1},
		{name: "negative", a: Day{2024, 3, 9}, b: Day{2024, 3, 12}, want: -3},
		{name: "leap day", a: Day{2024, 3, 1}, b: Day{2024, 2, 28}, want: 2},
		{name: "year boundary", a: Day{2025, 1, 1}, b: Day{2024, 12, 31}, want: 1},
		{name: "whole year", a: Day{2025, 1, 1}, b: Day{2024, 1, 1}, want: 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Sub(tt.b))
		})
	}
}

func TestDayAddDays(t *testing.T) {
	d := Day{2024, time.March, 1}
	assert.Equal(t, Day{2024, time.February, 29}, d.AddDays(-1))
	assert.Equal(t, Day{2024, time.March, 31}, d.AddDays(30))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, Day{2024, time.March, 1}, d.AddDays(1).AddDays(-1))
	assert.Equal(t, "2024-03-01", d.String())
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-11-03")
	require.NoError(t, err)
	assert.Equal(t, Day{2024, time.November, 3}, d)

	_, err = ParseDay("03/11/2024")
	assert.Error(t, err)
}

func TestStorageDateRoundTripsAcrossDST(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// 2024-03-10 is 23 hours long in New York, 2024-11-03 is 25 hours long.
	days := []Day{
		{2024, time.March, 9}, {2024, time.March, 10}, {2024, time.March, 11},
		{2024, time.November, 2}, {2024, time.November, 3}, {2024, time.November, 4},
	}

	for _, d := range days {
		t.Run(d.String(), func(t *testing.T) {
			stored := StorageDate(d.Midnight(ny).Add(13*time.Hour), ny)
			assert.Equal(t, time.UTC, stored.Location())
			assert.Equal(t, d, DayIn(stored, ny))
			assert.Equal(t, 0, stored.In(ny).Hour())
		})
	}

	assert.Equal(t, 1, Day{2024, time.March, 10}.Sub(Day{2024, time.March, 9}))
	assert.Equal(t, 1, DayIn(StorageDate(time.Date(2024, 11, 4, 12, 0, 0, 0, ny), ny), ny).
		Sub(DayIn(StorageDate(time.Date(2024, 11, 3, 12, 0, 0, 0, ny), ny), ny)))
}

func TestMidnightWhenSkippedByDST(t *testing.T) {
	// Chile moves its clocks forward at local midnight.
	santiago := mustLoad(t, "America/Santiago")
	d := Day{2024, time.September, 8}

	m := d.Midnight(santiago)
	assert.Equal(t, d, DayIn(m, santiago))
	assert.LessOrEqual(t, m.In(santiago).Hour(), 1)
}

func TestFormatInZone(t *testing.T) {
	instant := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-12-31", FormatInZone(instant, mustLoad(t, "America/Los_Angeles")))
	assert.Equal(t, "2024-01-01", FormatInZone(instant, time.UTC))
	assert.Equal(t, Day{2024, 1, 1}, Today(instant, time.UTC))
}
