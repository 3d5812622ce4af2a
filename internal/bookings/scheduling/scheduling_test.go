package scheduling

import (
	"slices"
	"testing"
	"time"

	"roombook/pkg/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func res(room string, day model.Weekday, start string, hours int, who string) model.Reservation {
	return model.Reservation{Room: room, Day: day, Start: start, DurationHours: hours, Occupant: who}
}

func mustWindow(t *testing.T) Window {
	t.Helper()
	w, err := NewWindow("08:00", "16:00")
	require.NoError(t, err)
	return w
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "08:00", want: 480},
		{in: "9:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeClock(t *testing.T) {
	got, err := NormalizeClock("9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)
}

func TestInterval_Overlaps(t *testing.T) {
	nineToEleven := Interval{Start: 540, End: 660}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "abuts after", other: Interval{Start: 660, End: 720}, want: false},
		{name: "abuts before", other: Interval{Start: 480, End: 540}, want: false},
		{name: "one minute into the end", other: Interval{Start: 659, End: 719}, want: true},
		{name: "one minute into the start", other: Interval{Start: 481, End: 541}, want: true},
		{name: "inside", other: Interval{Start: 600, End: 630}, want: true},
		{name: "covering", other: Interval{Start: 480, End: 720}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nineToEleven.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(nineToEleven))
		})
	}
}

func TestNewWindow(t *testing.T) {
	w := mustWindow(t)
	assert.True(t, w.Fits(Interval{Start: 840, End: 960}))
	assert.False(t, w.Fits(Interval{Start: 900, End: 1020}))
	assert.True(t, w.Admits(480))
	assert.False(t, w.Admits(960))

	assert.Equal(t, 8, w.Hours())

	_, err := NewWindow("16:00", "08:00")
	assert.Error(t, err)
}

func TestIntervalOf(t *testing.T) {
	tests := []struct {
		name    string
		hours   int
		want    Interval
		wantErr bool
	}{
		{name: "two hours", hours: 2, want: Interval{Start: 480, End: 600}},
		{name: "whole day", hours: MaxDurationHours, want: Interval{Start: 480, End: 1920}},
		{name: "zero", hours: 0, wantErr: true},
		{name: "past one day", hours: MaxDurationHours + 1, wantErr: true},
		{name: "end would wrap", hours: 200000000000000000, wantErr: true},
		{name: "max int", hours: int(^uint(0) >> 1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntervalOf(res("4", model.Monday, "08:00", tt.hours, "Ana"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindConflict(t *testing.T) {
	ledger := []model.Reservation{
		res("4", model.Monday, "09:00", 2, "Ana"),
		res("5", model.Monday, "10:00", 1, "Luis"),
		res("4", model.Tuesday, "10:00", 1, "Eva"),
	}

	tests := []struct {
		name      string
		room      string
		day       model.Weekday
		target    Interval
		exclude   int
		wantIndex int
		wantOK    bool
	}{
		{name: "overlap same room and day", room: "4", day: model.Monday, target: Interval{600, 660}, exclude: NoExclusion, wantIndex: 0, wantOK: true},
		{name: "adjacent is free", room: "4", day: model.Monday, target: Interval{660, 720}, exclude: NoExclusion},
		{name: "other room is independent", room: "5", day: model.Monday, target: Interval{540, 600}, exclude: NoExclusion},
		{name: "other day is independent", room: "4", day: model.Wednesday, target: Interval{540, 660}, exclude: NoExclusion},
		{name: "self is excluded", room: "4", day: model.Monday, target: Interval{540, 660}, exclude: 0},
		{name: "exclusion of another entry still conflicts", room: "4", day: model.Monday, target: Interval{540, 660}, exclude: 1, wantIndex: 0, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := FindConflict(ledger, tt.room, tt.day, tt.target, tt.exclude)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIndex, c.Index)
				assert.Equal(t, "09:00-11:00", c.Interval.String())
				assert.Equal(t, "Ana", c.Reservation.Occupant)
			}
		})
	}
}

func TestFindConflict_ToleratesBadRecords(t *testing.T) {
	ledger := []model.Reservation{
		res("4", model.Monday, "garbage", 1, "X"),
		res("4", model.Monday, "09:00", 0, "Y"),
		res("4", model.Monday, "08:00", 200000000000000000, "Z"),
		res("4", model.Monday, "09:00", 1, "A"),
		res("4", model.Monday, "09:30", 1, "B"),
	}

	c, ok := FindConflict(ledger, "4", model.Monday, Interval{Start: 570, End: 600}, NoExclusion)
	require.True(t, ok)
	assert.Equal(t, 3, c.Index)

	_, ok = FindConflict(ledger, "4", model.Monday, Interval{Start: 630, End: 690}, NoExclusion)
	assert.False(t, ok)
}

func TestOccupiedAndMerge(t *testing.T) {
	ledger := []model.Reservation{
		res("4", model.Monday, "11:00", 1, "Ana"),
		res("4", model.Monday, "09:00", 2, "Ana"),
		res("4", model.Monday, "10:30", 1, "Bob"),
		res("5", model.Monday, "09:00", 1, "Zoe"),
	}

	occ := Occupied(ledger, "4", model.Monday)
	starts := make([]string, len(occ))
	for i, o := range occ {
		starts[i] = FormatClock(o.Start)
	}
	assert.Equal(t, []string{"09:00", "10:30", "11:00"}, starts)

	merged := Merge(occ)
	require.Len(t, merged, 1)
	assert.Equal(t, "09:00-12:00", merged[0].Interval.String())
	assert.Equal(t, "Ana, Bob", merged[0].Occupant)

	adjacent := Merge(Occupied([]model.Reservation{
		res("4", model.Monday, "09:00", 2, "Ana"),
		res("4", model.Monday, "11:00", 1, "Ana"),
	}, "4", model.Monday))
	assert.Len(t, adjacent, 2)
}

func TestOverlapping(t *testing.T) {
	ledger := []model.Reservation{
		res("4", model.Monday, "09:00", 2, "A"),
		res("4", model.Monday, "11:00", 1, "B"),
		res("4", model.Monday, "10:00", 1, "C"),
		res("5", model.Monday, "10:00", 1, "D"),
	}
	assert.Equal(t, [][2]int{{0, 2}}, Overlapping(ledger))
}

func TestAvailability_AnaScenario(t *testing.T) {
	ledger := []model.Reservation{
		res("4", model.Monday, "09:00", 2, "Ana"),
		res("4", model.Monday, "11:00", 1, "Ana"),
	}

	var reserved, available []string
	for s := range Availability(ledger, "4", model.Monday, mustWindow(t), 30) {
		if s.Status == Reserved {
			reserved = append(reserved, s.Time())
			assert.Equal(t, "Ana", s.Occupant)
		} else {
			available = append(available, s.Time())
		}
	}

	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, reserved)
	assert.Equal(t, []string{
		"08:00", "08:30",
		"12:00", "12:30", "13:00", "13:30", "14:00", "14:30", "15:00", "15:30",
	}, available)
}

func TestAvailability_Restartable(t *testing.T) {
	ledger := []model.Reservation{res("4", model.Friday, "15:00", 1, "Eva")}
	seq := Availability(ledger, "4", model.Friday, mustWindow(t), 60)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second iteration differs (-first +second):\n%s", diff)
	}
	require.Len(t, first, 8)
	assert.Equal(t, "15:00", first[7].Time())
	assert.Equal(t, Reserved, first[7].Status)
	assert.Equal(t, "15:00-16:00", first[7].Booking.String())
}

func TestAvailability_EarlyStopAndOverlaps(t *testing.T) {
	ledger := []model.Reservation{
		res("4", model.Monday, "08:30", 1, "First"),
		res("4", model.Monday, "08:00", 2, "Early"),
	}

	var got []Slot
	for s := range Availability(ledger, "4", model.Monday, mustWindow(t), 30) {
		got = append(got, s)
		if len(got) == 3 {
			break
		}
	}
	require.Len(t, got, 3)
	for _, s := range got {
		assert.Equal(t, "Early", s.Occupant)
	}
}

func TestResolveDate(t *testing.T) {
	loc := time.UTC
	thursday := time.Date(2024, time.May, 16, 15, 45, 0, 0, loc)

	tests := []struct {
		name  string
		day   model.Weekday
		weeks int
		want  time.Time
	}{
		{name: "same weekday is today", day: model.Thursday, want: time.Date(2024, time.May, 16, 0, 0, 0, 0, loc)},
		{name: "later this week", day: model.Friday, want: time.Date(2024, time.May, 17, 0, 0, 0, 0, loc)},
		{name: "earlier weekday rolls to next week", day: model.Monday, want: time.Date(2024, time.May, 20, 0, 0, 0, 0, loc)},
		{name: "weeks ahead", day: model.Monday, weeks: 2, want: time.Date(2024, time.June, 3, 0, 0, 0, 0, loc)},
		{name: "never before today", day: model.Thursday, weeks: -1, want: time.Date(2024, time.May, 16, 0, 0, 0, 0, loc)},
		{name: "capped far ahead", day: model.Monday, weeks: 1e14, want: time.Date(2034, time.May, 8, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDate(thursday, tt.day, tt.weeks))
		})
	}
}
