package scheduling

import (
	"fmt"
	"time"

	"roombook/pkg/model"
)

const (
	clockLayout    = "15:04"
	minutesPerHour = 60

	// MaxDurationHours bounds a stored duration so its end stays within
	// the same day.
	MaxDurationHours = 24
)

// Interval is a half-open range [Start, End) in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

func (i Interval) Contains(minute int) bool {
	return i.Start <= minute && minute < i.End
}

func (i Interval) String() string {
	return FormatClock(i.Start) + "-" + FormatClock(i.End)
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, use HH:MM", s)
	}
	return t.Hour()*minutesPerHour + t.Minute(), nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/minutesPerHour, minute%minutesPerHour)
}

// NormalizeClock rewrites a parseable time as zero-padded "HH:MM".
func NormalizeClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// IntervalOf returns the interval a reservation occupies.
func IntervalOf(r model.Reservation) (Interval, error) {
	start, err := ParseClock(r.Start)
	if err != nil {
		return Interval{}, err
	}
	if r.DurationHours < 1 || r.DurationHours > MaxDurationHours {
		return Interval{}, fmt.Errorf("invalid duration %d", r.DurationHours)
	}
	return Interval{Start: start, End: start + r.DurationHours*minutesPerHour}, nil
}

// Window is the daily operating window [Open, Close).
type Window struct {
	Open  int
	Close int
}

func NewWindow(open, close string) (Window, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseClock(close)
	if err != nil {
		return Window{}, err
	}
	if o >= c {
		return Window{}, fmt.Errorf("window start %s must be before end %s", open, close)
	}
	return Window{Open: o, Close: c}, nil
}

func (w Window) Fits(i Interval) bool {
	return i.Start >= w.Open && i.End <= w.Close
}

// Hours is the longest whole-hour duration the window can hold.
func (w Window) Hours() int {
	return (w.Close - w.Open) / minutesPerHour
}

// Admits reports whether a booking may start at minute.
func (w Window) Admits(minute int) bool {
	return minute >= w.Open && minute < w.Close
}

func (w Window) String() string {
	return Interval{Start: w.Open, End: w.Close}.String()
}
