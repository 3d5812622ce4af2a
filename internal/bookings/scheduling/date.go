package scheduling

import (
	"time"

	"roombook/pkg/model"
)

const (
	daysPerWeek = 7

	// MaxWeeksAhead is the furthest a date may be resolved into the future.
	MaxWeeksAhead = 520
)

// ResolveDate returns the first date on or after now's date that falls on
// day, moved weeksAhead weeks forward. The result is midnight in now's
// location and never before today. weeksAhead is capped at MaxWeeksAhead.
func ResolveDate(now time.Time, day model.Weekday, weeksAhead int) time.Time {
	weeksAhead = min(weeksAhead, MaxWeeksAhead)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	diff := (int(day.TimeWeekday()) - int(today.Weekday()) + daysPerWeek) % daysPerWeek
	date := today.AddDate(0, 0, diff+weeksAhead*daysPerWeek)
	if date.Before(today) {
		date = date.AddDate(0, 0, daysPerWeek)
	}
	return date
}
