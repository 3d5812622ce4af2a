package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reservation is a single booked interval of a room on a weekday.
// Field order is the order in which fields are validated.
type Reservation struct {
	ID            string  `json:"id" bson:"id"`
	Room          string  `json:"room" bson:"room" validate:"required,room_key"`
	Day           Weekday `json:"day" bson:"day" validate:"required,weekday"`
	Start         string  `json:"start" bson:"start" validate:"required,clock_time,in_window,aligned"`
	DurationHours int     `json:"duration_hours" bson:"duration_hours" validate:"min=1,max=24"`
	Occupant      string  `json:"occupant" bson:"occupant" validate:"notblank,max=100"`
}

func (r Reservation) String() string {
	return fmt.Sprintf("room %s, %s %s for %dh, %s", r.Room, r.Day, r.Start, r.DurationHours, r.Occupant)
}

// BookingRequest carries raw user input for a new reservation.
type BookingRequest struct {
	Room     string
	Day      string
	Start    string
	Duration string
	Occupant string
}

const (
	FieldRoom     = "room"
	FieldDay      = "day"
	FieldStart    = "start"
	FieldDuration = "duration"
	FieldOccupant = "occupant"
)

// EditableFields lists the fields a modification may replace, in menu order.
var EditableFields = []string{FieldRoom, FieldOccupant, FieldDay, FieldStart, FieldDuration}

// FieldChange replaces exactly one field of an existing reservation.
type FieldChange struct {
	Field string
	Value string
}

// Selection points at a reservation in a displayed listing.
// Position is 1-based. ID, when set, must match the reservation at Position.
type Selection struct {
	Position int
	ID       string
}

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// ParseWeekday accepts a 1-based index ("1" is Monday) or a weekday name in any case.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(Weekdays) {
			return "", false
		}
		return Weekdays[n-1], true
	}
	for _, d := range Weekdays {
		if strings.EqualFold(s, string(d)) {
			return d, true
		}
	}
	return "", false
}

func (d Weekday) Valid() bool {
	return d.Index() > 0
}

// Index returns the 1-based position of d in the work week, or 0.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i + 1
		}
	}
	return 0
}

func (d Weekday) TimeWeekday() time.Weekday {
	return time.Weekday(d.Index())
}

func (d Weekday) Short() string {
	if len(d) < 3 {
		return string(d)
	}
	return string(d[:3])
}

// WeekdayOf maps a calendar weekday onto the work week.
func WeekdayOf(t time.Weekday) (Weekday, bool) {
	if t < time.Monday || t > time.Friday {
		return "", false
	}
	return Weekdays[t-1], true
}
