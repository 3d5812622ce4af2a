package scheduling

import (
	"fmt"
	"iter"

	"roombook/pkg/model"
)

type SlotStatus int

const (
	Available SlotStatus = iota
	Reserved
)

func (s SlotStatus) String() string {
	if s == Reserved {
		return "reserved"
	}
	return "available"
}

func (s SlotStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SlotStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "available":
		*s = Available
	case "reserved":
		*s = Reserved
	default:
		return fmt.Errorf("unknown slot status %q", text)
	}
	return nil
}

// Slot is one point of the availability grid.
type Slot struct {
	At       int
	Status   SlotStatus
	Occupant string
	Booking  Interval
}

func (s Slot) Time() string {
	return FormatClock(s.At)
}

// Availability yields the points open, open+step, ... before close, each
// marked available or reserved. The occupied intervals are computed when
// the sequence is iterated, so every iteration reflects rs at that time.
func Availability(rs []model.Reservation, room string, day model.Weekday, w Window, step int) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		if step <= 0 {
			return
		}
		occupied := Occupied(rs, room, day)
		for at := w.Open; at < w.Close; at += step {
			slot := Slot{At: at, Status: Available}
			for _, o := range occupied {
				if o.Contains(at) {
					slot.Status = Reserved
					slot.Occupant = o.Occupant
					slot.Booking = o.Interval
					break
				}
			}
			if !yield(slot) {
				return
			}
		}
	}
}
