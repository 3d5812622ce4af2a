package repository

import (
	"maps"
	"slices"
	"strings"
	"time"

	"roombook/internal/bookings/scheduling"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

const legacyDateLayout = "2006-01-02"

// keyedStore is the room -> date -> "HH:MM" -> occupant layout, where every
// entry is a one-hour booking.
type keyedStore map[string]map[string]map[string]string

// reservations flattens the keyed layout in room, date and time order.
// Dates that do not parse or fall on a weekend are skipped.
func (k keyedStore) reservations(rooms model.RoomCatalog, log *logger.Logger) []model.Reservation {
	var out []model.Reservation
	for _, roomName := range slices.Sorted(maps.Keys(k)) {
		roomKey := roomName
		if room, ok := rooms.Resolve(roomName); ok {
			roomKey = room.Key
		} else {
			log.Warn("Keyed store names an unknown room", "room", roomName)
		}

		dates := k[roomName]
		for _, date := range slices.Sorted(maps.Keys(dates)) {
			t, err := time.Parse(legacyDateLayout, date)
			if err != nil {
				log.Warn("Skipping keyed entries with an invalid date", "room", roomName, "date", date)
				continue
			}
			day, ok := model.WeekdayOf(t.Weekday())
			if !ok {
				log.Warn("Skipping keyed entries on a weekend", "room", roomName, "date", date)
				continue
			}

			slots := dates[date]
			keys := slices.Collect(maps.Keys(slots))
			slices.SortFunc(keys, compareClock)
			for _, key := range keys {
				start := key
				if normalized, err := scheduling.NormalizeClock(key); err == nil {
					start = normalized
				}
				out = append(out, model.Reservation{
					Room:          roomKey,
					Day:           day,
					Start:         start,
					DurationHours: 1,
					Occupant:      slots[key],
				})
			}
		}
	}
	return out
}

// compareClock orders times chronologically, falling back to text order for
// keys that do not parse.
func compareClock(a, b string) int {
	ma, errA := scheduling.ParseClock(a)
	mb, errB := scheduling.ParseClock(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ma - mb
}
