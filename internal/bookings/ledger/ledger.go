package ledger

import (
	"context"
	"iter"
	"slices"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/scheduling"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	cr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Ledger is the ordered set of reservations of one session. Mutations never
// edit the current slice in place; they build a new one and Replace it, so
// slices handed out earlier stay valid.
type Ledger struct {
	reservations []model.Reservation
}

// Entry is a reservation with its 1-based position in the full listing.
type Entry struct {
	Position    int
	Reservation model.Reservation
}

func New(reservations []model.Reservation) *Ledger {
	return &Ledger{reservations: slices.Clone(reservations)}
}

// Load reads the repository into a new ledger. Malformed store content
// yields an empty ledger and a warning. Records without an ID get one.
func Load(ctx context.Context, repo repository.ReservationRepository, log *logger.Logger) (*Ledger, error) {
	rs, err := repo.Load(ctx)
	if err != nil {
		if cr.Is(err, bookingserrors.ErrCorruptStore) {
			log.Warn("Reservation store is malformed, starting with an empty ledger", "error", err)
			return New(nil), nil
		}
		return nil, err
	}

	assigned := 0
	for i := range rs {
		if rs[i].ID == "" {
			rs[i].ID = uuid.NewString()
			assigned++
		}
	}
	if assigned > 0 {
		log.Info("Assigned identifiers to stored reservations", "count", assigned)
	}

	log.Debug("Ledger loaded", "count", len(rs))
	return New(rs), nil
}

func (l *Ledger) Len() int {
	return len(l.reservations)
}

// All returns a copy of the reservations in ledger order.
func (l *Ledger) All() []model.Reservation {
	return slices.Clone(l.reservations)
}

// Entries returns every reservation with its position.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, len(l.reservations))
	for i, r := range l.reservations {
		entries[i] = Entry{Position: i + 1, Reservation: r}
	}
	return entries
}

// At returns the reservation at a 1-based position.
func (l *Ledger) At(position int) (model.Reservation, bool) {
	if position < 1 || position > len(l.reservations) {
		return model.Reservation{}, false
	}
	return l.reservations[position-1], true
}

// Replace swaps in the next state of the ledger.
func (l *Ledger) Replace(next []model.Reservation) {
	l.reservations = next
}

func (l *Ledger) FindConflict(room string, day model.Weekday, target scheduling.Interval, exclude int) (scheduling.Conflict, bool) {
	return scheduling.FindConflict(l.reservations, room, day, target, exclude)
}

func (l *Ledger) Occupied(room string, day model.Weekday) []scheduling.Occupancy {
	return scheduling.Occupied(l.reservations, room, day)
}

// Availability yields the slots of room on day. The ledger state is read
// when the sequence is iterated, not when it is created.
func (l *Ledger) Availability(room string, day model.Weekday, w scheduling.Window, step int) iter.Seq[scheduling.Slot] {
	return func(yield func(scheduling.Slot) bool) {
		for s := range scheduling.Availability(l.reservations, room, day, w, step) {
			if !yield(s) {
				return
			}
		}
	}
}

// Occupants returns the distinct occupant names, sorted.
func (l *Ledger) Occupants() []string {
	var names []string
	for _, r := range l.reservations {
		if !slices.Contains(names, r.Occupant) {
			names = append(names, r.Occupant)
		}
	}
	slices.Sort(names)
	return names
}

// ByOccupant returns the entries booked under exactly name.
func (l *Ledger) ByOccupant(name string) []Entry {
	var entries []Entry
	for i, r := range l.reservations {
		if r.Occupant == name {
			entries = append(entries, Entry{Position: i + 1, Reservation: r})
		}
	}
	return entries
}
