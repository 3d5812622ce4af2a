package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/events"
	"roombook/internal/bookings/ledger"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/scheduling"
	"roombook/internal/bookings/validator"
	"roombook/pkg/clock"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/model"

	"github.com/google/uuid"
)

// ConfirmFunc is shown the reservation about to be cancelled and reports
// whether to go ahead.
type ConfirmFunc func(model.Reservation) bool

type BookingService interface {
	Book(ctx context.Context, req model.BookingRequest) (model.Reservation, error)
	Modify(ctx context.Context, sel model.Selection, change model.FieldChange) (model.Reservation, error)
	Cancel(ctx context.Context, sel model.Selection, confirm ConfirmFunc) (model.Reservation, error)

	Entries() []ledger.Entry
	ByOccupant(name string) []ledger.Entry
	Occupants() []string
	Availability(room, day string) (iter.Seq[scheduling.Slot], error)
	Reserved(room string, day model.Weekday) []scheduling.Occupancy
	NextDate(day model.Weekday, weeksAhead int) time.Time
	Audit() []Finding

	Rooms() model.RoomCatalog
	Window() scheduling.Window
	SlotStep() int
}

type bookingService struct {
	repo      repository.ReservationRepository
	ledger    *ledger.Ledger
	validator *validator.ReservationValidator
	publisher events.Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewBookingService(
	repo repository.ReservationRepository,
	l *ledger.Ledger,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      repo,
		ledger:    l,
		validator: validator,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *bookingService) Book(ctx context.Context, req model.BookingRequest) (model.Reservation, error) {
	r, err := s.validator.ParseRequest(req)
	if err != nil {
		return model.Reservation{}, s.invalid("Booking validation failed", err)
	}

	if err := s.checkConflict(r, scheduling.NoExclusion); err != nil {
		return model.Reservation{}, err
	}

	r.ID = uuid.NewString()
	next := append(s.ledger.All(), r)
	if err := s.commit(ctx, next); err != nil {
		return model.Reservation{}, err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", r.ID,
		"room", r.Room,
		"day", r.Day,
		"start", r.Start,
		"duration_hours", r.DurationHours,
	)
	s.publish(ctx, events.Event{Type: events.ReservationCreated, Reservation: r})
	return r, nil
}

func (s *bookingService) Modify(ctx context.Context, sel model.Selection, change model.FieldChange) (model.Reservation, error) {
	original, err := s.selected(sel)
	if err != nil {
		return model.Reservation{}, err
	}

	candidate := original
	if err := s.validator.ParseField(&candidate, change.Field, change.Value); err != nil {
		return model.Reservation{}, s.invalid("Reservation update validation failed", err)
	}
	if err := s.validator.Validate(candidate); err != nil {
		return model.Reservation{}, s.invalid("Reservation update validation failed", err)
	}

	index := sel.Position - 1
	if err := s.checkConflict(candidate, index); err != nil {
		return model.Reservation{}, err
	}

	next := s.ledger.All()
	next[index] = candidate
	if err := s.commit(ctx, next); err != nil {
		return model.Reservation{}, err
	}

	s.cfg.Log.Info("Reservation updated successfully",
		"id", candidate.ID,
		"field", change.Field,
		"room", candidate.Room,
		"day", candidate.Day,
		"start", candidate.Start,
		"duration_hours", candidate.DurationHours,
	)
	s.publish(ctx, events.Event{Type: events.ReservationModified, Reservation: candidate, Previous: &original})
	return candidate, nil
}

func (s *bookingService) Cancel(ctx context.Context, sel model.Selection, confirm ConfirmFunc) (model.Reservation, error) {
	r, err := s.selected(sel)
	if err != nil {
		return model.Reservation{}, err
	}

	if confirm != nil && !confirm(r) {
		s.cfg.Log.Debug("Reservation cancellation declined", "id", r.ID)
		return r, apperrors.Cancelled("Cancellation declined, nothing was changed", bookingserrors.ErrCancelled)
	}

	next := slices.Delete(s.ledger.All(), sel.Position-1, sel.Position)
	if err := s.commit(ctx, next); err != nil {
		return model.Reservation{}, err
	}

	s.cfg.Log.Info("Reservation cancelled successfully", "id", r.ID, "room", r.Room, "day", r.Day, "start", r.Start)
	s.publish(ctx, events.Event{Type: events.ReservationCancelled, Reservation: r})
	return r, nil
}

func (s *bookingService) Entries() []ledger.Entry {
	return s.ledger.Entries()
}

func (s *bookingService) ByOccupant(name string) []ledger.Entry {
	return s.ledger.ByOccupant(name)
}

func (s *bookingService) Occupants() []string {
	return s.ledger.Occupants()
}

// Availability validates room and day the way Book does and returns the
// slot sequence of that room and day.
func (s *bookingService) Availability(room, day string) (iter.Seq[scheduling.Slot], error) {
	var r model.Reservation
	if err := s.validator.ParseField(&r, model.FieldRoom, room); err != nil {
		return nil, s.invalid("Availability query validation failed", err)
	}
	if err := s.validator.ParseField(&r, model.FieldDay, day); err != nil {
		return nil, s.invalid("Availability query validation failed", err)
	}
	return s.ledger.Availability(r.Room, r.Day, s.validator.Window(), s.SlotStep()), nil
}

// Reserved returns the booked ranges of room on day with overlapping
// bookings merged.
func (s *bookingService) Reserved(room string, day model.Weekday) []scheduling.Occupancy {
	return scheduling.Merge(s.ledger.Occupied(room, day))
}

func (s *bookingService) NextDate(day model.Weekday, weeksAhead int) time.Time {
	return scheduling.ResolveDate(s.clock.Now(), day, weeksAhead)
}

func (s *bookingService) Rooms() model.RoomCatalog {
	return s.validator.Rooms()
}

func (s *bookingService) Window() scheduling.Window {
	return s.validator.Window()
}

func (s *bookingService) SlotStep() int {
	return s.cfg.Schedule.SlotStepMinutes
}

// --- Helpers ---

// selected resolves a selection against the current ledger. The ID guards
// against the listing having changed since it was shown.
func (s *bookingService) selected(sel model.Selection) (model.Reservation, error) {
	r, ok := s.ledger.At(sel.Position)
	if !ok {
		return model.Reservation{}, apperrors.NotFound(fmt.Sprintf("Reservation %d", sel.Position), bookingserrors.ErrNotFound).
			WithDetails(map[string]any{"position": sel.Position})
	}
	if sel.ID != "" && sel.ID != r.ID {
		s.cfg.Log.Warn("Stale reservation selection", "position", sel.Position, "expected_id", sel.ID, "found_id", r.ID)
		return model.Reservation{}, apperrors.NotFoundWithID("Reservation", sel.ID, bookingserrors.ErrStaleSelection).
			WithDetails(map[string]any{"position": sel.Position})
	}
	return r, nil
}

func (s *bookingService) checkConflict(r model.Reservation, exclude int) error {
	target, err := scheduling.IntervalOf(r)
	if err != nil {
		return apperrors.Internal("Failed to compute reservation interval", err)
	}

	c, found := s.ledger.FindConflict(r.Room, r.Day, target, exclude)
	if !found {
		return nil
	}

	s.cfg.Log.Warn("Reservation conflicts with existing reservation",
		"room", r.Room,
		"day", r.Day,
		"requested", target.String(),
		"existing_id", c.Reservation.ID,
		"existing", c.Interval.String(),
	)
	return apperrors.SchedulingConflict(
		fmt.Sprintf("Room %s is already booked on %s from %s to %s by %s",
			r.Room,
			r.Day,
			scheduling.FormatClock(c.Interval.Start),
			scheduling.FormatClock(c.Interval.End),
			c.Reservation.Occupant,
		),
		bookingserrors.ErrTimeConflict,
	).WithDetails(map[string]any{
		"existing_id": c.Reservation.ID,
		"existing":    c.Interval.String(),
		"position":    c.Index + 1,
		"requested":   target.String(),
		"room":        r.Room,
		"day":         string(r.Day),
		"occupied_by": c.Reservation.Occupant,
	})
}

// commit persists next and only then makes it the ledger state.
func (s *bookingService) commit(ctx context.Context, next []model.Reservation) error {
	if err := s.repo.Save(ctx, next); err != nil {
		s.cfg.Log.Error("Failed to save reservations", "error", err)
		return apperrors.Internal("Failed to save reservations", err)
	}
	s.ledger.Replace(next)
	return nil
}

func (s *bookingService) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = s.clock.Now()
	if s.cfg.Kafka.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Kafka.PublishTimeout)
		defer cancel()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"type", event.Type,
			"id", event.Reservation.ID,
			"error", err,
		)
	}
}

func (s *bookingService) invalid(logMsg string, err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return apperrors.Internal("Failed to validate reservation", err)
	}
	first := validationErrs.First()
	s.cfg.Log.Warn(logMsg, "field", first.Field, "error", first.Message)
	return apperrors.InvalidField(first.Field, first.Message, fmt.Errorf("%w: %w", bookingserrors.ErrInvalidField, validationErrs))
}
