package service

import (
	"errors"
	"fmt"

	"roombook/internal/bookings/scheduling"
	"roombook/internal/bookings/validator"
)

// Finding is a stored reservation that breaks a booking rule. Such records
// are kept as they are; they only block new conflicting writes.
type Finding struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("#%d %s: %s", f.Position, f.Field, f.Message)
}

// Audit checks every stored reservation against the current rules and
// reports overlapping pairs. It never changes the ledger.
func (s *bookingService) Audit() []Finding {
	var findings []Finding
	entries := s.ledger.Entries()

	for _, e := range entries {
		err := s.validator.Validate(e.Reservation)
		if err == nil {
			continue
		}
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			findings = append(findings, Finding{Position: e.Position, ID: e.Reservation.ID, Message: err.Error()})
			continue
		}
		for _, ve := range validationErrs {
			findings = append(findings, Finding{
				Position: e.Position,
				ID:       e.Reservation.ID,
				Field:    ve.Field,
				Message:  ve.Message,
			})
		}
	}

	all := s.ledger.All()
	for _, pair := range scheduling.Overlapping(all) {
		first, second := all[pair[0]], all[pair[1]]
		iv, _ := scheduling.IntervalOf(first)
		findings = append(findings, Finding{
			Position: pair[1] + 1,
			ID:       second.ID,
			Field:    "start",
			Message: fmt.Sprintf("overlaps reservation #%d (%s, room %s on %s %s)",
				pair[0]+1, first.Occupant, first.Room, first.Day, iv.String()),
		})
	}

	if len(findings) > 0 {
		s.cfg.Log.Debug("Stored reservations break booking rules", "count", len(findings))
	}
	return findings
}
