package validator

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"roombook/internal/bookings/scheduling"
	"roombook/pkg/config"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// First returns the error of the earliest field in validation order.
func (v ValidationErrors) First() ValidationError {
	return v[0]
}

var fieldOrder = []string{model.FieldRoom, model.FieldDay, model.FieldStart, model.FieldDuration, model.FieldOccupant}

var structFields = map[string]string{
	"Room":          model.FieldRoom,
	"Day":           model.FieldDay,
	"Start":         model.FieldStart,
	"DurationHours": model.FieldDuration,
	"Occupant":      model.FieldOccupant,
}

const maxOccupantLength = 100

// ReservationValidator checks reservations against the room catalog and the
// operating window.
type ReservationValidator struct {
	validate  *validator.Validate
	rooms     model.RoomCatalog
	window    scheduling.Window
	alignment int
	logger    *logger.Logger
}

func NewReservationValidator(log *logger.Logger, sched config.ScheduleConfig) *ReservationValidator {
	window, err := scheduling.NewWindow(sched.StartOfDay, sched.EndOfDay)
	if err != nil {
		log.Fatal("Invalid operating window", "error", err)
	}

	rv := &ReservationValidator{
		validate:  validator.New(),
		rooms:     sched.Rooms,
		window:    window,
		alignment: max(sched.StartAlignmentMinutes, 1),
		logger:    log,
	}

	custom := map[string]validator.Func{
		"room_key":      rv.validateRoomKey,
		"weekday":       validateWeekday,
		"weekday_input": validateWeekdayInput,
		"clock_time":    validateClockTime,
		"in_window":     rv.validateInWindow,
		"aligned":       rv.validateAligned,
		"notblank":      validators.NotBlank,
	}
	for tag, fn := range custom {
		if err := rv.validate.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}
	rv.validate.RegisterStructValidation(rv.validateEndWithinWindow, model.Reservation{})

	log.Debug("Reservation validator initialized successfully",
		"rooms", sched.Rooms.String(),
		"window", window.String(),
	)

	return rv
}

func (v *ReservationValidator) Window() scheduling.Window {
	return v.window
}

func (v *ReservationValidator) Rooms() model.RoomCatalog {
	return v.rooms
}

func (v *ReservationValidator) validateRoomKey(fl validator.FieldLevel) bool {
	return v.rooms.Has(fl.Field().String())
}

func validateWeekday(fl validator.FieldLevel) bool {
	return model.Weekday(fl.Field().String()).Valid()
}

func validateWeekdayInput(fl validator.FieldLevel) bool {
	_, ok := model.ParseWeekday(fl.Field().String())
	return ok
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := scheduling.ParseClock(fl.Field().String())
	return err == nil
}

func (v *ReservationValidator) validateInWindow(fl validator.FieldLevel) bool {
	m, err := scheduling.ParseClock(fl.Field().String())
	return err == nil && v.window.Admits(m)
}

func (v *ReservationValidator) validateAligned(fl validator.FieldLevel) bool {
	m, err := scheduling.ParseClock(fl.Field().String())
	return err == nil && (m-v.window.Open)%v.alignment == 0
}

func (v *ReservationValidator) validateEndWithinWindow(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(model.Reservation)
	if !ok {
		return
	}
	iv, err := scheduling.IntervalOf(r)
	if err != nil {
		return
	}
	if !v.window.Fits(iv) {
		sl.ReportError(r.DurationHours, "DurationHours", "DurationHours", "within_window", scheduling.FormatClock(iv.End))
	}
}

// Validate checks a complete reservation. Errors come back in field order.
func (v *ReservationValidator) Validate(r model.Reservation) error {
	if err := v.validate.Struct(r); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ParseRequest validates raw booking input field by field in the order
// room, day, start, duration, occupant and stops at the first failure.
func (v *ReservationValidator) ParseRequest(req model.BookingRequest) (model.Reservation, error) {
	var r model.Reservation
	steps := []struct {
		field string
		raw   string
	}{
		{model.FieldRoom, req.Room},
		{model.FieldDay, req.Day},
		{model.FieldStart, req.Start},
		{model.FieldDuration, req.Duration},
		{model.FieldOccupant, req.Occupant},
	}
	for _, step := range steps {
		if err := v.ParseField(&r, step.field, step.raw); err != nil {
			return model.Reservation{}, err
		}
	}
	if err := v.Validate(r); err != nil {
		return model.Reservation{}, err
	}
	return r, nil
}

// ParseField validates raw input for one field and stores the normalized
// value on r. It returns a ValidationErrors holding a single entry.
func (v *ReservationValidator) ParseField(r *model.Reservation, field, raw string) error {
	raw = strings.TrimSpace(raw)

	switch field {
	case model.FieldRoom:
		if err := v.checkVar(field, raw, "required,room_key"); err != nil {
			return err
		}
		r.Room = raw
	case model.FieldDay:
		if err := v.checkVar(field, raw, "required,weekday_input"); err != nil {
			return err
		}
		r.Day, _ = model.ParseWeekday(raw)
	case model.FieldStart:
		if err := v.checkVar(field, raw, "required,clock_time,in_window,aligned"); err != nil {
			return err
		}
		start, _ := scheduling.NormalizeClock(raw)
		candidate := *r
		candidate.Start = start
		if iv, err := scheduling.IntervalOf(candidate); err == nil && !v.window.Fits(iv) {
			return ValidationErrors{{Field: field, Message: fmt.Sprintf("starting at %s the reservation would end at %s, after closing time %s",
				start, scheduling.FormatClock(iv.End), scheduling.FormatClock(v.window.Close))}}
		}
		r.Start = start
	case model.FieldDuration:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ValidationErrors{{Field: field, Message: "duration must be a whole number of hours"}}
		}
		if err := v.checkVar(field, n, "min=1"); err != nil {
			return err
		}
		if limit := v.window.Hours(); n > limit {
			return ValidationErrors{{Field: field, Message: fmt.Sprintf("duration must be at most %d hours", limit)}}
		}
		candidate := *r
		candidate.DurationHours = n
		if iv, err := scheduling.IntervalOf(candidate); err == nil && !v.window.Fits(iv) {
			return ValidationErrors{{Field: field, Message: v.endMessage(scheduling.FormatClock(iv.End))}}
		}
		r.DurationHours = n
	case model.FieldOccupant:
		name := sanitizer.NormalizeName(raw)
		if err := v.checkVar(field, name, fmt.Sprintf("notblank,max=%d", maxOccupantLength)); err != nil {
			return err
		}
		r.Occupant = name
	default:
		return ValidationErrors{{Field: field, Message: fmt.Sprintf("unknown field %q, choose one of [%s]", field, strings.Join(model.EditableFields, ", "))}}
	}
	return nil
}

func (v *ReservationValidator) checkVar(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	return ValidationErrors{{Field: field, Message: v.message(field, validationErrs[0])}}
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field, ok := structFields[err.StructField()]
		if !ok {
			field = err.Field()
		}
		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: v.message(field, err),
		})
	}

	slices.SortStableFunc(validationErrors, func(a, b ValidationError) int {
		return slices.Index(fieldOrder, a.Field) - slices.Index(fieldOrder, b.Field)
	})
	return validationErrors
}

func (v *ReservationValidator) message(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "room_key":
		return fmt.Sprintf("unknown room %q, choose one of [%s]", err.Value(), strings.Join(v.rooms.Keys(), ", "))
	case "weekday", "weekday_input":
		return "day must be a weekday from Monday to Friday (1-5)"
	case "clock_time":
		return "start must be a time in HH:MM format"
	case "in_window":
		return fmt.Sprintf("start must be between %s and %s", scheduling.FormatClock(v.window.Open), scheduling.FormatClock(v.window.Close))
	case "aligned":
		return fmt.Sprintf("start must fall on a %d-minute mark counted from %s", v.alignment, scheduling.FormatClock(v.window.Open))
	case "min":
		if field == model.FieldDuration {
			return "duration must be at least 1 hour"
		}
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max":
		if field == model.FieldDuration {
			return fmt.Sprintf("duration must be at most %s hours", err.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "within_window":
		return v.endMessage(err.Param())
	}
	return err.Error()
}

func (v *ReservationValidator) endMessage(end string) string {
	return fmt.Sprintf("reservation would end at %s, after closing time %s", end, scheduling.FormatClock(v.window.Close))
}
