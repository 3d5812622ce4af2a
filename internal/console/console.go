package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"roombook/internal/bookings/ledger"
	"roombook/internal/bookings/scheduling"
	"roombook/internal/bookings/service"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

const menu = "[A]vailability  [B]ook  [L]ist  [O]ccupants  [M]odify  [C]ancel  [S]ummary  [Q]uit"

// Console is the interactive menu. It reads raw lines, hands them to the
// booking service and renders the outcome. Every failure returns to the menu.
type Console struct {
	svc    service.BookingService
	render *Renderer
	in     *bufio.Scanner
	out    io.Writer
	log    *logger.Logger
}

func New(svc service.BookingService, in io.Reader, out io.Writer, color bool, log *logger.Logger) *Console {
	return &Console{
		svc:    svc,
		render: NewRenderer(svc, out, color),
		in:     bufio.NewScanner(in),
		out:    out,
		log:    log,
	}
}

// Run shows the menu until the user quits or input ends.
func (c *Console) Run(ctx context.Context) error {
	c.render.Title("ROOM BOOKING")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.render.Info("\n%s", menu)
		choice, ok := c.prompt("Option")
		if !ok {
			return nil
		}

		c.log.Debug("Menu option selected", "option", choice)
		switch strings.ToLower(choice) {
		case "a":
			c.availability()
		case "b":
			c.book(ctx)
		case "l":
			c.render.Title("ALL RESERVATIONS")
			c.render.Reservations(c.svc.Entries())
		case "o":
			c.render.Title("RESERVATIONS BY OCCUPANT")
			c.render.Occupants()
		case "m":
			c.modify(ctx)
		case "c":
			c.cancel(ctx)
		case "s":
			c.summary()
		case "q":
			c.render.Info("Goodbye!")
			return nil
		case "":
		default:
			c.render.Error(apperrors.InvalidInput(fmt.Sprintf("unknown option %q", choice)))
		}
	}
}

// prompt reads one trimmed line. It reports false when input has ended.
func (c *Console) prompt(label string) (string, bool) {
	_, _ = fmt.Fprintf(c.out, "%s: ", label)
	if !c.in.Scan() {
		_, _ = fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// promptValue is prompt where an empty answer also aborts.
func (c *Console) promptValue(label string) (string, bool) {
	v, ok := c.prompt(label + " (empty to go back)")
	return v, ok && v != ""
}

func (c *Console) availability() {
	c.render.Rooms()
	room, ok := c.promptValue("Room")
	if !ok {
		return
	}
	day, ok := c.promptValue("Day (1-5 or name)")
	if !ok {
		return
	}

	seq, err := c.svc.Availability(room, day)
	if err != nil {
		c.render.Error(err)
		return
	}
	weekday, _ := model.ParseWeekday(day)
	c.render.Availability(strings.TrimSpace(room), weekday, 0, slices.Collect(seq))
}

// book asks for every field, then submits. A rejected field is asked again
// while the other answers are kept.
func (c *Console) book(ctx context.Context) {
	c.render.Title("NEW RESERVATION")
	c.render.Rooms()

	window := c.svc.Window()
	labels := map[string]string{
		model.FieldRoom:     "Room",
		model.FieldDay:      "Day (1-5 or name)",
		model.FieldStart:    fmt.Sprintf("Start time HH:MM (%s)", window),
		model.FieldDuration: "Duration in hours",
		model.FieldOccupant: "Your name",
	}
	order := []string{model.FieldRoom, model.FieldDay, model.FieldStart, model.FieldDuration, model.FieldOccupant}
	answers := map[string]string{}

	for {
		for _, field := range order {
			if _, done := answers[field]; done {
				continue
			}
			v, ok := c.promptValue(labels[field])
			if !ok {
				return
			}
			answers[field] = v
		}

		r, err := c.svc.Book(ctx, model.BookingRequest{
			Room:     answers[model.FieldRoom],
			Day:      answers[model.FieldDay],
			Start:    answers[model.FieldStart],
			Duration: answers[model.FieldDuration],
			Occupant: answers[model.FieldOccupant],
		})
		if err == nil {
			c.render.Success("Reservation confirmed: %s", c.render.Reservation(r))
			return
		}

		c.render.Error(err)
		appErr := apperrors.AsAppError(err)
		switch appErr.Code {
		case apperrors.CodeInvalidField:
			delete(answers, appErr.Field())
		case apperrors.CodeSchedulingConflict:
			delete(answers, model.FieldStart)
			delete(answers, model.FieldDuration)
		default:
			return
		}
	}
}

// choose lists the occupants, then the chosen occupant's reservations, and
// returns the selection of one of them.
func (c *Console) choose(action string) (model.Selection, bool) {
	names := c.svc.Occupants()
	if len(names) == 0 {
		c.render.Info("No reservations.")
		return model.Selection{}, false
	}

	c.render.Title("OCCUPANTS")
	for i, name := range names {
		c.render.Info("%d. %s", i+1, name)
	}
	i, ok := c.pick("Occupant number", len(names))
	if !ok {
		return model.Selection{}, false
	}

	entries := c.svc.ByOccupant(names[i])
	c.render.Title("RESERVATIONS OF " + strings.ToUpper(names[i]))
	c.render.Numbered(entries)
	j, ok := c.pick("Reservation to "+action, len(entries))
	if !ok {
		return model.Selection{}, false
	}
	return selectionOf(entries[j]), true
}

// pick reads a 1-based choice up to n and returns it 0-based.
func (c *Console) pick(label string, n int) (int, bool) {
	for {
		v, ok := c.promptValue(label)
		if !ok {
			return 0, false
		}
		i, err := strconv.Atoi(v)
		if err == nil && i >= 1 && i <= n {
			return i - 1, true
		}
		c.render.Error(apperrors.InvalidInput(fmt.Sprintf("choose a number from 1 to %d", n)))
	}
}

func (c *Console) modify(ctx context.Context) {
	sel, ok := c.choose("modify")
	if !ok {
		return
	}

	c.render.Title("FIELDS")
	for i, f := range model.EditableFields {
		c.render.Info("%d. %s", i+1, f)
	}
	i, ok := c.pick("Field number", len(model.EditableFields))
	if !ok {
		return
	}
	field := model.EditableFields[i]

	for {
		v, ok := c.promptValue("New " + field)
		if !ok {
			return
		}
		r, err := c.svc.Modify(ctx, sel, model.FieldChange{Field: field, Value: v})
		if err == nil {
			c.render.Success("Reservation updated: %s", c.render.Reservation(r))
			return
		}
		c.render.Error(err)
		if !apperrors.HasCode(err, apperrors.CodeInvalidField) && !apperrors.HasCode(err, apperrors.CodeSchedulingConflict) {
			return
		}
	}
}

func (c *Console) cancel(ctx context.Context) {
	sel, ok := c.choose("cancel")
	if !ok {
		return
	}

	_, err := c.svc.Cancel(ctx, sel, func(r model.Reservation) bool {
		c.render.Info("%s", c.render.Reservation(r))
		answer, _ := c.prompt("Cancel this reservation? (y/N)")
		return IsYes(answer)
	})
	if err != nil {
		c.render.Error(err)
		return
	}
	c.render.Success("Reservation cancelled.")
}

func (c *Console) summary() {
	weeks := 0
	if v, ok := c.prompt("Weeks ahead (empty for this week)"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > scheduling.MaxWeeksAhead {
			c.render.Error(apperrors.InvalidInput(fmt.Sprintf("weeks ahead must be a whole number from 0 to %d", scheduling.MaxWeeksAhead)))
			return
		}
		weeks = n
	}
	c.render.Title("WEEK SUMMARY")
	if err := c.render.Summary(weeks); err != nil {
		c.render.Error(err)
	}
}

func selectionOf(e ledger.Entry) model.Selection {
	return model.Selection{Position: e.Position, ID: e.Reservation.ID}
}

// IsYes reports whether answer confirms a prompt, in English or Spanish.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}
