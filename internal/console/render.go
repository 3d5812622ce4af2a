package console

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"unicode"
	"unicode/utf8"

	"roombook/internal/bookings/ledger"
	"roombook/internal/bookings/scheduling"
	"roombook/internal/bookings/service"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/model"
)

const (
	colorReset   = "\033[0m"
	colorTitle   = "\033[1;36m"
	colorSuccess = "\033[32m"
	colorError   = "\033[31m"
	colorMuted   = "\033[2m"

	dateLayout  = "2006-01-02"
	shortLayout = "02/01"

	freeCell = "."
)

// Renderer writes ledger views as plain text tables.
type Renderer struct {
	svc   service.BookingService
	out   io.Writer
	color bool
}

func NewRenderer(svc service.BookingService, out io.Writer, color bool) *Renderer {
	return &Renderer{svc: svc, out: out, color: color}
}

func (r *Renderer) paint(color, s string) string {
	if !r.color {
		return s
	}
	return color + s + colorReset
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *Renderer) Title(s string) {
	r.printf("\n%s\n", r.paint(colorTitle, s))
}

func (r *Renderer) Success(format string, args ...any) {
	r.printf("%s\n", r.paint(colorSuccess, fmt.Sprintf(format, args...)))
}

func (r *Renderer) Info(format string, args ...any) {
	r.printf("%s\n", fmt.Sprintf(format, args...))
}

// Error prints the user-facing message of err. A declined confirmation is
// reported as information.
func (r *Renderer) Error(err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeCancelled {
		r.Info("%s", appErr.Message)
		return
	}
	r.printf("%s\n", r.paint(colorError, "Error: "+appErr.Message))
}

func (r *Renderer) Rooms() {
	window := r.svc.Window()
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROOM\tNAME\tOPEN\tCLOSE")
	for _, room := range r.svc.Rooms() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", room.Key, room.Name, scheduling.FormatClock(window.Open), scheduling.FormatClock(window.Close))
	}
	_ = tw.Flush()
}

// Reservations prints entries with their ledger position and the next
// calendar date of their weekday.
func (r *Renderer) Reservations(entries []ledger.Entry) {
	if len(entries) == 0 {
		r.Info("No reservations.")
		return
	}
	r.table(entries, func(e ledger.Entry) int { return e.Position })
}

// Numbered prints entries numbered from 1, the way selections are made.
func (r *Renderer) Numbered(entries []ledger.Entry) {
	n := 0
	r.table(entries, func(ledger.Entry) int { n++; return n })
}

func (r *Renderer) table(entries []ledger.Entry, number func(ledger.Entry) int) {
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tROOM\tDAY\tDATE\tTIME\tOCCUPANT")
	for _, e := range entries {
		res := e.Reservation
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			number(e),
			res.Room,
			res.Day,
			r.nextDate(res.Day),
			timeRange(res),
			res.Occupant,
		)
	}
	_ = tw.Flush()
}

// Occupants prints every occupant with their reservations, names sorted.
func (r *Renderer) Occupants() {
	names := r.svc.Occupants()
	if len(names) == 0 {
		r.Info("No reservations.")
		return
	}
	for _, name := range names {
		r.Title(name)
		r.Reservations(r.svc.ByOccupant(name))
	}
}

func (r *Renderer) Availability(room string, day model.Weekday, weeksAhead int, slots []scheduling.Slot) {
	r.Title(fmt.Sprintf("%s, %s %s", r.svc.Rooms().DisplayName(room), day, r.svc.NextDate(day, weeksAhead).Format(dateLayout)))

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, s := range slots {
		if s.Status == scheduling.Reserved {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s (%s)\n", s.Time(), s.Status, s.Occupant, s.Booking)
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t\n", s.Time(), r.paint(colorMuted, s.Status.String()))
	}
	_ = tw.Flush()
}

// Summary prints one grid per room: a row per availability step, a column
// per weekday headed by its date, and the occupant's initial in reserved
// cells.
func (r *Renderer) Summary(weeksAhead int) error {
	for _, room := range r.svc.Rooms() {
		columns := make([][]scheduling.Slot, len(model.Weekdays))
		for i, day := range model.Weekdays {
			seq, err := r.svc.Availability(room.Key, string(day))
			if err != nil {
				return err
			}
			columns[i] = slices.Collect(seq)
		}

		r.Title(room.Name)
		tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
		header := []string{"TIME"}
		for _, day := range model.Weekdays {
			header = append(header, day.Short()+" "+r.svc.NextDate(day, weeksAhead).Format(shortLayout))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))

		for row := range columns[0] {
			cells := []string{columns[0][row].Time()}
			for _, col := range columns {
				cells = append(cells, cell(col[row]))
			}
			_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		_ = tw.Flush()
	}
	return nil
}

func (r *Renderer) Findings(findings []service.Finding) {
	if len(findings) == 0 {
		r.Success("All stored reservations follow the booking rules.")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tFIELD\tPROBLEM")
	for _, f := range findings {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Position, f.Field, f.Message)
	}
	_ = tw.Flush()
}

// Reservation describes one reservation on a single line.
func (r *Renderer) Reservation(res model.Reservation) string {
	return fmt.Sprintf("%s, %s %s %s, %s",
		r.svc.Rooms().DisplayName(res.Room),
		res.Day,
		r.nextDate(res.Day),
		timeRange(res),
		res.Occupant,
	)
}

func (r *Renderer) nextDate(day model.Weekday) string {
	if !day.Valid() {
		return "-"
	}
	return r.svc.NextDate(day, 0).Format(dateLayout)
}

func timeRange(res model.Reservation) string {
	iv, err := scheduling.IntervalOf(res)
	if err != nil {
		return res.Start
	}
	return iv.String()
}

func cell(s scheduling.Slot) string {
	if s.Status != scheduling.Reserved {
		return freeCell
	}
	first, _ := utf8.DecodeRuneInString(s.Occupant)
	if first == utf8.RuneError {
		return "#"
	}
	return string(unicode.ToUpper(first))
}
