package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"roombook/internal/bookings/ledger"
	"roombook/internal/bookings/service"
	"roombook/internal/bookings/validator"
	"roombook/pkg/clock"
	"roombook/pkg/config"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	saves int
}

func (m *memoryRepository) Load(ctx context.Context) ([]model.Reservation, error) {
	return nil, nil
}

func (m *memoryRepository) Save(ctx context.Context, reservations []model.Reservation) error {
	m.saves++
	return nil
}

func (m *memoryRepository) Close(ctx context.Context) error {
	return nil
}

// thursday is 2024-05-16.
var thursday = time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)

func newTestService(existing ...model.Reservation) (service.BookingService, *ledger.Ledger, *memoryRepository) {
	cfg := config.NewTestConfig()
	l := ledger.New(existing)
	repo := &memoryRepository{}
	v := validator.NewReservationValidator(cfg.Log, cfg.Schedule)
	return service.NewBookingService(repo, l, v, nil, clock.NewMockClock(thursday), cfg), l, repo
}

func run(t *testing.T, svc service.BookingService, input ...string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(svc, strings.NewReader(strings.Join(input, "\n")+"\n"), &out, false, config.NewTestConfig().Log)
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func seeded() []model.Reservation {
	return []model.Reservation{
		{ID: "a", Room: "4", Day: model.Monday, Start: "09:00", DurationHours: 2, Occupant: "Ana"},
		{ID: "b", Room: "5", Day: model.Tuesday, Start: "10:00", DurationHours: 1, Occupant: "Bob"},
	}
}

func TestConsole_Book(t *testing.T) {
	svc, l, repo := newTestService()

	out := run(t, svc, "b", "4", "1", "09:00", "2", "Ana", "q")

	assert.Contains(t, out, "Reservation confirmed: Sala Piso 4 - Sala de Conferencias, Monday 2024-05-20 09:00-11:00, Ana")
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 1, repo.saves)
	assert.Contains(t, out, "Goodbye!")
}

func TestConsole_BookAsksAgainForRejectedField(t *testing.T) {
	svc, l, _ := newTestService()

	out := run(t, svc, "b", "4", "1", "07:00", "2", "Ana", "08:00", "q")

	assert.Contains(t, out, "Error: start must be between 08:00 and 16:00")
	assert.Contains(t, out, "Reservation confirmed")
	r, ok := l.At(1)
	require.True(t, ok)
	assert.Equal(t, "08:00", r.Start)
	assert.Equal(t, 2, r.DurationHours)
}

func TestConsole_BookConflictAsksForNewTime(t *testing.T) {
	svc, l, _ := newTestService(seeded()...)

	out := run(t, svc, "b", "4", "monday", "10:00", "1", "Eva", "11:00", "1", "q")

	assert.Contains(t, out, "Error: Room 4 is already booked on Monday from 09:00 to 11:00 by Ana")
	assert.Contains(t, out, "Reservation confirmed")
	assert.Equal(t, 3, l.Len())
}

func TestConsole_BookEmptyAnswerGoesBack(t *testing.T) {
	svc, l, _ := newTestService()

	out := run(t, svc, "b", "4", "", "q")

	assert.NotContains(t, out, "Reservation confirmed")
	assert.Equal(t, 0, l.Len())
	assert.Contains(t, out, "Goodbye!")
}

func TestConsole_ListAndOccupants(t *testing.T) {
	svc, _, _ := newTestService(seeded()...)

	out := run(t, svc, "l", "o", "q")

	assert.Contains(t, out, "ALL RESERVATIONS")
	assert.Contains(t, out, "09:00-11:00")
	assert.Contains(t, out, "2024-05-21")
	assert.Contains(t, out, "RESERVATIONS BY OCCUPANT")
	assert.Less(t, strings.Index(out, "\nAna\n"), strings.Index(out, "\nBob\n"))
}

func TestConsole_Availability(t *testing.T) {
	svc, _, _ := newTestService(seeded()...)

	out := run(t, svc, "a", "4", "1", "q")

	assert.Contains(t, out, "Sala Piso 4 - Sala de Conferencias, Monday 2024-05-20")
	assert.Regexp(t, `09:00\s+reserved\s+Ana \(09:00-11:00\)`, out)
	assert.Regexp(t, `15:30\s+available`, out)
}

func TestConsole_Modify(t *testing.T) {
	svc, l, _ := newTestService(seeded()...)

	// occupant 2 (Bob), reservation 1, field 4 (start)
	out := run(t, svc, "m", "2", "1", "4", "10:30", "q")

	assert.Contains(t, out, "Reservation updated")
	r, _ := l.At(2)
	assert.Equal(t, "b", r.ID)
	assert.Equal(t, "10:30", r.Start)
}

func TestConsole_ModifyRejectedValueAsksAgain(t *testing.T) {
	svc, l, _ := newTestService(seeded()...)

	// field 5 (duration): 8 hours overruns closing time, 2 fits
	out := run(t, svc, "m", "1", "1", "5", "8", "2", "q")

	assert.Contains(t, out, "Error: reservation would end at 17:00, after closing time 16:00")
	assert.Contains(t, out, "Reservation updated")
	r, _ := l.At(1)
	assert.Equal(t, 2, r.DurationHours)
}

func TestConsole_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantLen int
		wantMsg string
	}{
		{name: "declined", answer: "n", wantLen: 2, wantMsg: "Cancellation declined"},
		{name: "empty answer declines", answer: "", wantLen: 2, wantMsg: "Cancellation declined"},
		{name: "confirmed", answer: "y", wantLen: 1, wantMsg: "Reservation cancelled."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, l, repo := newTestService(seeded()...)

			out := run(t, svc, "c", "1", "1", tt.answer, "q")

			assert.Contains(t, out, tt.wantMsg)
			assert.Equal(t, tt.wantLen, l.Len())
			if tt.wantLen == 2 {
				assert.Equal(t, 0, repo.saves)
			}
		})
	}
}

func TestConsole_PickRetriesOutOfRange(t *testing.T) {
	svc, _, _ := newTestService(seeded()...)

	out := run(t, svc, "c", "7", "", "q")

	assert.Contains(t, out, "choose a number from 1 to 2")
}

func TestConsole_Summary(t *testing.T) {
	svc, _, _ := newTestService(seeded()...)

	out := run(t, svc, "s", "1", "q")

	assert.Contains(t, out, "WEEK SUMMARY")
	assert.Contains(t, out, "Mon 27/05")
	assert.Contains(t, out, "Thu 23/05")
	assert.Contains(t, out, "Fri 24/05")
	assert.Regexp(t, `09:00\s+A\s+\.`, out)
	assert.Regexp(t, `10:00\s+\.\s+B`, out)
}

func TestConsole_UnknownOptionAndEOF(t *testing.T) {
	svc, _, _ := newTestService()

	var out bytes.Buffer
	c := New(svc, strings.NewReader("x\n"), &out, false, config.NewTestConfig().Log)
	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), `unknown option "x"`)
}

func TestConsole_StopsWhenContextEnds(t *testing.T) {
	svc, _, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(svc, strings.NewReader("l\n"), &bytes.Buffer{}, false, config.NewTestConfig().Log)
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}
