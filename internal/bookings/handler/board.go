package handler

import (
	"context"
	"net/http"
	"strings"

	"roombook/internal/bookings/ledger"
	"roombook/internal/bookings/scheduling"
	"roombook/internal/bookings/service"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const dateLayout = "2006-01-02"

// Snapshot loads a fresh view of the ledger for one request. The board only
// calls read methods on it.
type Snapshot func(ctx context.Context) (service.BookingService, error)

type RoomResponse struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

type ReservationResponse struct {
	Position int `json:"position"`
	model.Reservation
	End      string `json:"end"`
	NextDate string `json:"next_date"`
}

type SlotResponse struct {
	Time     string                `json:"time"`
	Status   scheduling.SlotStatus `json:"status"`
	Occupant string                `json:"occupant,omitempty"`
	Until    string                `json:"until,omitempty"`
}

type RangeResponse struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Occupant string `json:"occupant"`
}

type AvailabilityResponse struct {
	Room     string          `json:"room"`
	Day      model.Weekday   `json:"day"`
	Date     string          `json:"date"`
	Slots    []SlotResponse  `json:"slots"`
	Reserved []RangeResponse `json:"reserved"`
}

type BoardHandler struct {
	snapshot Snapshot
	log      *logger.Logger
}

func NewBoardHandler(snapshot Snapshot, log *logger.Logger) *BoardHandler {
	return &BoardHandler{
		snapshot: snapshot,
		log:      log,
	}
}

func (h *BoardHandler) Rooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	svc, ok := h.load(w, r, "Rooms")
	if !ok {
		return
	}

	window := svc.Window()
	rooms := make([]RoomResponse, 0, len(svc.Rooms()))
	for _, room := range svc.Rooms() {
		rooms = append(rooms, RoomResponse{
			Key:   room.Key,
			Name:  room.Name,
			Open:  scheduling.FormatClock(window.Open),
			Close: scheduling.FormatClock(window.Close),
		})
	}

	if err := httputil.WriteList(w, rooms, len(rooms)); err != nil {
		h.log.Error("failed to write list response", "handler", "Rooms", "operation", "WriteList", "error", err)
	}
}

func (h *BoardHandler) Reservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	svc, ok := h.load(w, r, "Reservations")
	if !ok {
		return
	}

	entries := svc.Entries()
	if occupant := r.URL.Query().Get("occupant"); occupant != "" {
		entries = svc.ByOccupant(occupant)
	}

	reservations := make([]ReservationResponse, 0, len(entries))
	for _, e := range entries {
		reservations = append(reservations, toReservationResponse(svc, e))
	}

	if err := httputil.WriteList(w, reservations, len(reservations)); err != nil {
		h.log.Error("failed to write list response", "handler", "Reservations", "operation", "WriteList", "error", err)
	}
}

func (h *BoardHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	weeks, err := httputil.QueryInt(r, "weeks", 0, scheduling.MaxWeeksAhead)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	svc, ok := h.load(w, r, "Availability")
	if !ok {
		return
	}

	slots, err := svc.Availability(ps.ByName("room"), ps.ByName("day"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	// Availability accepted both values, so they parse.
	room := strings.TrimSpace(ps.ByName("room"))
	day, _ := model.ParseWeekday(strings.TrimSpace(ps.ByName("day")))

	resp := AvailabilityResponse{
		Room:     room,
		Day:      day,
		Date:     svc.NextDate(day, weeks).Format(dateLayout),
		Slots:    []SlotResponse{},
		Reserved: []RangeResponse{},
	}
	for s := range slots {
		slot := SlotResponse{Time: s.Time(), Status: s.Status}
		if s.Status == scheduling.Reserved {
			slot.Occupant = s.Occupant
			slot.Until = scheduling.FormatClock(s.Booking.End)
		}
		resp.Slots = append(resp.Slots, slot)
	}
	for _, o := range svc.Reserved(room, day) {
		resp.Reserved = append(resp.Reserved, RangeResponse{
			Start:    scheduling.FormatClock(o.Start),
			End:      scheduling.FormatClock(o.End),
			Occupant: o.Occupant,
		})
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BoardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms", h.Rooms)
	router.GET("/api/v1/reservations", h.Reservations)
	router.GET("/api/v1/rooms/:room/availability/:day", h.Availability)
}

func (h *BoardHandler) load(w http.ResponseWriter, r *http.Request, name string) (service.BookingService, bool) {
	svc, err := h.snapshot(r.Context())
	if err != nil {
		h.log.Error("Failed to load reservations", "handler", name, "error", err)
		h.writeError(w, name, apperrors.Internal("Failed to load reservations", err))
		return nil, false
	}
	return svc, true
}

func (h *BoardHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func toReservationResponse(svc service.BookingService, e ledger.Entry) ReservationResponse {
	resp := ReservationResponse{
		Position:    e.Position,
		Reservation: e.Reservation,
	}
	if iv, err := scheduling.IntervalOf(e.Reservation); err == nil {
		resp.End = scheduling.FormatClock(iv.End)
	}
	if e.Reservation.Day.Valid() {
		resp.NextDate = svc.NextDate(e.Reservation.Day, 0).Format(dateLayout)
	}
	return resp
}
