package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/config"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	cr "github.com/cockroachdb/errors"
)

type fileReservationRepository struct {
	path  string
	rooms model.RoomCatalog
	log   *logger.Logger
}

func NewFileReservationRepository(cfg *config.Config) ReservationRepository {
	return &fileReservationRepository{
		path:  cfg.Store.Path,
		rooms: cfg.Schedule.Rooms,
		log:   cfg.Log,
	}
}

// Load reads the store. A missing or empty file is an empty ledger.
// Content that cannot be decoded is marked with ErrCorruptStore.
func (r *fileReservationRepository) Load(ctx context.Context) ([]model.Reservation, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debug("Reservation store does not exist yet", "path", r.path)
			return nil, nil
		}
		return nil, cr.Wrapf(err, "failed to read reservation store %s", r.path)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var reservations []model.Reservation
		if err := json.Unmarshal(data, &reservations); err != nil {
			return nil, cr.Mark(cr.Wrapf(err, "failed to decode reservation store %s", r.path), bookingserrors.ErrCorruptStore)
		}
		return reservations, nil
	case '{':
		var legacy keyedStore
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, cr.Mark(cr.Wrapf(err, "failed to decode keyed reservation store %s", r.path), bookingserrors.ErrCorruptStore)
		}
		r.log.Info("Importing keyed reservation store", "path", r.path)
		return legacy.reservations(r.rooms, r.log), nil
	}
	return nil, cr.Mark(cr.Newf("unexpected content in reservation store %s", r.path), bookingserrors.ErrCorruptStore)
}

// Save replaces the store through a temporary file and a rename, so readers
// see either the old or the new content.
func (r *fileReservationRepository) Save(ctx context.Context, reservations []model.Reservation) error {
	if reservations == nil {
		reservations = []model.Reservation{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reservations); err != nil {
		return cr.Wrap(err, "failed to encode reservations")
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return cr.Wrapf(err, "failed to create temporary store in %s", dir)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return cr.Wrapf(err, "failed to write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return cr.Wrapf(err, "failed to sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return cr.Wrapf(err, "failed to close %s", tmpName)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return cr.Wrapf(err, "failed to replace reservation store %s", r.path)
	}

	r.log.Debug("Reservation store saved", "path", r.path, "count", len(reservations))
	return nil
}

func (r *fileReservationRepository) Close(ctx context.Context) error {
	return nil
}
