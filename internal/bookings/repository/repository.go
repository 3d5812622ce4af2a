package repository

import (
	"context"
	"fmt"

	"roombook/pkg/config"
	"roombook/pkg/model"
)

// ReservationRepository persists the whole ordered reservation list at once.
type ReservationRepository interface {
	Load(ctx context.Context) ([]model.Reservation, error)
	Save(ctx context.Context, reservations []model.Reservation) error
	Close(ctx context.Context) error
}

// New opens the repository selected by cfg.Store.Backend.
func New(ctx context.Context, cfg *config.Config) (ReservationRepository, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		return NewFileReservationRepository(cfg), nil
	case config.BackendMongo:
		return NewMongoReservationRepository(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
