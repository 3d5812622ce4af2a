package repository

import (
	"context"
	"errors"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/client"
	"roombook/pkg/config"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	cr "github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "ledgers"
	opTimeout      = 10 * time.Second
)

// ledgerDocument stores the full ordered reservation list in one document,
// so a save is a single atomic replace.
type ledgerDocument struct {
	ID           string              `bson:"_id"`
	Reservations []model.Reservation `bson:"reservations"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

type mongoReservationRepository struct {
	client     *client.MongoClient
	collection *mongo.Collection
	ledgerID   string
	log        *logger.Logger
}

func NewMongoReservationRepository(ctx context.Context, cfg *config.Config) (ReservationRepository, error) {
	mc, err := client.NewMongoClient(ctx, cfg.Log, cfg.Store.MongoURI, cfg.Store.MongoConnTimeout)
	if err != nil {
		return nil, err
	}
	return &mongoReservationRepository{
		client:     mc,
		collection: mc.Client.Database(cfg.Store.MongoDatabaseName).Collection(CollectionName),
		ledgerID:   cfg.Store.LedgerID,
		log:        cfg.Log,
	}, nil
}

// withTimeout bounds ctx by opTimeout unless it already has an earlier deadline.
func (r *mongoReservationRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < opTimeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, opTimeout)
}

func (r *mongoReservationRepository) Load(ctx context.Context) ([]model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.collection.FindOne(ctx, bson.M{"_id": r.ledgerID})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Debug("Ledger document does not exist yet", "ledger_id", r.ledgerID)
			return nil, nil
		}
		return nil, cr.Wrapf(err, "failed to load ledger %s", r.ledgerID)
	}

	var doc ledgerDocument
	if err := result.Decode(&doc); err != nil {
		return nil, cr.Mark(cr.Wrapf(err, "failed to decode ledger %s", r.ledgerID), bookingserrors.ErrCorruptStore)
	}
	return doc.Reservations, nil
}

func (r *mongoReservationRepository) Save(ctx context.Context, reservations []model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if reservations == nil {
		reservations = []model.Reservation{}
	}
	doc := ledgerDocument{
		ID:           r.ledgerID,
		Reservations: reservations,
		UpdatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": r.ledgerID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return cr.Wrapf(err, "failed to save ledger %s", r.ledgerID)
	}

	r.log.Debug("Ledger saved", "ledger_id", r.ledgerID, "count", len(reservations))
	return nil
}

func (r *mongoReservationRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
