package mongo

import (
	"context"
	"fmt"

	"roombook/internal/migrations/mongo/validators"
	"roombook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var LedgerIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "reservations.occupant", Value: 1}}},
	{Keys: bson.D{{Key: "updated_at", Value: -1}}},
}

// RunMigration creates the ledger collection with its schema validator and
// indexes, or brings an existing one up to date. It is safe to run again.
func RunMigration(ctx context.Context, db *mongo.Database, collection string, log *logger.Logger) error {
	log.Info("Running mongo migrations", "database", db.Name(), "collection", collection)

	if err := ensureCollection(ctx, db, collection, validators.LedgerValidator, log); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", collection, err)
	}
	if err := ensureIndexes(ctx, db, collection, LedgerIndexes, log); err != nil {
		return fmt.Errorf("failed to ensure indexes for %s: %w", collection, err)
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
