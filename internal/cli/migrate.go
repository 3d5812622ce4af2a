package cli

import (
	"context"
	"fmt"
	"time"

	"roombook/internal/bookings/repository"
	mongomigration "roombook/internal/migrations/mongo"
	"roombook/pkg/client"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"

	"github.com/spf13/cobra"
)

const migrationTimeout = 2 * time.Minute

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the mongo ledger collection, its schema and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(ServiceName, config.WithBackend(opts.backend))
			if err != nil {
				return err
			}
			if cfg.Store.Backend != config.BackendMongo {
				return apperrors.InvalidInput("migrate only applies to the mongo backend, set STORE_BACKEND=mongo or --backend mongo")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), migrationTimeout)
			defer cancel()

			mc, err := client.NewMongoClient(ctx, cfg.Log, cfg.Store.MongoURI, cfg.Store.MongoConnTimeout)
			if err != nil {
				return err
			}
			defer func() { _ = mc.Disconnect(context.Background()) }()

			db := mc.Client.Database(cfg.Store.MongoDatabaseName)
			if err := mongomigration.RunMigration(ctx, db, repository.CollectionName, cfg.Log); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migration completed successfully.")
			return nil
		},
	}
}
