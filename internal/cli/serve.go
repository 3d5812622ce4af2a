package cli

import (
	"context"

	"roombook/internal/bookings/handler"
	"roombook/internal/bookings/service"
	"roombook/pkg/app"
	"roombook/pkg/config"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only reservation board over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				application := app.NewApplication(rt.cfg)
				application.SetApp(
					handler.NewHealthHandler(rt.storeCheck, rt.cfg.Log),
					handler.NewBoardHandler(rt.snapshot, rt.cfg.Log),
				)
				return application.Run(cmd.Context())
			}, config.WithPort(port))
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

// snapshot reloads the store so the board shows changes made by other
// processes. Board reads never publish events.
func (rt *runtime) snapshot(ctx context.Context) (service.BookingService, error) {
	return rt.load(ctx, nil)
}

func (rt *runtime) storeCheck(ctx context.Context) error {
	_, err := rt.repo.Load(ctx)
	return err
}
