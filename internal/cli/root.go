package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"roombook/internal/console"
	apperrors "roombook/pkg/errors"

	"github.com/spf13/cobra"
)

const ServiceName = "roombook"

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

type rootOptions struct {
	store   string
	backend string
	today   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "roombook",
		Short:         "Book meeting rooms across the work week",
		Long:          "Book meeting rooms across the work week. Without a command it starts the interactive menu.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				out := cmd.OutOrStdout()
				c := console.New(rt.svc, cmd.InOrStdin(), out, useColor(out), rt.cfg.Log)
				return c.Run(cmd.Context())
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.store, "store", "", "path of the reservation file (overrides STORE_PATH)")
	flags.StringVar(&opts.backend, "backend", "", "store backend, file or mongo (overrides STORE_BACKEND)")
	flags.StringVar(&opts.today, "today", "", "treat this date (YYYY-MM-DD) as today when resolving dates")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBookCmd(opts))
	root.AddCommand(newAvailabilityCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newModifyCmd(opts))
	root.AddCommand(newCancelCmd(opts))
	root.AddCommand(newSummaryCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	if apperrors.IsAppError(err) {
		_, _ = fmt.Fprintln(w, "Error:", apperrors.AsAppError(err).Message)
		return
	}
	_, _ = fmt.Fprintln(w, "Error:", err)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit=%s, built=%s)\n", ServiceName, Version, CommitSHA, BuildDate)
		},
	}
}
