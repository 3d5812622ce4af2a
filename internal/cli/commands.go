package cli

import (
	"bufio"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"roombook/internal/bookings/scheduling"
	"roombook/internal/console"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/model"

	"github.com/spf13/cobra"
)

func newBookCmd(opts *rootOptions) *cobra.Command {
	var req model.BookingRequest
	cmd := &cobra.Command{
		Use:     "book",
		Short:   "Book a room",
		Example: "  roombook book --room 4 --day monday --start 09:00 --duration 2 --occupant Ana",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				r, err := rt.svc.Book(cmd.Context(), req)
				if err != nil {
					return err
				}
				render := rt.renderer(cmd)
				render.Success("Reservation confirmed: %s", render.Reservation(r))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Room, "room", "", "room key")
	cmd.Flags().StringVar(&req.Day, "day", "", "weekday, 1-5 or its name")
	cmd.Flags().StringVar(&req.Start, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&req.Duration, "duration", "", "duration in whole hours")
	cmd.Flags().StringVar(&req.Occupant, "occupant", "", "name the room is booked under")
	return cmd
}

func newAvailabilityCmd(opts *rootOptions) *cobra.Command {
	var weeks int
	cmd := &cobra.Command{
		Use:     "availability <room> <day>",
		Aliases: []string{"avail"},
		Short:   "Show the free and reserved slots of a room on a day",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkWeeks(weeks); err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				seq, err := rt.svc.Availability(args[0], args[1])
				if err != nil {
					return err
				}
				day, _ := model.ParseWeekday(args[1])
				rt.renderer(cmd).Availability(strings.TrimSpace(args[0]), day, weeks, slices.Collect(seq))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 0, "weeks ahead of the current one for the shown date")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		byOccupant bool
		occupant   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reservations with their positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				render := rt.renderer(cmd)
				switch {
				case occupant != "":
					render.Reservations(rt.svc.ByOccupant(occupant))
				case byOccupant:
					render.Occupants()
				default:
					render.Reservations(rt.svc.Entries())
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&byOccupant, "by-occupant", false, "group reservations by occupant")
	cmd.Flags().StringVar(&occupant, "occupant", "", "only show reservations under this exact name")
	return cmd
}

func newModifyCmd(opts *rootOptions) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "modify <position> <field> <value>",
		Short: "Change one field of a reservation",
		Long: "Change one field of the reservation at the position shown by 'roombook list'.\n" +
			"Fields: " + strings.Join(model.EditableFields, ", ") + ".",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selection(args[0], id)
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				r, err := rt.svc.Modify(cmd.Context(), sel, model.FieldChange{Field: args[1], Value: args[2]})
				if err != nil {
					return err
				}
				render := rt.renderer(cmd)
				render.Success("Reservation updated: %s", render.Reservation(r))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "expected reservation id, rejects the change if the position now holds another one")
	return cmd
}

func newCancelCmd(opts *rootOptions) *cobra.Command {
	var (
		id  string
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "cancel <position>",
		Short: "Cancel a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selection(args[0], id)
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				render := rt.renderer(cmd)
				in := bufio.NewScanner(cmd.InOrStdin())
				_, err := rt.svc.Cancel(cmd.Context(), sel, func(r model.Reservation) bool {
					if yes {
						return true
					}
					render.Info("%s", render.Reservation(r))
					_, _ = fmt.Fprint(cmd.OutOrStdout(), "Cancel this reservation? (y/N): ")
					return in.Scan() && console.IsYes(in.Text())
				})
				if apperrors.HasCode(err, apperrors.CodeCancelled) {
					render.Error(err)
					return nil
				}
				if err != nil {
					return err
				}
				render.Success("Reservation cancelled.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "expected reservation id, rejects the cancellation if the position now holds another one")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var weeks int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the week grid of every room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkWeeks(weeks); err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				return rt.renderer(cmd).Summary(weeks)
			})
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 0, "weeks ahead of the current one")
	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report stored reservations that break the booking rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				findings := rt.svc.Audit()
				rt.renderer(cmd).Findings(findings)
				if len(findings) > 0 {
					return fmt.Errorf("%d problem(s) found in %s", len(findings), storeName(rt))
				}
				return nil
			})
		},
	}
}

func storeName(rt *runtime) string {
	if rt.cfg.Store.Backend == config.BackendMongo {
		return "the mongo store"
	}
	return rt.cfg.Store.Path
}

func selection(position, id string) (model.Selection, error) {
	n, err := strconv.Atoi(strings.TrimSpace(position))
	if err != nil || n < 1 {
		return model.Selection{}, apperrors.InvalidInput(fmt.Sprintf("position must be a number from 1, got %q", position))
	}
	return model.Selection{Position: n, ID: id}, nil
}

func checkWeeks(weeks int) error {
	if weeks < 0 {
		return apperrors.InvalidInput("weeks ahead must be 0 or more")
	}
	if weeks > scheduling.MaxWeeksAhead {
		return apperrors.InvalidInput(fmt.Sprintf("weeks ahead must be at most %d", scheduling.MaxWeeksAhead))
	}
	return nil
}
