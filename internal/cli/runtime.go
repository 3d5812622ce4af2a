package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"roombook/internal/bookings/events"
	"roombook/internal/bookings/ledger"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/service"
	"roombook/internal/bookings/validator"
	"roombook/internal/console"
	"roombook/pkg/clock"
	"roombook/pkg/config"
	"roombook/pkg/kafka"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const todayLayout = "2006-01-02"

// runtime holds everything one command needs: configuration, the opened
// store and the booking service over the loaded ledger.
type runtime struct {
	cfg       *config.Config
	repo      repository.ReservationRepository
	validator *validator.ReservationValidator
	clock     clock.Clock
	publisher events.Publisher
	svc       service.BookingService
}

func withRuntime(cmd *cobra.Command, opts *rootOptions, fn func(rt *runtime) error, extra ...config.Option) error {
	rt, err := newRuntime(cmd.Context(), opts, extra...)
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(rt)
}

func newRuntime(ctx context.Context, opts *rootOptions, extra ...config.Option) (*runtime, error) {
	clk, err := newClock(opts.today)
	if err != nil {
		return nil, err
	}

	options := append([]config.Option{config.WithStorePath(opts.store), config.WithBackend(opts.backend)}, extra...)
	cfg, err := config.Load(ServiceName, options...)
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open reservation store: %w", err)
	}

	rt := &runtime{
		cfg:       cfg,
		repo:      repo,
		validator: validator.NewReservationValidator(cfg.Log, cfg.Schedule),
		clock:     clk,
	}

	rt.publisher, err = newPublisher(cfg)
	if err != nil {
		rt.close()
		return nil, err
	}

	rt.svc, err = rt.load(ctx, rt.publisher)
	if err != nil {
		rt.close()
		return nil, err
	}

	if findings := rt.svc.Audit(); len(findings) > 0 {
		cfg.Log.Warn("Stored reservations break booking rules, run 'roombook check' for details", "count", len(findings))
	}
	return rt, nil
}

// load reads the store into a fresh ledger and wraps it in a service.
func (rt *runtime) load(ctx context.Context, publisher events.Publisher) (service.BookingService, error) {
	l, err := ledger.Load(ctx, rt.repo, rt.cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	return service.NewBookingService(rt.repo, l, rt.validator, publisher, rt.clock, rt.cfg), nil
}

func (rt *runtime) close() {
	if rt.publisher != nil {
		if err := rt.publisher.Close(); err != nil {
			rt.cfg.Log.Warn("Failed to close event publisher", "error", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.repo.Close(ctx); err != nil {
		rt.cfg.Log.Warn("Failed to close reservation store", "error", err)
	}
}

func (rt *runtime) renderer(cmd *cobra.Command) *console.Renderer {
	out := cmd.OutOrStdout()
	return console.NewRenderer(rt.svc, out, useColor(out))
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if !cfg.Kafka.Enabled() {
		return events.NewNoopPublisher(), nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	producer.Use(kafka.LoggingProducerMiddleware(cfg.Log))
	cfg.Log.Info("Reservation events enabled", "topic", producer.Topic(), "brokers", cfg.Kafka.Brokers)
	return events.NewKafkaPublisher(producer, ServiceName), nil
}

func newClock(today string) (clock.Clock, error) {
	if today == "" {
		return clock.NewRealClock(), nil
	}
	t, err := time.ParseInLocation(todayLayout, today, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --today %q, expected YYYY-MM-DD", today)
	}
	return clock.NewMockClock(t), nil
}

// useColor reports whether out is a terminal that accepts ANSI colors.
func useColor(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
