package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"farelock/cmd/bootstrap"
	"farelock/internal/infra/events"
	"farelock/internal/infra/repository"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/config"
	"farelock/internal/usecase/commands"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

// The worker runs the two background duties the API server does not:
// sweeping expired snapshots out of the database and turning ticketed-booking
// events into customer notifications.

func runSweeper(lc fx.Lifecycle, maintenance commands.MaintenanceCommands, cfg config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				ticker := time.NewTicker(cfg.Booking.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if _, err := maintenance.SweepExpiredSnapshots(ctx); err != nil {
							logger.Error("snapshot sweep failed", "error", err)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}

type notificationConsumer struct {
	reader      *kafka.Reader
	bookingRepo *repository.BookingRepository
	clock       clock.Clock
	logger      *slog.Logger
}

func newNotificationConsumer(
	cfg config.Config,
	bookingRepo *repository.BookingRepository,
	clock clock.Clock,
	logger *slog.Logger,
) *notificationConsumer {
	return &notificationConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.NotificationsTopic,
			GroupID: cfg.Kafka.GroupID,
		}),
		bookingRepo: bookingRepo,
		clock:       clock,
		logger:      logger,
	}
}

func (c *notificationConsumer) run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("notification read failed", "error", err)
			continue
		}

		var ev events.BookingEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.logger.Warn("skipping malformed notification event", "error", err)
			continue
		}

		if ev.Event != events.EventBookingTicketed {
			continue
		}

		c.logger.Info("booking notification dispatched",
			"booking_id", ev.BookingID,
			"event", ev.Event,
		)
		if err := c.bookingRepo.MarkNotificationSent(ctx, ev.BookingID, c.clock.Now()); err != nil {
			c.logger.Error("failed to mark notification sent",
				"booking_id", ev.BookingID,
				"error", err,
			)
		}
	}
}

func runNotifier(lc fx.Lifecycle, consumer *notificationConsumer, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("starting notification consumer")
			go consumer.run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return consumer.reader.Close()
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.Module,
		fx.Provide(
			repository.NewBookingRepository,
			newNotificationConsumer,
		),
		fx.Invoke(
			runSweeper,
			runNotifier,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("worker failed to start", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("worker failed to stop cleanly", "error", err)
	}

	slog.Info("worker stopped")
}
