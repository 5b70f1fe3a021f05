package components

import (
	"farelock/internal/infra/cache"
	"farelock/internal/infra/repository"
	"farelock/internal/pkg/config"
	"farelock/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewSnapshotRepository,
			fx.As(new(commands.SnapshotRepository)),
		),
		fx.Annotate(
			repository.NewPaymentRepository,
			fx.As(new(commands.PaymentRepository)),
		),
		fx.Annotate(
			repository.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
		),
		fx.Annotate(
			repository.NewRuleRepository,
			fx.As(new(commands.RuleRepository)),
		),
		fx.Annotate(
			NewSeatLedger,
			fx.As(new(commands.SeatLedger)),
		),
		fx.Annotate(
			NewDraftStore,
			fx.As(new(commands.DraftStore)),
		),
	),
)

func NewSeatLedger(client *redis.Client, cfg config.Config) *cache.SeatLedger {
	return cache.NewSeatLedger(client, cfg.Booking.SeatHoldTTL)
}

// Drafts live as long as the snapshot window: once the snapshot is gone the
// hold cannot be confirmed, so the draft has nothing left to feed.
func NewDraftStore(client *redis.Client, cfg config.Config) *cache.DraftStore {
	return cache.NewDraftStore(client, cfg.Booking.SnapshotTTL)
}
