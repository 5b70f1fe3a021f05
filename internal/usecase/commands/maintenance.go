package commands

import (
	"context"
	"log/slog"

	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/errs"
)

type MaintenanceCommands interface {
	SweepExpiredSnapshots(ctx context.Context) (int64, error)
}

type maintenanceUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	clock        clock.Clock
	logger       *slog.Logger
}

func NewMaintenanceUseCase(snapshotRepo SnapshotRepository, clock clock.Clock, logger *slog.Logger) MaintenanceCommands {
	return &maintenanceUseCaseImpl{
		snapshotRepo: snapshotRepo,
		clock:        clock,
		logger:       logger,
	}
}

// SweepExpiredSnapshots removes snapshots whose window passed without a
// final booking. The expiry check on every read makes this purely hygienic;
// nothing breaks if the sweep lags.
func (u *maintenanceUseCaseImpl) SweepExpiredSnapshots(ctx context.Context) (int64, error) {
	deleted, err := u.snapshotRepo.DeleteExpired(ctx, u.clock.Now())
	if err != nil {
		return 0, errs.Wrap(err, "failed to sweep expired snapshots")
	}
	if deleted > 0 {
		u.logger.Info("swept expired snapshots", slog.Int64("deleted", deleted))
	}
	return deleted, nil
}
