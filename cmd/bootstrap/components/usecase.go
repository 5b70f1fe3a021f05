package components

import (
	"farelock/internal/pkg/clock"
	"farelock/internal/usecase/commands"
	"farelock/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewPricingUseCase,
		commands.NewReviewUseCase,
		commands.NewHoldUseCase,
		commands.NewPaymentUseCase,
		commands.NewConfirmUseCase,
		commands.NewInstantBookUseCase,
		commands.NewSeatUseCase,
		commands.NewCancelUseCase,
		commands.NewMaintenanceUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)
