package components

import (
	"farelock/internal/handler"
	"farelock/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSnapshotHandler,
		api.NewBookingHandler,
		api.NewPaymentHandler,
		api.NewSeatHandler,
	),
	fx.Invoke(handler.NewRouter),
)
