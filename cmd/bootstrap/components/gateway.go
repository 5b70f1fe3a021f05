package components

import (
	"log/slog"

	"farelock/internal/infra/events"
	"farelock/internal/infra/razorpay"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/config"
	"farelock/internal/usecase/commands"
	"farelock/internal/usecase/queries"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			NewSupplierClient,
			fx.As(new(commands.SupplierGateway)),
			fx.As(new(queries.FareRuleGateway)),
		),
		fx.Annotate(
			NewRazorpayClient,
			fx.As(new(commands.PaymentProvider)),
		),
		fx.Annotate(
			func(p *events.Publisher) *events.Publisher { return p },
			fx.As(new(commands.EventPublisher)),
		),
	),
)

func NewSupplierClient(cfg config.Config, logger *slog.Logger) *supplier.Client {
	return supplier.NewClient(cfg.Supplier, logger)
}

func NewRazorpayClient(cfg config.Config) *razorpay.Client {
	return razorpay.NewClient(cfg.Razorpay)
}
