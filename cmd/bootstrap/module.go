package bootstrap

import (
	"farelock/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	KafkaModule,
	components.GatewayModule,
	components.RepositoryModule,
	components.UseCaseModule,
)
