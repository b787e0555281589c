package bybit_client

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/bybit_client/service"
)

func Module() fx.Option {
	return fx.Module("bybit_client",
		fx.Provide(
			service.NewClient, // *service.Client
		),
	)
}
