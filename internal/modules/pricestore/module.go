package pricestore

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/pricestore/service"
)

func Module() fx.Option {
	return fx.Module("pricestore",
		fx.Provide(
			service.NewStore, // *service.Store
		),
	)
}
