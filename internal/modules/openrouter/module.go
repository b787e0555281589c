package openrouter

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/openrouter/service"
)

func Module() fx.Option {
	return fx.Module("openrouter",
		fx.Provide(
			service.NewClient, // *service.Client
		),
	)
}
