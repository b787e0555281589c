package subscriptions

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/subscriptions/service"
)

func Module() fx.Option {
	return fx.Module("subscriptions",
		fx.Provide(
			service.NewRepo, // *service.Repo
		),
		fx.Invoke(func(lc fx.Lifecycle, repo *service.Repo) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return repo.EnsureSchema(ctx)
				},
			})
		}),
	)
}
