package runner

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/runner/service"
	"signal_bot/pkg/metrics"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			metrics.NewRecorder,   // *metrics.Recorder
			service.NewDispatcher, // *service.Dispatcher
		),
		fx.Invoke(func(lc fx.Lifecycle, d *service.Dispatcher) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					d.Start(runCtx)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					d.Stop()
					return nil
				},
			})
		}),
	)
}
