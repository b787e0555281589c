package telegram_bot

import (
	"context"

	"go.uber.org/fx"

	runner "signal_bot/internal/modules/runner/service"
	"signal_bot/internal/modules/telegram_bot/service"
)

func Module() fx.Option {
	return fx.Module("telegram_bot",
		fx.Provide(
			service.NewTelegram, // *service.Telegram
		),
		fx.Invoke(run),
	)
}

// run подключает бота к жизненному циклу: приём команд и доставка
// сигналов живут до отмены контекста приложения.
func run(lc fx.Lifecycle, t *service.Telegram, disp *runner.Dispatcher) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			disp.OnAggregatedSignal(t.EnqueueSignal)
			go t.Run(runCtx)
			go t.RunFlusher(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
