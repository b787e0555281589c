package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_bot/internal/modules/bootstrap"
	bybit "signal_bot/internal/modules/bybit_client"
	bybitws "signal_bot/internal/modules/bybit_websocket"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/openrouter"
	"signal_bot/internal/modules/postgres"
	"signal_bot/internal/modules/pricestore"
	"signal_bot/internal/modules/runner"
	"signal_bot/internal/modules/strategy"
	"signal_bot/internal/modules/subscriptions"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Invoke(initTracing),
		postgres.Module(),
		subscriptions.Module(),
		pricestore.Module(),
		strategy.Module(),
		runner.Module(),
		bybit.Module(),
		bybitws.Module(),
		bootstrap.Module(),
		openrouter.Module(),
		telegram.Module(),
		health.Module(),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
	if err := app.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Jaeger.Host == "" {
		return nil
	}
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
