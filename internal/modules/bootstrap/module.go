package bootstrap

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/bootstrap/service"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	runnersvc "signal_bot/internal/modules/runner/service"
	subssvc "signal_bot/internal/modules/subscriptions/service"
	"signal_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			service.NewWatchlist,     // *service.Watchlist
			service.NewWarmuper,      // *service.Warmuper
			service.NewStreamManager, // *service.StreamManager
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			wl *service.Watchlist,
			wu *service.Warmuper,
			sm *service.StreamManager,
			disp *runnersvc.Dispatcher,
			repo *subssvc.Repo,
			state *healthsvc.State,
		) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go run(runCtx, cfg, wl, wu, sm, disp, repo, state)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					sm.Stop()
					return nil
				},
			})
		}),
	)
}

// run: watchlist → восстановление подписок → прогрев историей → стримы.
func run(
	ctx context.Context,
	cfg *config.Config,
	wl *service.Watchlist,
	wu *service.Warmuper,
	sm *service.StreamManager,
	disp *runnersvc.Dispatcher,
	repo *subssvc.Repo,
	state *healthsvc.State,
) {
	symbols, err := wl.Top(ctx, cfg.Engine.WatchTopN)
	if err != nil {
		logger.Error("[BOOT] watchlist: %v", err)
		return
	}

	// восстанавливаем подписки чатов; без них слушаем все стратегии
	interval := cfg.Engine.DefaultInterval
	strategies := models.AllStrategies()
	subs, err := repo.List(ctx)
	if err != nil {
		logger.Error("[BOOT] subscriptions: %v", err)
	} else if len(subs) > 0 {
		union := make(map[models.StrategyType]struct{})
		latest := subs[0]
		for _, s := range subs {
			for _, st := range s.Strategies {
				union[st] = struct{}{}
			}
			if s.UpdatedAt.After(latest.UpdatedAt) {
				latest = s
			}
		}
		if len(union) > 0 {
			strategies = strategies[:0]
			for _, st := range models.AllStrategies() {
				if _, ok := union[st]; ok {
					strategies = append(strategies, st)
				}
			}
		}
		// интервал движка задаёт последний командовавший чат
		if latest.Interval != "" {
			interval = latest.Interval
		}
	}

	if err := disp.SetInterval("", interval); err != nil {
		logger.Error("[BOOT] set interval: %v", err)
		return
	}
	for _, sym := range symbols {
		if _, err := disp.Subscribe(sym, strategies); err != nil {
			logger.Error("[BOOT] subscribe %s: %v", sym, err)
		}
	}
	state.SetTrackedSymbols(len(symbols))

	if err := wu.Warmup(ctx, symbols, interval); err != nil {
		logger.Warn("[BOOT] warmup incomplete: %v", err)
	}

	sm.Start(ctx, symbols, interval)
	state.SetReady(true)
}
