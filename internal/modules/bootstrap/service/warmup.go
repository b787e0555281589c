package service

import (
	"context"
	"sync"
	"sync/atomic"

	bybit "signal_bot/internal/modules/bybit_client/service"
	pricestore "signal_bot/internal/modules/pricestore/service"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
)

// Warmuper забивает окна историей через REST, чтобы стратегии с большим
// min_candles (ichimoku — 120) не ждали живой фид неделями.
type Warmuper struct {
	client *bybit.Client
	store  *pricestore.Store
	reg    *strategy.Registry

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewWarmuper(client *bybit.Client, store *pricestore.Store, reg *strategy.Registry) *Warmuper {
	return &Warmuper{
		client: client,
		store:  store,
		reg:    reg,
		sem:    make(chan struct{}, 8),
	}
}

func (w *Warmuper) Warmup(ctx context.Context, symbols []string, interval string) error {
	if len(symbols) == 0 {
		return nil
	}

	var cnt atomic.Int64
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, sym := range symbols {
		sym := sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.sem <- struct{}{}
			defer func() { <-w.sem }()

			need := w.reg.WindowCapacity(sym)
			if need == 0 {
				return
			}

			candles, err := w.client.Klines(ctx, sym, interval, need)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			for _, c := range candles {
				if _, err := w.store.Update(sym, interval, c); err != nil {
					logger.Warn("[BOOT] backfill %s: %v", sym, err)
					return
				}
				cnt.Add(1)
			}
		}()
	}
	wg.Wait()

	logger.Info("[BOOT] warmup done: %d symbols, %d candles", len(symbols), cnt.Load())
	return firstErr
}
