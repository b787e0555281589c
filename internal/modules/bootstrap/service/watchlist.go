package service

import (
	"context"
	"sort"

	bybit "signal_bot/internal/modules/bybit_client/service"
)

// Watchlist выбирает отслеживаемые символы: топ USDT-перпов по
// суточному обороту.
type Watchlist struct {
	client *bybit.Client
}

func NewWatchlist(client *bybit.Client) *Watchlist {
	return &Watchlist{client: client}
}

func (w *Watchlist) Top(ctx context.Context, n int) ([]string, error) {
	instruments, err := w.client.Instruments(ctx)
	if err != nil {
		return nil, err
	}
	tradeable := make(map[string]struct{}, len(instruments))
	for _, s := range instruments {
		tradeable[s] = struct{}{}
	}

	tickers, err := w.client.Tickers(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tickers, func(i, j int) bool {
		return tickers[i].Turnover24h > tickers[j].Turnover24h
	})

	out := make([]string, 0, n)
	for _, t := range tickers {
		if _, ok := tradeable[t.Symbol]; !ok {
			continue
		}
		out = append(out, t.Symbol)
		if len(out) == n {
			break
		}
	}
	return out, nil
}
