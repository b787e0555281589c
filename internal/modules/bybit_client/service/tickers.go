package service

import (
	"context"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Ticker — суточная статистика символа.
type Ticker struct {
	Symbol      string
	LastPrice   float64
	Change24h   float64 // доля, не проценты: 0.05 = +5%
	Turnover24h float64
}

// Tickers — 24h статистика всех линейных перпов.
func (c *Client) Tickers(ctx context.Context) ([]Ticker, error) {
	data, err := c.get(ctx, "/v5/market/tickers?category=linear")
	if err != nil {
		return nil, errors.Wrap(err, "tickers")
	}

	var payload struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				Symbol       string `json:"symbol"`
				LastPrice    string `json:"lastPrice"`
				Price24hPcnt string `json:"price24hPcnt"`
				Turnover24h  string `json:"turnover24h"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, "tickers decode")
	}
	if payload.RetCode != 0 {
		return nil, errors.Errorf("bybit error %d: %s", payload.RetCode, payload.RetMsg)
	}

	out := make([]Ticker, 0, len(payload.Result.List))
	for _, it := range payload.Result.List {
		last, err1 := strconv.ParseFloat(it.LastPrice, 64)
		change, err2 := strconv.ParseFloat(it.Price24hPcnt, 64)
		turnover, err3 := strconv.ParseFloat(it.Turnover24h, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		out = append(out, Ticker{
			Symbol:      it.Symbol,
			LastPrice:   last,
			Change24h:   change,
			Turnover24h: turnover,
		})
	}
	return out, nil
}

// TopMovers — n лидеров за сутки. direction: "gainers" | "losers".
func (c *Client) TopMovers(ctx context.Context, direction string, n int) ([]Ticker, error) {
	tickers, err := c.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(tickers, func(i, j int) bool {
		if direction == "losers" {
			return tickers[i].Change24h < tickers[j].Change24h
		}
		return tickers[i].Change24h > tickers[j].Change24h
	})

	if n > len(tickers) {
		n = len(tickers)
	}
	return tickers[:n], nil
}
