package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// Klines — закрытые свечи для бэкфила, от старых к новым. Текущая
// (незакрытая) свеча отрезается.
// Формат строки Bybit: [start, open, high, low, close, volume, turnover].
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	iv := helper.NormInterval(interval)
	path := fmt.Sprintf("/v5/market/kline?category=linear&symbol=%s&interval=%s&limit=%d",
		url.QueryEscape(symbol), url.QueryEscape(iv), limit+1)

	data, err := c.get(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "klines %s", symbol)
	}

	var payload struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List [][]string `json:"list"`
		} `json:"result"`
	}
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, "klines decode")
	}
	if payload.RetCode != 0 {
		return nil, errors.Errorf("bybit error %d: %s", payload.RetCode, payload.RetMsg)
	}

	rows := payload.Result.List
	if len(rows) == 0 {
		return nil, nil
	}

	dur := helper.IntervalDuration(iv)
	out := make([]models.Candle, 0, len(rows))
	// Bybit отдаёт от новых к старым; первая строка — текущая свеча
	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) < 7 {
			continue
		}
		startMs, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(row[1], 64)
		high, err2 := strconv.ParseFloat(row[2], 64)
		low, err3 := strconv.ParseFloat(row[3], 64)
		closep, err4 := strconv.ParseFloat(row[4], 64)
		volume, err5 := strconv.ParseFloat(row[5], 64)
		turnover, err6 := strconv.ParseFloat(row[6], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
			continue
		}

		out = append(out, models.Candle{
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closep,
			Volume:    volume,
			Turnover:  turnover,
			CloseTime: time.UnixMilli(startMs).Add(dur),
		})
	}
	return out, nil
}
