package service

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Instruments возвращает символы торгуемых USDT-перпов.
func (c *Client) Instruments(ctx context.Context) ([]string, error) {
	data, err := c.get(ctx, "/v5/market/instruments-info?category=linear&limit=1000")
	if err != nil {
		return nil, errors.Wrap(err, "instruments")
	}

	var payload struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				Symbol       string `json:"symbol"`
				Status       string `json:"status"`
				QuoteCoin    string `json:"quoteCoin"`
				ContractType string `json:"contractType"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, "instruments decode")
	}
	if payload.RetCode != 0 {
		return nil, errors.Errorf("bybit error %d: %s", payload.RetCode, payload.RetMsg)
	}

	out := make([]string, 0, len(payload.Result.List))
	for _, it := range payload.Result.List {
		if it.Status != "Trading" || it.QuoteCoin != "USDT" || it.ContractType != "LinearPerpetual" {
			continue
		}
		out = append(out, it.Symbol)
	}
	return out, nil
}
