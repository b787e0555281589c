package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/modules/config"
)

// Client — публичный REST Bybit v5 (категория linear). Ключи не нужны:
// используем только маркет-дату.
type Client struct {
	cfg  *config.Config
	http *http.Client
	base string
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		base: cfg.Bybit.RestURL,
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
