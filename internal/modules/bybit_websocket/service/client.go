package service

import (
	"github.com/gorilla/websocket"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/metrics"
)

// Client — стример публичных kline-топиков Bybit v5 (linear).
type Client struct {
	cfg      *config.Config
	rec      *metrics.Recorder
	wsDialer *websocket.Dialer
}

func NewClient(cfg *config.Config, rec *metrics.Recorder) *Client {
	return &Client{
		cfg:      cfg,
		rec:      rec,
		wsDialer: &websocket.Dialer{},
	}
}
