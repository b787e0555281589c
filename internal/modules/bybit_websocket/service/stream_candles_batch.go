package service

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// StreamCandlesBatch — один сокет на пачку символов одного таймфрейма.
// Отдаёт только подтверждённые (закрытые) свечи; реконнект с бэкоффом
// в секунду, keepalive ping каждые 20s — иначе Bybit рвёт соединение.
func (c *Client) StreamCandlesBatch(ctx context.Context, symbols []string, interval string) <-chan models.CandleTick {
	ch := make(chan models.CandleTick)

	go func() {
		defer close(ch)

		if len(symbols) == 0 {
			return
		}

		iv := helper.NormInterval(interval)
		args := make([]string, 0, len(symbols))
		for _, s := range symbols {
			args = append(args, "kline."+iv+"."+s)
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			logger.Info("[WS] connect %s, %d symbols", iv, len(symbols))
			conn, _, err := c.wsDialer.DialContext(ctx, c.cfg.Bybit.WsURL, nil)
			if err != nil {
				logger.Error("[WS] dial: %v", err)
				c.rec.WSReconnects.Inc()
				time.Sleep(time.Second)
				continue
			}

			sub := map[string]any{"op": "subscribe", "args": args}
			if err := conn.WriteJSON(sub); err != nil {
				logger.Error("[WS] subscribe: %v", err)
				_ = conn.Close()
				c.rec.WSReconnects.Inc()
				continue
			}

			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(20 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-stopPing:
						return
					case <-t.C:
						_ = conn.WriteJSON(map[string]string{"op": "ping"})
					}
				}
			}()

			c.readLoop(ctx, conn, iv, ch)
			close(stopPing)
			_ = conn.Close()
			c.rec.WSReconnects.Inc()

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()

	return ch
}

type klineFrame struct {
	Topic string `json:"topic"`
	Data  []struct {
		Start    int64  `json:"start"`
		End      int64  `json:"end"`
		Interval string `json:"interval"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
		Turnover string `json:"turnover"`
		Confirm  bool   `json:"confirm"`
	} `json:"data"`
}

func (c *Client) readLoop(ctx context.Context, conn wsConn, interval string, out chan<- models.CandleTick) {
	prefix := "kline." + interval + "."
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("[WS] read: %v", err)
			}
			return
		}

		var frame klineFrame
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue // служебные кадры (pong, subscribe ack)
		}
		if len(frame.Topic) <= len(prefix) || frame.Topic[:len(prefix)] != prefix {
			continue
		}
		symbol := frame.Topic[len(prefix):]

		for _, row := range frame.Data {
			if !row.Confirm {
				continue // ждём закрытия свечи
			}

			open, err1 := strconv.ParseFloat(row.Open, 64)
			high, err2 := strconv.ParseFloat(row.High, 64)
			low, err3 := strconv.ParseFloat(row.Low, 64)
			closep, err4 := strconv.ParseFloat(row.Close, 64)
			volume, err5 := strconv.ParseFloat(row.Volume, 64)
			turnover, err6 := strconv.ParseFloat(row.Turnover, 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
				continue
			}

			tick := models.CandleTick{
				Symbol:      symbol,
				IntervalRaw: interval,
				Candle: models.Candle{
					Open:      open,
					High:      high,
					Low:       low,
					Close:     closep,
					Volume:    volume,
					Turnover:  turnover,
					CloseTime: time.UnixMilli(row.End),
				},
			}

			select {
			case out <- tick:
			case <-ctx.Done():
				return
			}
		}
	}
}

// wsConn — минимум от *websocket.Conn, нужный read-loop'у (для тестов).
type wsConn interface {
	ReadMessage() (int, []byte, error)
}
