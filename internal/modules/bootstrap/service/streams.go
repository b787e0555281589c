package service

import (
	"context"
	"sync"

	bybitws "signal_bot/internal/modules/bybit_websocket/service"
	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	runner "signal_bot/internal/modules/runner/service"
	"signal_bot/pkg/logger"
)

// StreamManager держит WS-стримы watchlist'а: по сокету на пачку
// символов. Смена интервала = рестарт стримов с новым топиком.
type StreamManager struct {
	ws    *bybitws.Client
	disp  *runner.Dispatcher
	state *health.State
	batch int

	mu       sync.Mutex
	parent   context.Context
	cancel   context.CancelFunc
	symbols  []string
	interval string
}

func NewStreamManager(cfg *config.Config, ws *bybitws.Client, disp *runner.Dispatcher, state *health.State) *StreamManager {
	batch := cfg.Bybit.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return &StreamManager{ws: ws, disp: disp, state: state, batch: batch}
}

// Start поднимает стримы по watchlist'у. Повторный вызов гасит
// предыдущие сокеты и переподписывается.
func (m *StreamManager) Start(ctx context.Context, symbols []string, interval string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}
	m.parent = ctx
	m.symbols = append([]string(nil), symbols...)
	m.interval = interval

	streamCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	for start := 0; start < len(symbols); start += m.batch {
		end := start + m.batch
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		go func() {
			for tick := range m.ws.StreamCandlesBatch(streamCtx, batch, interval) {
				m.state.SetWSConnected(true)
				m.state.TouchCandle(tick.Candle.CloseTime)
				m.disp.OnCandle(tick)
			}
			m.state.SetWSConnected(false)
		}()
	}

	logger.Info("[BOOT] streams up: %d symbols, interval %s", len(symbols), interval)
}

// Restart переподнимает стримы на новом интервале (команда /interval).
func (m *StreamManager) Restart(interval string) {
	m.mu.Lock()
	parent, symbols := m.parent, append([]string(nil), m.symbols...)
	m.mu.Unlock()

	if parent == nil {
		return
	}
	m.Start(parent, symbols, interval)
}

// Symbols — текущий watchlist.
func (m *StreamManager) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.symbols...)
}

func (m *StreamManager) Interval() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

func (m *StreamManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
