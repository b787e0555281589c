package service

import (
	"sync"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/pkg/logger"

	"github.com/pkg/errors"
)

// ErrIntervalMismatch — свеча пришла с интервалом, отличным от уже
// зафиксированного для символа. Смена интервала = unsubscribe/resubscribe.
var ErrIntervalMismatch = errors.New("candle interval mismatch")

// window — история одного символа. Владеет свечами эксклюзивно,
// наружу отдаются только копии.
type window struct {
	interval string
	capacity int
	candles  []models.Candle
}

// Store — ограниченная история закрытых свечей по символам.
type Store struct {
	mu      sync.Mutex
	windows map[string]*window
}

func NewStore() *Store {
	return &Store{windows: make(map[string]*window)}
}

// Update добавляет закрытую свечу и возвращает снапшот окна.
// Дубликат или свеча из прошлого (close_time <= последней) — no-op,
// возвращается текущий снапшот. Пропуски в close_time логируются,
// но ничем не заполняются.
func (s *Store) Update(symbol, interval string, c models.Candle) ([]models.Candle, error) {
	interval = helper.NormInterval(interval)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[symbol]
	if !ok {
		w = &window{interval: interval, capacity: 1}
		s.windows[symbol] = w
	}

	if w.interval != interval {
		return nil, errors.Wrapf(ErrIntervalMismatch, "%s: have %s, got %s", symbol, w.interval, interval)
	}

	if n := len(w.candles); n > 0 {
		last := w.candles[n-1]
		if !c.CloseTime.After(last.CloseTime) {
			// at-least-once доставка: повтор просто игнорируем
			return w.snapshot(), nil
		}
		if d := helper.IntervalDuration(interval); d > 0 && c.CloseTime.Sub(last.CloseTime) > d {
			logger.Warn("[STORE] feed gap %s %s: %s -> %s",
				symbol, interval, last.CloseTime.Format("15:04:05"), c.CloseTime.Format("15:04:05"))
		}
	}

	w.candles = append(w.candles, c)
	w.trim()

	return w.snapshot(), nil
}

// SetCapacity задаёт ёмкость окна (максимум из min_candles активных
// стратегий). Рост — окно просто продолжает накапливать; усечение
// применяется лениво на следующем Update.
func (s *Store) SetCapacity(symbol string, capacity int) {
	if capacity < 1 {
		capacity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[symbol]
	if !ok {
		return
	}
	w.capacity = capacity
}

// Init регистрирует символ с интервалом и ёмкостью до первого Update
// (нужно для бэкфила на warmup'е).
func (s *Store) Init(symbol, interval string, capacity int) {
	if capacity < 1 {
		capacity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.windows[symbol]; ok {
		return
	}
	s.windows[symbol] = &window{interval: helper.NormInterval(interval), capacity: capacity}
}

// Snapshot — копия окна (может быть пустой).
func (s *Store) Snapshot(symbol string) []models.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[symbol]
	if !ok {
		return nil
	}
	return w.snapshot()
}

func (s *Store) Len(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[symbol]
	if !ok {
		return 0
	}
	return len(w.candles)
}

func (s *Store) Interval(symbol string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[symbol]
	if !ok {
		return "", false
	}
	return w.interval, true
}

// Drop сбрасывает историю символа (смена интервала, делист).
func (s *Store) Drop(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, symbol)
}

func (w *window) trim() {
	if over := len(w.candles) - w.capacity; over > 0 {
		w.candles = append(w.candles[:0], w.candles[over:]...)
	}
}

func (w *window) snapshot() []models.Candle {
	out := make([]models.Candle, len(w.candles))
	copy(out, w.candles)
	return out
}
