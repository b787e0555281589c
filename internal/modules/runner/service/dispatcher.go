package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	pricestore "signal_bot/internal/modules/pricestore/service"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

// ErrBadInterval — интервал не из нотации Bybit v5.
var ErrBadInterval = errors.New("unsupported interval")

// Dispatcher раздаёт свечи по конвейерам символов и доставляет
// агрегированные сигналы подписчикам. Разные символы обрабатываются
// параллельно, внутри символа цикл строго последовательный.
type Dispatcher struct {
	store *pricestore.Store
	reg   *strategy.Registry
	agg   *strategy.Aggregator
	rec   *metrics.Recorder

	mu        sync.Mutex
	ctx       context.Context
	pipelines map[string]*pipeline
	sinks     []SignalSink
	intervals map[string]string // символ → интервал
	interval  string            // дефолт для новых подписок
}

func NewDispatcher(cfg *config.Config, store *pricestore.Store, reg *strategy.Registry, agg *strategy.Aggregator, rec *metrics.Recorder) *Dispatcher {
	return &Dispatcher{
		store:     store,
		reg:       reg,
		agg:       agg,
		rec:       rec,
		pipelines: make(map[string]*pipeline),
		intervals: make(map[string]string),
		interval:  helper.NormInterval(cfg.Engine.DefaultInterval),
	}
}

// Start привязывает конвейеры к контексту приложения. До Start свечи
// игнорируются.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx = ctx
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	pipes := make([]*pipeline, 0, len(d.pipelines))
	for _, p := range d.pipelines {
		pipes = append(pipes, p)
	}
	d.pipelines = make(map[string]*pipeline)
	d.mu.Unlock()

	for _, p := range pipes {
		p.stop()
	}
}

// OnAggregatedSignal регистрирует получателя сигналов.
func (d *Dispatcher) OnAggregatedSignal(cb SignalSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, cb)
}

// OnCandle — вход фида. Не блокирует вызывающего дольше, чем на
// вытеснение из mailbox.
func (d *Dispatcher) OnCandle(t models.CandleTick) {
	d.mu.Lock()
	if d.ctx == nil {
		d.mu.Unlock()
		return
	}
	p, ok := d.pipelines[t.Symbol]
	if !ok {
		p = newPipeline(t.Symbol, d.store, d.reg, d.agg, d.rec)
		d.pipelines[t.Symbol] = p
		go p.run(d.ctx, d.emit)
	}
	d.mu.Unlock()

	p.offer(t)
}

// Subscribe включает стратегии для символа и подгоняет ёмкость окна.
// Возвращает итоговый активный набор для подтверждения в чате.
func (d *Dispatcher) Subscribe(symbol string, types []models.StrategyType) ([]models.StrategyType, error) {
	var set []models.StrategyType
	var err error
	d.runBetweenCycles(symbol, func() {
		set, err = d.reg.Enable(symbol, types)
		if err != nil {
			return
		}
		capacity := d.reg.WindowCapacity(symbol)
		d.store.Init(symbol, d.intervalFor(symbol), capacity)
		d.store.SetCapacity(symbol, capacity)
	})
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if _, ok := d.intervals[symbol]; !ok {
		d.intervals[symbol] = d.interval
	}
	d.mu.Unlock()

	return set, nil
}

// Unsubscribe выключает стратегии (пустой список — все). Когда у символа
// не остаётся стратегий, его конвейер и окно сносятся.
func (d *Dispatcher) Unsubscribe(symbol string, types []models.StrategyType) []models.StrategyType {
	var set []models.StrategyType
	d.runBetweenCycles(symbol, func() {
		set = d.reg.Disable(symbol, types)
		if set == nil {
			d.store.Drop(symbol)
		} else {
			d.store.SetCapacity(symbol, d.reg.WindowCapacity(symbol))
		}
	})

	if set == nil {
		d.mu.Lock()
		p := d.pipelines[symbol]
		delete(d.pipelines, symbol)
		delete(d.intervals, symbol)
		d.mu.Unlock()
		if p != nil {
			p.stop()
		}
	}
	return set
}

// SetInterval меняет таймфрейм символа: окно сбрасывается и копится
// заново, стратегии остаются активными. Пустой символ — все подписанные
// плюс дефолт для будущих.
func (d *Dispatcher) SetInterval(symbol, interval string) error {
	if !helper.ValidInterval(interval) {
		return errors.Wrapf(ErrBadInterval, "%q", interval)
	}
	norm := helper.NormInterval(interval)

	if symbol == "" {
		d.mu.Lock()
		d.interval = norm
		symbols := make([]string, 0, len(d.intervals))
		for s := range d.intervals {
			symbols = append(symbols, s)
		}
		d.mu.Unlock()

		for _, s := range symbols {
			if err := d.SetInterval(s, norm); err != nil {
				return err
			}
		}
		return nil
	}

	d.runBetweenCycles(symbol, func() {
		d.store.Drop(symbol)
		d.store.Init(symbol, norm, d.reg.WindowCapacity(symbol))
		logger.Info("[RUNNER] %s interval -> %s, window reset", symbol, norm)
	})

	d.mu.Lock()
	d.intervals[symbol] = norm
	d.mu.Unlock()
	return nil
}

// Interval — текущий таймфрейм символа (дефолтный, если подписки нет).
func (d *Dispatcher) Interval(symbol string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if iv, ok := d.intervals[symbol]; ok {
		return iv
	}
	return d.interval
}

func (d *Dispatcher) ActiveStrategies(symbol string) []models.StrategyType {
	return d.reg.ActiveTypes(symbol)
}

func (d *Dispatcher) Symbols() []string {
	return d.reg.Symbols()
}

func (d *Dispatcher) intervalFor(symbol string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if iv, ok := d.intervals[symbol]; ok {
		return iv
	}
	return d.interval
}

// runBetweenCycles выполняет fn в горутине конвейера символа — строго
// между двумя циклами оценки, никогда посреди цикла. Без конвейера
// (символ ещё не получал свечей) fn выполняется на месте.
func (d *Dispatcher) runBetweenCycles(symbol string, fn func()) {
	d.mu.Lock()
	p := d.pipelines[symbol]
	d.mu.Unlock()

	if p == nil {
		fn()
		return
	}

	done := make(chan struct{})
	select {
	case p.cmds <- func() { fn(); close(done) }:
		select {
		case <-done:
		case <-p.done:
		}
	case <-p.done:
		fn()
	}
}

func (d *Dispatcher) emit(sig models.AggregatedSignal) {
	d.mu.Lock()
	sinks := make([]SignalSink, len(d.sinks))
	copy(sinks, d.sinks)
	d.mu.Unlock()

	for _, cb := range sinks {
		cb(sig)
	}
}
