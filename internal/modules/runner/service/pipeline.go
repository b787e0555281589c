package service

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"signal_bot/internal/models"
	pricestore "signal_bot/internal/modules/pricestore/service"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

// SignalSink получает готовые агрегированные сигналы. Колбэк не должен
// блокировать: потребитель буферизует у себя, конвейер не ждёт доставку.
type SignalSink func(models.AggregatedSignal)

// pipeline — последовательный цикл одного символа:
// свеча → стор → активные стратегии → агрегатор → эмит.
// mailbox ёмкостью 1 с вытеснением старой свечи: отстающий конвейер
// обрабатывает только последнюю свечу, очередь не растёт.
type pipeline struct {
	symbol string

	store *pricestore.Store
	reg   *strategy.Registry
	agg   *strategy.Aggregator
	rec   *metrics.Recorder

	mailbox chan models.CandleTick
	cmds    chan func() // конфигурация применяется строго между циклами
	quit    chan struct{}
	done    chan struct{}
}

func newPipeline(symbol string, store *pricestore.Store, reg *strategy.Registry, agg *strategy.Aggregator, rec *metrics.Recorder) *pipeline {
	return &pipeline{
		symbol:  symbol,
		store:   store,
		reg:     reg,
		agg:     agg,
		rec:     rec,
		mailbox: make(chan models.CandleTick, 1),
		cmds:    make(chan func(), 16),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// offer кладёт свечу в mailbox, вытесняя необработанную.
// Вызывается одной горутиной фида на символ.
func (p *pipeline) offer(t models.CandleTick) {
	select {
	case p.mailbox <- t:
	default:
		select {
		case <-p.mailbox:
			p.rec.CoalescedTotal.Inc()
		default:
		}
		p.mailbox <- t
	}
}

func (p *pipeline) run(ctx context.Context, emit SignalSink) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case cmd := <-p.cmds:
			cmd()
		case t := <-p.mailbox:
			p.process(t, emit)
		}
	}
}

func (p *pipeline) process(t models.CandleTick, emit SignalSink) {
	start := time.Now()
	span := opentracing.GlobalTracer().StartSpan("pipeline.evaluate")
	span.SetTag("symbol", p.symbol)
	defer span.Finish()

	snap, err := p.store.Update(t.Symbol, t.IntervalRaw, t.Candle)
	if err != nil {
		logger.Error("[PIPE] %s update: %v", t.Symbol, err)
		return
	}
	p.rec.CandlesTotal.WithLabelValues(t.Symbol).Inc()

	var signals []models.StrategySignal
	for _, s := range p.reg.ActiveFor(t.Symbol) {
		sig, ok := s.Evaluate(snap)
		if !ok {
			continue // прогрев: окно короче min_candles
		}
		signals = append(signals, sig)
	}

	out, ok := p.agg.Aggregate(t.Symbol, t.Candle.Close, t.Candle.CloseTime, signals)
	p.rec.EvalDuration.Observe(time.Since(start).Seconds())
	if !ok {
		return
	}

	p.rec.SignalsTotal.WithLabelValues(out.Symbol, string(out.Action)).Inc()
	emit(out)
}

func (p *pipeline) stop() {
	close(p.quit)
	<-p.done
}
