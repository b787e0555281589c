package service

import (
	"math"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// Bollinger: пробой верхней/нижней полосы. Уверенность = 70% глубина
// пробоя, нормированная шириной полос, + 30% удаление от средней.
type Bollinger struct {
	period int
	stdDev float64
}

func NewBollinger(p models.StrategyParams) *Bollinger {
	s := &Bollinger{period: p.BBPeriod, stdDev: p.BBStdDev}
	if s.period <= 0 {
		s.period = 20
	}
	if s.stdDev == 0 {
		s.stdDev = 2
	}
	return s
}

func (s *Bollinger) Type() models.StrategyType { return models.StrategyBollinger }

func (s *Bollinger) MinCandles() int { return s.period }

func (s *Bollinger) Evaluate(cs []models.Candle) (models.StrategySignal, bool) {
	if len(cs) < s.MinCandles() {
		return models.StrategySignal{}, false
	}

	window := tail(closes(cs), s.period)
	middle := mean(window)
	sd := stdDev(window, middle)
	upper := middle + s.stdDev*sd
	lower := middle - s.stdDev*sd
	width := upper - lower

	close := cs[len(cs)-1].Close
	metrics := map[string]float64{"upper": upper, "middle": middle, "lower": lower, "close": close}

	if width == 0 {
		// плоское окно: полос нет, сигналить нечем
		return neutral(models.StrategyBollinger, metrics), true
	}

	var action models.Action
	var penetration float64
	switch {
	case close < lower:
		action = models.ActionBuy
		penetration = (lower - close) / width
	case close > upper:
		action = models.ActionSell
		penetration = (close - upper) / width
	default:
		return neutral(models.StrategyBollinger, metrics), true
	}

	trendCtx := math.Abs(close-middle) / width
	conf := 0.7*helper.Clamp01(penetration) + 0.3*helper.Clamp01(trendCtx)

	metrics["penetration"] = penetration
	metrics["trend_ctx"] = trendCtx

	return models.StrategySignal{
		Strategy:   models.StrategyBollinger,
		Action:     action,
		Confidence: helper.Clamp01(conf),
		Metrics:    metrics,
	}, true
}
