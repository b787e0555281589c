package service

import (
	"math"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// MACD: смена знака гистограммы, подтверждённая выходом за её
// 5-барное среднее. Уверенность = 50% сила дивергенции + 30% положение
// в недавнем диапазоне гистограммы + 20% консистентность тренда.
type MACD struct {
	fast   int
	slow   int
	signal int
}

func NewMACD(p models.StrategyParams) *MACD {
	s := &MACD{fast: p.MACDFast, slow: p.MACDSlow, signal: p.MACDSignal}
	if s.fast <= 0 {
		s.fast = 12
	}
	if s.slow <= 0 {
		s.slow = 26
	}
	if s.signal <= 0 {
		s.signal = 9
	}
	return s
}

func (s *MACD) Type() models.StrategyType { return models.StrategyMACD }

func (s *MACD) MinCandles() int { return s.slow + 1 }

func (s *MACD) Evaluate(cs []models.Candle) (models.StrategySignal, bool) {
	if len(cs) < s.MinCandles() {
		return models.StrategySignal{}, false
	}

	prices := closes(cs)
	emaFast := emaSeries(prices, s.fast)
	emaSlow := emaSeries(prices, s.slow)

	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := emaSeries(macdLine, s.signal)

	hist := make([]float64, len(prices))
	for i := range prices {
		hist[i] = macdLine[i] - signalLine[i]
	}

	n := len(hist)
	h, prev := hist[n-1], hist[n-2]
	crossed := (h > 0 && prev <= 0) || (h < 0 && prev >= 0)
	if !crossed || h == 0 {
		return neutral(models.StrategyMACD, map[string]float64{"hist": h}), true
	}

	// подтверждение: новая гистограмма должна выйти за своё 5-барное среднее
	avg5 := mean(tail(hist, 5))
	if (h > 0 && h <= avg5) || (h < 0 && h >= avg5) {
		return neutral(models.StrategyMACD, map[string]float64{"hist": h, "avg5": avg5}), true
	}

	action := models.ActionBuy
	if h < 0 {
		action = models.ActionSell
	}

	recent := tail(hist, 12)
	divergence := safeDiv(math.Abs(h), 2*meanAbs(recent))
	lo, hi := minMax(recent)
	rangeStrength := safeDiv(math.Abs(h), hi-lo)

	// доля последних дельт MACD-линии, согласных с направлением
	agree, total := 0, 0
	for i := n - 5; i < n; i++ {
		if i < 1 {
			continue
		}
		d := macdLine[i] - macdLine[i-1]
		total++
		if (action == models.ActionBuy && d > 0) || (action == models.ActionSell && d < 0) {
			agree++
		}
	}
	consistency := safeDiv(float64(agree), float64(total))

	conf := 0.5*helper.Clamp01(divergence) + 0.3*helper.Clamp01(rangeStrength) + 0.2*consistency

	return models.StrategySignal{
		Strategy:   models.StrategyMACD,
		Action:     action,
		Confidence: helper.Clamp01(conf),
		Metrics: map[string]float64{
			"hist":        h,
			"macd":        macdLine[n-1],
			"signal":      signalLine[n-1],
			"divergence":  divergence,
			"range":       rangeStrength,
			"consistency": consistency,
		},
	}, true
}
