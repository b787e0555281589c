package service

import (
	"math"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// Ichimoku с крипто-периодами 20/60/120. Облако считается без сдвига
// вперёд: сигналим по текущему положению цены относительно него.
// Уверенность = 40% расстояние от края облака + 30% сила TK-креста
// + 30% толщина облака; всё нормировано диапазоном последних 20 баров.
type Ichimoku struct {
	tenkan int
	kijun  int
	senkou int
}

func NewIchimoku(p models.StrategyParams) *Ichimoku {
	s := &Ichimoku{tenkan: p.TenkanPeriod, kijun: p.KijunPeriod, senkou: p.SenkouPeriod}
	if s.tenkan <= 0 {
		s.tenkan = 20
	}
	if s.kijun <= 0 {
		s.kijun = 60
	}
	if s.senkou <= 0 {
		s.senkou = 120
	}
	return s
}

func (s *Ichimoku) Type() models.StrategyType { return models.StrategyIchimoku }

func (s *Ichimoku) MinCandles() int { return s.senkou }

func (s *Ichimoku) Evaluate(cs []models.Candle) (models.StrategySignal, bool) {
	if len(cs) < s.MinCandles() {
		return models.StrategySignal{}, false
	}

	tenkan := (highestHigh(cs, s.tenkan) + lowestLow(cs, s.tenkan)) / 2
	kijun := (highestHigh(cs, s.kijun) + lowestLow(cs, s.kijun)) / 2
	senkouA := (tenkan + kijun) / 2
	senkouB := (highestHigh(cs, s.senkou) + lowestLow(cs, s.senkou)) / 2

	cloudTop := math.Max(senkouA, senkouB)
	cloudBot := math.Min(senkouA, senkouB)
	close := cs[len(cs)-1].Close

	metrics := map[string]float64{
		"tenkan": tenkan, "kijun": kijun,
		"senkou_a": senkouA, "senkou_b": senkouB, "close": close,
	}

	var action models.Action
	var edge float64
	switch {
	case close > cloudTop && tenkan > kijun:
		action = models.ActionBuy
		edge = cloudTop
	case close < cloudBot && tenkan < kijun:
		action = models.ActionSell
		edge = cloudBot
	default:
		return neutral(models.StrategyIchimoku, metrics), true
	}

	norm := highestHigh(cs, s.tenkan) - lowestLow(cs, s.tenkan)
	cloudDist := safeDiv(math.Abs(close-edge), norm)
	tkStrength := safeDiv(math.Abs(tenkan-kijun), norm)
	thickness := safeDiv(cloudTop-cloudBot, norm)

	conf := 0.4*helper.Clamp01(cloudDist) + 0.3*helper.Clamp01(tkStrength) + 0.3*helper.Clamp01(thickness)

	metrics["cloud_dist"] = cloudDist
	metrics["tk_strength"] = tkStrength
	metrics["thickness"] = thickness

	return models.StrategySignal{
		Strategy:   models.StrategyIchimoku,
		Action:     action,
		Confidence: helper.Clamp01(conf),
		Metrics:    metrics,
	}, true
}
