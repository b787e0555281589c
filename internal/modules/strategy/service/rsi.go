package service

import (
	"math"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// RSI: перепроданность/перекупленность по Уайлдеру.
// Уверенность = 60% глубина за порогом (насыщение за 20 пунктов)
// + 40% скорость изменения RSI за 3 бара в сторону сигнала;
// +0.10 в экстремальной зоне (<20 / >80).
type RSI struct {
	period     int
	overbought float64
	oversold   float64
}

func NewRSI(p models.StrategyParams) *RSI {
	s := &RSI{period: p.RSIPeriod, overbought: p.RSIOverbought, oversold: p.RSIOversold}
	if s.period <= 0 {
		s.period = 14
	}
	if s.overbought == 0 {
		s.overbought = 70
	}
	if s.oversold == 0 {
		s.oversold = 30
	}
	return s
}

func (s *RSI) Type() models.StrategyType { return models.StrategyRSI }

func (s *RSI) MinCandles() int { return s.period + 1 }

func (s *RSI) Evaluate(cs []models.Candle) (models.StrategySignal, bool) {
	if len(cs) < s.MinCandles() {
		return models.StrategySignal{}, false
	}

	series := rsiSeries(closes(cs), s.period)
	r := series[len(series)-1]

	var action models.Action
	var dist float64
	switch {
	case r < s.oversold:
		action = models.ActionBuy
		dist = (s.oversold - r) / 20
	case r > s.overbought:
		action = models.ActionSell
		dist = (r - s.overbought) / 20
	default:
		return neutral(models.StrategyRSI, map[string]float64{"rsi": r}), true
	}

	// моментум засчитывается только когда RSI движется в сторону сигнала
	mom := 0.0
	if n := len(series); n >= 4 {
		d := series[n-1] - series[n-4]
		if (action == models.ActionBuy && d < 0) || (action == models.ActionSell && d > 0) {
			mom = math.Abs(d) / 10
		}
	}

	conf := 0.6*helper.Clamp01(dist) + 0.4*helper.Clamp01(mom)
	if r < 20 || r > 80 {
		conf += 0.10
	}

	return models.StrategySignal{
		Strategy:   models.StrategyRSI,
		Action:     action,
		Confidence: helper.Clamp01(conf),
		Metrics:    map[string]float64{"rsi": r, "distance": dist, "momentum": mom},
	}, true
}
