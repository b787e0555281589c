package service

import (
	"sort"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// VolumeProfile: объём раскладывается по ценовым уровням окна, из них
// строятся POC и зона стоимости (70% объёма). Выход цены за зону даёт
// сигнал; уверенность = 60% концентрация объёма в POC (насыщение на 5%)
// + 40% доля недавних свечей, отбитых от границы зоны.
type VolumeProfile struct {
	levels       int
	valueAreaPct float64
}

func NewVolumeProfile(p models.StrategyParams) *VolumeProfile {
	s := &VolumeProfile{levels: p.ProfileLevels, valueAreaPct: p.ValueAreaPct}
	if s.levels <= 0 {
		s.levels = 100
	}
	if s.valueAreaPct == 0 {
		s.valueAreaPct = 0.70
	}
	return s
}

func (s *VolumeProfile) Type() models.StrategyType { return models.StrategyVolumeProfile }

func (s *VolumeProfile) MinCandles() int { return 50 }

func (s *VolumeProfile) Evaluate(cs []models.Candle) (models.StrategySignal, bool) {
	if len(cs) < s.MinCandles() {
		return models.StrategySignal{}, false
	}

	lo := lowestLow(cs, len(cs))
	hi := highestHigh(cs, len(cs))
	if hi == lo {
		return neutral(models.StrategyVolumeProfile, nil), true
	}

	step := (hi - lo) / float64(s.levels)
	bins := make([]float64, s.levels)
	total := 0.0

	// объём свечи размазывается пропорционально перекрытию [low, high] с бином
	for _, c := range cs {
		span := c.High - c.Low
		total += c.Volume
		if span == 0 {
			i := binIndex(c.Low, lo, step, s.levels)
			bins[i] += c.Volume
			continue
		}
		first := binIndex(c.Low, lo, step, s.levels)
		last := binIndex(c.High, lo, step, s.levels)
		for i := first; i <= last; i++ {
			binLo := lo + float64(i)*step
			binHi := binLo + step
			overlap := minF(c.High, binHi) - maxF(c.Low, binLo)
			if overlap > 0 {
				bins[i] += c.Volume * overlap / span
			}
		}
	}
	if total == 0 {
		return neutral(models.StrategyVolumeProfile, nil), true
	}

	poc := 0
	for i, v := range bins {
		if v > bins[poc] {
			poc = i
		}
	}

	// зона стоимости: бины по убыванию объёма до 70% суммы
	order := make([]int, s.levels)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return bins[order[a]] > bins[order[b]] })

	vaLoIdx, vaHiIdx := poc, poc
	acc := 0.0
	for _, i := range order {
		acc += bins[i]
		if i < vaLoIdx {
			vaLoIdx = i
		}
		if i > vaHiIdx {
			vaHiIdx = i
		}
		if acc >= s.valueAreaPct*total {
			break
		}
	}
	vaLow := lo + float64(vaLoIdx)*step
	vaHigh := lo + float64(vaHiIdx+1)*step

	close := cs[len(cs)-1].Close
	metrics := map[string]float64{
		"poc":     lo + (float64(poc)+0.5)*step,
		"va_low":  vaLow,
		"va_high": vaHigh,
		"close":   close,
	}

	var action models.Action
	switch {
	case close < vaLow:
		action = models.ActionBuy
	case close > vaHigh:
		action = models.ActionSell
	default:
		return neutral(models.StrategyVolumeProfile, metrics), true
	}

	concentration := helper.Clamp01(bins[poc] / total / 0.05)

	// отбой: свеча проколола границу зоны, но закрылась внутри
	rejected, checked := 0, 0
	start := len(cs) - 10
	if start < 0 {
		start = 0
	}
	for _, c := range cs[start:] {
		checked++
		if action == models.ActionBuy {
			if c.Low < vaLow && c.Close >= vaLow {
				rejected++
			}
		} else {
			if c.High > vaHigh && c.Close <= vaHigh {
				rejected++
			}
		}
	}
	rejection := safeDiv(float64(rejected), float64(checked))

	conf := 0.6*concentration + 0.4*rejection

	metrics["concentration"] = concentration
	metrics["rejection"] = rejection

	return models.StrategySignal{
		Strategy:   models.StrategyVolumeProfile,
		Action:     action,
		Confidence: helper.Clamp01(conf),
		Metrics:    metrics,
	}, true
}

func binIndex(price, lo, step float64, levels int) int {
	i := int((price - lo) / step)
	if i < 0 {
		return 0
	}
	if i >= levels {
		return levels - 1
	}
	return i
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
