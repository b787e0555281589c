package service

import (
	"math"

	"signal_bot/internal/models"
)

func closes(cs []models.Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// emaSeries — EMA с посевом первым значением: ряд определён с нулевого
// индекса, без NaN-окна в начале.
func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + k*(values[i]-out[i-1])
	}
	return out
}

// rsiSeries — RSI по Уайлдеру. Средние gain/loss сеются первой дельтой,
// дальше сглаживание alpha=1/period. out[0] условно 50 (дельты ещё нет),
// к min_candles ряд сходится.
func rsiSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = 50

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = (1-alpha)*avgGain + alpha*gain
			avgLoss = (1-alpha)*avgLoss + alpha*loss
		}

		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanAbs(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v)
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// highestHigh/lowestLow по последним n свечам.
func highestHigh(cs []models.Candle, n int) float64 {
	hi := math.Inf(-1)
	for _, c := range cs[len(cs)-n:] {
		if c.High > hi {
			hi = c.High
		}
	}
	return hi
}

func lowestLow(cs []models.Candle, n int) float64 {
	lo := math.Inf(1)
	for _, c := range cs[len(cs)-n:] {
		if c.Low < lo {
			lo = c.Low
		}
	}
	return lo
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// safeDiv: деление с защитой от нулевого знаменателя — компонент
// уверенности в этом случае обнуляется, а не валит всю оценку.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// swingPoint — локальный экстремум цены.
type swingPoint struct {
	index  int
	price  float64
	isHigh bool
}

// swingPoints ищет локальные максимумы/минимумы со строгим доминированием
// в окне ±window и прореживает одноимённые подряд, оставляя более
// экстремальный. Результат хронологический и чередующийся.
func swingPoints(cs []models.Candle, window int) []swingPoint {
	var raw []swingPoint
	for i := window; i < len(cs)-window; i++ {
		isHigh, isLow := true, true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if cs[j].High >= cs[i].High {
				isHigh = false
			}
			if cs[j].Low <= cs[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			raw = append(raw, swingPoint{index: i, price: cs[i].High, isHigh: true})
		} else if isLow {
			raw = append(raw, swingPoint{index: i, price: cs[i].Low, isHigh: false})
		}
	}

	// чередование: из подряд идущих вершин (или впадин) остаётся крайняя
	var out []swingPoint
	for _, p := range raw {
		if n := len(out); n > 0 && out[n-1].isHigh == p.isHigh {
			if (p.isHigh && p.price > out[n-1].price) || (!p.isHigh && p.price < out[n-1].price) {
				out[n-1] = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}
