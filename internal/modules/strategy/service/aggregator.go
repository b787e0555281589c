package service

import (
	"sort"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Aggregator сводит сигналы стратегий одного символа в одно решение.
// Чистая функция от входов: состояния между циклами нет.
type Aggregator struct {
	noiseFloor float64
	residual   float64
	weights    map[models.StrategyType]float64
}

func NewAggregator(cfg *config.Config) *Aggregator {
	weights := make(map[models.StrategyType]float64, len(defaultBaseWeights))
	for t, w := range defaultBaseWeights {
		weights[t] = w
	}
	return &Aggregator{
		noiseFloor: cfg.Engine.NoiseFloor,
		residual:   cfg.Engine.ResidualWeight,
		weights:    weights,
	}
}

func (a *Aggregator) baseWeight(t models.StrategyType) float64 {
	if w, ok := a.weights[t]; ok {
		return w
	}
	return a.residual
}

// Aggregate: шум-фильтр → выбор стороны → динамические веса
// (base_weight × confidence, ренормализация) → взвешенная сумма →
// бонус согласия → нижний порог. ok==false — сигнала в этом цикле нет.
func (a *Aggregator) Aggregate(symbol string, price float64, at time.Time, signals []models.StrategySignal) (models.AggregatedSignal, bool) {
	var buy, sell []models.StrategySignal
	var buyTotal, sellTotal float64
	for _, s := range signals {
		if s.Action == models.ActionNeutral || s.Confidence < a.noiseFloor {
			continue
		}
		w := a.baseWeight(s.Strategy) * s.Confidence
		if s.Action == models.ActionBuy {
			buy = append(buy, s)
			buyTotal += w
		} else {
			sell = append(sell, s)
			sellTotal += w
		}
	}

	// при конфликте сторон выигрывает большая взвешенная уверенность,
	// проигравшая сторона отбрасывается целиком
	side := buy
	action := models.ActionBuy
	if sellTotal > buyTotal {
		side = sell
		action = models.ActionSell
	}
	if len(side) == 0 {
		return models.AggregatedSignal{}, false
	}

	dyn := make([]float64, len(side))
	dynTotal := 0.0
	for i, s := range side {
		dyn[i] = a.baseWeight(s.Strategy) * s.Confidence
		dynTotal += dyn[i]
	}
	if dynTotal == 0 {
		return models.AggregatedSignal{}, false
	}

	combined := 0.0
	avg := 0.0
	for i, s := range side {
		combined += dyn[i] / dynTotal * s.Confidence
		avg += s.Confidence
	}
	avg /= float64(len(side))

	if len(side) >= 2 {
		combined += 0.20 * avg
	}
	combined = helper.Clamp01(combined)

	if combined < a.noiseFloor {
		return models.AggregatedSignal{}, false
	}

	contributing := make([]models.StrategySignal, len(side))
	copy(contributing, side)
	sort.Slice(contributing, func(i, j int) bool {
		if contributing[i].Confidence != contributing[j].Confidence {
			return contributing[i].Confidence > contributing[j].Confidence
		}
		return contributing[i].Strategy < contributing[j].Strategy
	})

	return models.AggregatedSignal{
		Symbol:       symbol,
		Action:       action,
		Confidence:   combined,
		Contributing: contributing,
		Price:        price,
		GeneratedAt:  at,
	}, true
}

// Rank сортирует сигналы для выдачи: по убыванию уверенности,
// при равенстве — по имени символа.
func Rank(signals []models.AggregatedSignal) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Confidence != signals[j].Confidence {
			return signals[i].Confidence > signals[j].Confidence
		}
		return signals[i].Symbol < signals[j].Symbol
	})
}
