package service

import (
	"math"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// Harmonic: завершённые паттерны Гартли/Бабочка/Летучая мышь/Краб по
// последним пяти свингам X-A-B-C-D. Три определяющих отношения (AB/XA,
// BC/AB, CD/BC) сверяются с таблицей с крипто-допуском; уверенность —
// среднее (1 − отклонение/допуск) по трём отношениям.
type Harmonic struct {
	swingWindow int
	tolerance   float64
}

// эталонные отношения {AB/XA, BC/AB, CD/BC}
var harmonicPatterns = []struct {
	name   string
	ratios [3]float64
}{
	{"gartley", [3]float64{0.618, 0.386, 1.272}},
	{"butterfly", [3]float64{0.786, 0.382, 1.618}},
	{"bat", [3]float64{0.382, 0.886, 2.618}},
	{"crab", [3]float64{0.382, 0.886, 3.618}},
}

func NewHarmonic(p models.StrategyParams) *Harmonic {
	s := &Harmonic{swingWindow: p.SwingWindow, tolerance: p.FibTolerance}
	if s.swingWindow <= 0 {
		s.swingWindow = 5
	}
	if s.tolerance == 0 {
		s.tolerance = 0.15
	}
	return s
}

func (s *Harmonic) Type() models.StrategyType { return models.StrategyHarmonic }

func (s *Harmonic) MinCandles() int { return 30 }

func (s *Harmonic) Evaluate(cs []models.Candle) (models.StrategySignal, bool) {
	if len(cs) < s.MinCandles() {
		return models.StrategySignal{}, false
	}

	swings := swingPoints(cs, s.swingWindow)
	if len(swings) < 5 {
		return neutral(models.StrategyHarmonic, map[string]float64{"swings": float64(len(swings))}), true
	}

	last := swings[len(swings)-5:]
	x, a, b, c, d := last[0].price, last[1].price, last[2].price, last[3].price, last[4].price

	xa := math.Abs(a - x)
	ab := math.Abs(b - a)
	bc := math.Abs(c - b)
	cd := math.Abs(d - c)
	if xa == 0 || ab == 0 || bc == 0 {
		return neutral(models.StrategyHarmonic, nil), true
	}

	ratios := [3]float64{ab / xa, bc / ab, cd / bc}

	bestScore := 0.0
	for _, p := range harmonicPatterns {
		score := 0.0
		within := true
		for i, target := range p.ratios {
			diff := math.Abs(ratios[i] - target)
			if diff > s.tolerance {
				within = false
				break
			}
			score += 1 - diff/s.tolerance
		}
		if within && score/3 > bestScore {
			bestScore = score / 3
		}
	}

	metrics := map[string]float64{
		"ab_xa": ratios[0], "bc_ab": ratios[1], "cd_bc": ratios[2],
		"score": bestScore,
	}
	if bestScore == 0 {
		return neutral(models.StrategyHarmonic, metrics), true
	}

	// точка D ниже C — бычье завершение, выше — медвежье
	action := models.ActionBuy
	if d > c {
		action = models.ActionSell
	}

	return models.StrategySignal{
		Strategy:   models.StrategyHarmonic,
		Action:     action,
		Confidence: helper.Clamp01(bestScore),
		Metrics:    metrics,
	}, true
}
