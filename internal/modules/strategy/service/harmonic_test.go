package service

import (
	"testing"

	"signal_bot/internal/models"
)

// ломаная через заданные точки (индекс, цена); сегменты линейные,
// так что свинги детектятся ровно в заданных точках
func zigzagCloses(n int, points [][2]float64) []float64 {
	out := make([]float64, n)
	for p := 0; p+1 < len(points); p++ {
		i0, v0 := int(points[p][0]), points[p][1]
		i1, v1 := int(points[p+1][0]), points[p+1][1]
		for i := i0; i <= i1; i++ {
			out[i] = v0 + (v1-v0)*float64(i-i0)/float64(i1-i0)
		}
	}
	return out
}

// бычий Гартли: X=50 (минимум), A=100, B=69.1, C=81.03, D=65.86
// AB/XA=0.618, BC/AB≈0.386, CD/BC≈1.272
func gartleyBullish() []float64 {
	return zigzagCloses(37, [][2]float64{
		{0, 60}, {6, 50}, {12, 100}, {18, 69.1}, {24, 81.03}, {30, 65.86}, {36, 70},
	})
}

func TestHarmonicInsufficientBoundary(t *testing.T) {
	s := NewHarmonic(models.StrategyParams{})
	if s.MinCandles() != 30 {
		t.Fatalf("min candles = %d, want 30", s.MinCandles())
	}

	if _, ok := s.Evaluate(candlesFromCloses(gartleyBullish()[:29])); ok {
		t.Fatal("29 candles must be insufficient")
	}
}

func TestHarmonicGartleyBuy(t *testing.T) {
	s := NewHarmonic(models.StrategyParams{})

	sig, ok := s.Evaluate(candlesFromCloses(gartleyBullish()))
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %q, want BUY (ratios: %v %v %v)",
			sig.Action, sig.Metrics["ab_xa"], sig.Metrics["bc_ab"], sig.Metrics["cd_bc"])
	}
	// отношения почти эталонные, счёт близок к 1
	if sig.Confidence < 0.95 {
		t.Fatalf("confidence = %v, want >= 0.95", sig.Confidence)
	}
}

func TestHarmonicBearishWhenDAboveC(t *testing.T) {
	s := NewHarmonic(models.StrategyParams{})

	// зеркальный паттерн: D завершается над C
	closes := zigzagCloses(37, [][2]float64{
		{0, 90}, {6, 100}, {12, 50}, {18, 80.9}, {24, 68.97}, {30, 84.14}, {36, 80},
	})
	sig, ok := s.Evaluate(candlesFromCloses(closes))
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionSell {
		t.Fatalf("action = %q, want SELL (ratios: %v %v %v)",
			sig.Action, sig.Metrics["ab_xa"], sig.Metrics["bc_ab"], sig.Metrics["cd_bc"])
	}
}

func TestHarmonicNoPatternNeutral(t *testing.T) {
	s := NewHarmonic(models.StrategyParams{})

	// отношения далеко от всех эталонов
	closes := zigzagCloses(37, [][2]float64{
		{0, 90}, {6, 100}, {12, 50}, {18, 99}, {24, 51}, {30, 98}, {36, 60},
	})
	sig, ok := s.Evaluate(candlesFromCloses(closes))
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionNeutral {
		t.Fatalf("action = %q, want neutral", sig.Action)
	}
}

func TestHarmonicMonotonicNeutral(t *testing.T) {
	s := NewHarmonic(models.StrategyParams{})

	// монотонный ряд: свингов нет вообще
	sig, ok := s.Evaluate(candlesFromCloses(trendCloses(40, 100, 1)))
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionNeutral {
		t.Fatalf("action = %q, want neutral", sig.Action)
	}
}
