package service

import (
	"testing"

	"signal_bot/internal/models"
)

func trendCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestIchimokuInsufficientBoundary(t *testing.T) {
	s := NewIchimoku(models.StrategyParams{})
	if s.MinCandles() != 120 {
		t.Fatalf("min candles = %d, want 120", s.MinCandles())
	}

	closes := trendCloses(119, 100, 0.5)
	if _, ok := s.Evaluate(candlesFromCloses(closes)); ok {
		t.Fatal("119 candles must be insufficient")
	}
	if _, ok := s.Evaluate(candlesFromCloses(trendCloses(120, 100, 0.5))); !ok {
		t.Fatal("120 candles must evaluate")
	}
}

func TestIchimokuUptrendBuy(t *testing.T) {
	s := NewIchimoku(models.StrategyParams{})

	// устойчивый рост: цена над облаком, тенкан над киджуном
	sig, ok := s.Evaluate(candlesFromCloses(trendCloses(120, 100, 0.5)))
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %q, want BUY", sig.Action)
	}
	if sig.Confidence <= 0 || sig.Confidence > 1 {
		t.Fatalf("confidence = %v, out of range", sig.Confidence)
	}
}

func TestIchimokuDowntrendSell(t *testing.T) {
	s := NewIchimoku(models.StrategyParams{})

	sig, ok := s.Evaluate(candlesFromCloses(trendCloses(120, 200, -0.5)))
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionSell {
		t.Fatalf("action = %q, want SELL", sig.Action)
	}
}

func TestIchimokuInsideCloudNeutral(t *testing.T) {
	s := NewIchimoku(models.StrategyParams{})

	// пила: цена болтается внутри облака
	closes := make([]float64, 120)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 102
		}
	}
	sig, ok := s.Evaluate(candlesFromCloses(closes))
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionNeutral {
		t.Fatalf("action = %q, want neutral", sig.Action)
	}
}
