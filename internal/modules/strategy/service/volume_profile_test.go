package service

import (
	"testing"
	"time"

	"signal_bot/internal/models"
)

// профиль с плотным узлом на 100: большинство свечей плоские на уровне,
// хвост уходит вниз и последняя закрывается под зоной стоимости
func profileCandles() []models.Candle {
	base := time.Unix(1_700_000_000, 0)
	var out []models.Candle

	add := func(low, high, close, vol float64) {
		out = append(out, models.Candle{
			Open: close, High: high, Low: low, Close: close, Volume: vol,
			CloseTime: base.Add(time.Duration(len(out)) * time.Hour),
		})
	}

	for i := 0; i < 42; i++ {
		add(100, 100, 100, 10) // узел: весь объём в один бин
	}
	// прокол зоны с возвратом (отбои) и финальный уход вниз
	for i := 0; i < 5; i++ {
		add(93, 100.5, 100, 1)
	}
	add(88, 96, 90, 1)
	add(85, 91, 87, 1)
	add(80, 88, 82, 1)

	return out
}

func TestVolumeProfileInsufficientBoundary(t *testing.T) {
	s := NewVolumeProfile(models.StrategyParams{})
	if s.MinCandles() != 50 {
		t.Fatalf("min candles = %d, want 50", s.MinCandles())
	}

	if _, ok := s.Evaluate(profileCandles()[:49]); ok {
		t.Fatal("49 candles must be insufficient")
	}
}

func TestVolumeProfileBuyBelowValueArea(t *testing.T) {
	s := NewVolumeProfile(models.StrategyParams{})

	sig, ok := s.Evaluate(profileCandles())
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %q (close=%v va_low=%v)", sig.Action, sig.Metrics["close"], sig.Metrics["va_low"])
	}
	// почти весь объём в одном бине: концентрация в насыщении
	if sig.Confidence < 0.6 {
		t.Fatalf("confidence = %v, want >= 0.6", sig.Confidence)
	}
	if sig.Metrics["poc"] < 95 || sig.Metrics["poc"] > 101 {
		t.Fatalf("poc = %v, want near 100", sig.Metrics["poc"])
	}
}

func TestVolumeProfileSellAboveValueArea(t *testing.T) {
	s := NewVolumeProfile(models.StrategyParams{})

	// зеркально: узел на 100, выход вверх
	base := time.Unix(1_700_000_000, 0)
	var cs []models.Candle
	add := func(low, high, close, vol float64) {
		cs = append(cs, models.Candle{
			Open: close, High: high, Low: low, Close: close, Volume: vol,
			CloseTime: base.Add(time.Duration(len(cs)) * time.Hour),
		})
	}
	for i := 0; i < 47; i++ {
		add(100, 100, 100, 10)
	}
	add(100, 107, 104, 1)
	add(103, 111, 108, 1)
	add(107, 115, 113, 1)

	sig, ok := s.Evaluate(cs)
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionSell {
		t.Fatalf("action = %q, want SELL", sig.Action)
	}
}

func TestVolumeProfileInsideValueAreaNeutral(t *testing.T) {
	s := NewVolumeProfile(models.StrategyParams{})

	base := time.Unix(1_700_000_000, 0)
	cs := make([]models.Candle, 50)
	for i := range cs {
		// равномерный профиль, закрытие в середине диапазона
		lo := 95 + float64(i%10)
		cs[i] = models.Candle{
			Open: lo, High: lo + 1, Low: lo, Close: lo + 0.5, Volume: 10,
			CloseTime: base.Add(time.Duration(i) * time.Hour),
		}
	}
	cs[49].Close = 100

	sig, ok := s.Evaluate(cs)
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionNeutral {
		t.Fatalf("action = %q, want neutral (va=[%v, %v] close=%v)",
			sig.Action, sig.Metrics["va_low"], sig.Metrics["va_high"], sig.Metrics["close"])
	}
}

func TestVolumeProfileFlatRangeNeutral(t *testing.T) {
	s := NewVolumeProfile(models.StrategyParams{})

	cs := candlesFromCloses(trendCloses(50, 100, 0)) // hi == lo
	sig, ok := s.Evaluate(cs)
	if !ok {
		t.Fatal("insufficient")
	}
	if sig.Action != models.ActionNeutral {
		t.Fatalf("action = %q, want neutral on degenerate range", sig.Action)
	}
}
