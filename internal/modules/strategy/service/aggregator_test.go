package service

import (
	"math"
	"testing"
	"time"

	"signal_bot/internal/models"
)

func sig(t models.StrategyType, a models.Action, conf float64) models.StrategySignal {
	return models.StrategySignal{Strategy: t, Action: a, Confidence: conf}
}

func newAggregator() *Aggregator {
	return NewAggregator(engineConfig())
}

func TestAggregateNoiseFloorFiltersAll(t *testing.T) {
	a := newAggregator()

	_, ok := a.Aggregate("BTCUSDT", 100, time.Now(), []models.StrategySignal{
		sig(models.StrategyRSI, models.ActionBuy, 0.29),
		sig(models.StrategyMACD, models.ActionBuy, 0.1),
		sig(models.StrategyBollinger, models.ActionSell, 0.2),
	})
	if ok {
		t.Fatal("signals below noise floor must yield nothing")
	}
}

func TestAggregateNeutralDiscarded(t *testing.T) {
	a := newAggregator()

	_, ok := a.Aggregate("BTCUSDT", 100, time.Now(), []models.StrategySignal{
		sig(models.StrategyRSI, models.ActionNeutral, 0.9),
		sig(models.StrategyMACD, models.ActionNeutral, 0.8),
	})
	if ok {
		t.Fatal("neutral signals must yield nothing")
	}
}

// MACD Sell 0.5 (вес 0.23) + Bollinger Sell 0.6 (вес 0.18):
// динамические веса 0.115/0.108 → нормированная сумма 0.54843
// + бонус согласия 0.20×0.55 = 0.11 → 0.65843
func TestAggregateWeightedSumWithAgreementBonus(t *testing.T) {
	a := newAggregator()

	out, ok := a.Aggregate("BTCUSDT", 100, time.Now(), []models.StrategySignal{
		sig(models.StrategyMACD, models.ActionSell, 0.5),
		sig(models.StrategyBollinger, models.ActionSell, 0.6),
	})
	if !ok {
		t.Fatal("expected a signal")
	}
	if out.Action != models.ActionSell {
		t.Fatalf("action = %q, want SELL", out.Action)
	}

	want := (0.115*0.5+0.108*0.6)/0.223 + 0.11
	if math.Abs(out.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", out.Confidence, want)
	}

	// contributing отсортированы по убыванию индивидуальной уверенности
	if len(out.Contributing) != 2 ||
		out.Contributing[0].Strategy != models.StrategyBollinger ||
		out.Contributing[1].Strategy != models.StrategyMACD {
		t.Fatalf("contributing order wrong: %+v", out.Contributing)
	}
}

func TestAggregateSingleSignalNoBonus(t *testing.T) {
	a := newAggregator()

	out, ok := a.Aggregate("BTCUSDT", 100, time.Now(), []models.StrategySignal{
		sig(models.StrategyRSI, models.ActionBuy, 0.7),
	})
	if !ok {
		t.Fatal("expected a signal")
	}
	// один сигнал: нормированный вес 1, бонуса нет
	if math.Abs(out.Confidence-0.7) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.7", out.Confidence)
	}
}

func TestAggregateConflictWinnerTakesAll(t *testing.T) {
	a := newAggregator()

	// buy: 0.32*0.9 = 0.288; sell: 0.23*0.5 + 0.18*0.6 = 0.223 → побеждает buy
	out, ok := a.Aggregate("BTCUSDT", 100, time.Now(), []models.StrategySignal{
		sig(models.StrategyRSI, models.ActionBuy, 0.9),
		sig(models.StrategyMACD, models.ActionSell, 0.5),
		sig(models.StrategyBollinger, models.ActionSell, 0.6),
	})
	if !ok {
		t.Fatal("expected a signal")
	}
	if out.Action != models.ActionBuy {
		t.Fatalf("action = %q, want BUY", out.Action)
	}
	if len(out.Contributing) != 1 {
		t.Fatalf("losing side leaked into contributing: %+v", out.Contributing)
	}
}

func TestAggregateBonusCappedAtOne(t *testing.T) {
	a := newAggregator()

	out, ok := a.Aggregate("BTCUSDT", 100, time.Now(), []models.StrategySignal{
		sig(models.StrategyRSI, models.ActionBuy, 0.98),
		sig(models.StrategyMACD, models.ActionBuy, 0.97),
		sig(models.StrategyIchimoku, models.ActionBuy, 0.99),
	})
	if !ok {
		t.Fatal("expected a signal")
	}
	if out.Confidence > 1 {
		t.Fatalf("confidence = %v, exceeds 1.0", out.Confidence)
	}
	if out.Confidence < 0.99 {
		t.Fatalf("confidence = %v, want near cap", out.Confidence)
	}
}

func TestAggregateResidualWeightForOutsiders(t *testing.T) {
	a := newAggregator()

	// harmonic и volume_profile вне базовой таблицы: residual 0.15
	out, ok := a.Aggregate("BTCUSDT", 100, time.Now(), []models.StrategySignal{
		sig(models.StrategyHarmonic, models.ActionBuy, 0.5),
		sig(models.StrategyVolumeProfile, models.ActionBuy, 0.7),
	})
	if !ok {
		t.Fatal("expected a signal")
	}

	want := (0.15*0.5*0.5+0.15*0.7*0.7)/(0.15*0.5+0.15*0.7) + 0.20*0.6
	if math.Abs(out.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", out.Confidence, want)
	}
}

func TestRankOrdering(t *testing.T) {
	list := []models.AggregatedSignal{
		{Symbol: "ETHUSDT", Confidence: 0.5},
		{Symbol: "BTCUSDT", Confidence: 0.9},
		{Symbol: "ADAUSDT", Confidence: 0.5},
	}
	Rank(list)

	want := []string{"BTCUSDT", "ADAUSDT", "ETHUSDT"}
	for i, w := range want {
		if list[i].Symbol != w {
			t.Fatalf("rank[%d] = %s, want %s", i, list[i].Symbol, w)
		}
	}
}
