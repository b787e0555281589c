package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// свечи с часовым шагом; high=low=close, объём 1
func candlesFromCloses(closes []float64) []models.Candle {
	base := time.Unix(1_700_000_000, 0)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Open: c, High: c, Low: c, Close: c, Volume: 1,
			CloseTime: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func engineConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine.NoiseFloor = 0.3
	cfg.Engine.ResidualWeight = 0.15
	cfg.Engine.PresetsFile = "testdata/missing.yaml"
	return cfg
}

func TestFactoryUnknownStrategy(t *testing.T) {
	_, err := NewStrategy(models.StrategyConfig{Type: "stochastic"})
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestFactoryCreatesAll(t *testing.T) {
	for _, st := range models.AllStrategies() {
		s, err := NewStrategy(models.StrategyConfig{Type: st})
		if err != nil {
			t.Fatalf("create %s: %v", st, err)
		}
		if s.Type() != st {
			t.Fatalf("type = %s, want %s", s.Type(), st)
		}
		if s.MinCandles() <= 0 {
			t.Fatalf("%s: min candles = %d", st, s.MinCandles())
		}
	}
}

func TestRegistryEnableIdempotent(t *testing.T) {
	r, err := NewRegistry(engineConfig())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	set, err := r.Enable("BTCUSDT", []models.StrategyType{models.StrategyRSI, models.StrategyMACD})
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("active = %v, want 2", set)
	}

	first := r.ActiveFor("BTCUSDT")

	// повторное включение не пересоздаёт инстансы
	if _, err := r.Enable("BTCUSDT", []models.StrategyType{models.StrategyRSI}); err != nil {
		t.Fatalf("re-enable: %v", err)
	}
	second := r.ActiveFor("BTCUSDT")
	if first[0] != second[0] {
		t.Fatal("re-enable replaced existing instance")
	}
}

func TestRegistryDisable(t *testing.T) {
	r, err := NewRegistry(engineConfig())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if _, err := r.Enable("BTCUSDT", models.AllStrategies()); err != nil {
		t.Fatalf("enable: %v", err)
	}

	set := r.Disable("BTCUSDT", []models.StrategyType{models.StrategyIchimoku})
	for _, st := range set {
		if st == models.StrategyIchimoku {
			t.Fatal("ichimoku still active after disable")
		}
	}
	if len(set) != 5 {
		t.Fatalf("active = %v, want 5", set)
	}

	// пустой список = выключить всё
	if set := r.Disable("BTCUSDT", nil); set != nil {
		t.Fatalf("active after disable all = %v", set)
	}
	if got := r.ActiveFor("BTCUSDT"); got != nil {
		t.Fatalf("strategies survived disable all: %v", got)
	}
}

func TestRegistryWindowCapacity(t *testing.T) {
	r, err := NewRegistry(engineConfig())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	if _, err := r.Enable("BTCUSDT", []models.StrategyType{models.StrategyRSI}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if got := r.WindowCapacity("BTCUSDT"); got != 15 {
		t.Fatalf("capacity = %d, want 15", got)
	}

	if _, err := r.Enable("BTCUSDT", []models.StrategyType{models.StrategyIchimoku}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if got := r.WindowCapacity("BTCUSDT"); got != 120 {
		t.Fatalf("capacity = %d, want 120", got)
	}

	r.Disable("BTCUSDT", []models.StrategyType{models.StrategyIchimoku})
	if got := r.WindowCapacity("BTCUSDT"); got != 15 {
		t.Fatalf("capacity after disable = %d, want 15", got)
	}
}

func TestRegistrySetPresetReplacesInstance(t *testing.T) {
	r, err := NewRegistry(engineConfig())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if _, err := r.Enable("BTCUSDT", []models.StrategyType{models.StrategyRSI}); err != nil {
		t.Fatalf("enable: %v", err)
	}

	cfg := models.StrategyConfig{Type: models.StrategyRSI, BaseWeight: 0.32}
	cfg.Params.RSIPeriod = 20
	if err := r.SetPreset(cfg); err != nil {
		t.Fatalf("set preset: %v", err)
	}

	active := r.ActiveFor("BTCUSDT")
	if len(active) != 1 || active[0].MinCandles() != 21 {
		t.Fatalf("preset not applied: min candles = %d, want 21", active[0].MinCandles())
	}
}
