package models

import (
	"time"
)

type StrategyType string

const (
	StrategyRSI           StrategyType = "rsi"
	StrategyMACD          StrategyType = "macd"
	StrategyBollinger     StrategyType = "bollinger"
	StrategyIchimoku      StrategyType = "ichimoku"
	StrategyHarmonic      StrategyType = "harmonic"
	StrategyVolumeProfile StrategyType = "volume_profile"
)

// AllStrategies — полный набор, порядок фиксированный (для "all" в командах).
func AllStrategies() []StrategyType {
	return []StrategyType{
		StrategyRSI,
		StrategyMACD,
		StrategyBollinger,
		StrategyIchimoku,
		StrategyHarmonic,
		StrategyVolumeProfile,
	}
}

func ParseStrategyType(s string) (StrategyType, bool) {
	st := StrategyType(s)
	for _, known := range AllStrategies() {
		if st == known {
			return st, true
		}
	}
	return "", false
}

type Action string

const (
	ActionNeutral Action = ""
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
)

// StrategySignal — результат одной оценки одной стратегии.
// Создаётся заново на каждом обновлении окна, дальше не мутируется.
type StrategySignal struct {
	Strategy   StrategyType
	Action     Action
	Confidence float64 // [0,1]
	// именованные значения, из которых собрана уверенность (rsi, hist, poc и т.п.)
	Metrics map[string]float64
}

// AggregatedSignal — итог по символу за цикл агрегации. Read-only после эмита.
type AggregatedSignal struct {
	Symbol     string
	Action     Action
	Confidence float64 // [0,1]
	// по убыванию индивидуальной уверенности
	Contributing []StrategySignal
	Price        float64
	GeneratedAt  time.Time
}

// StrategyConfig — параметры инстанса стратегии. После создания не меняется:
// новая конфигурация = новый инстанс через фабрику.
type StrategyConfig struct {
	Type       StrategyType
	Params     StrategyParams
	BaseWeight float64
}

// StrategyParams — периоды и пороги. Нулевые значения заменяются дефолтами фабрики.
type StrategyParams struct {
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	BBPeriod int     `yaml:"bb_period"`
	BBStdDev float64 `yaml:"bb_std_dev"`

	TenkanPeriod int `yaml:"tenkan_period"`
	KijunPeriod  int `yaml:"kijun_period"`
	SenkouPeriod int `yaml:"senkou_period"`

	SwingWindow  int     `yaml:"swing_window"`
	FibTolerance float64 `yaml:"fib_tolerance"`

	ProfileLevels int     `yaml:"profile_levels"`
	ValueAreaPct  float64 `yaml:"value_area_pct"`
}
