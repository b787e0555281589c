package models

import (
	"time"
)

// Candle — закрытая свеча с фида. После закрытия не мутируется.
type Candle struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Turnover  float64
	CloseTime time.Time
}

// CandleTick — закрытая свеча вместе с ключом (символ, таймфрейм),
// как её отдаёт WS-стример.
type CandleTick struct {
	Symbol      string
	IntervalRaw string
	Candle      Candle
}
