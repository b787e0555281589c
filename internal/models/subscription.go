package models

import (
	"time"
)

// ChatSubscription — состояние подписки одного чата: какой интервал
// и какие стратегии слушаем. Хранится в pg, восстанавливается на старте.
type ChatSubscription struct {
	ChatID     int64
	Interval   string
	Strategies []StrategyType
	UpdatedAt  time.Time
}

func (s *ChatSubscription) HasStrategy(st StrategyType) bool {
	for _, cur := range s.Strategies {
		if cur == st {
			return true
		}
	}
	return false
}
