package service

import "signal_bot/internal/models"

// Strategy — одна стратегия поверх снапшота закрытых свечей.
// Инстанс иммутабелен после создания; Evaluate не хранит состояния
// между вызовами и каждый раз пересчитывает ряды с нуля.
type Strategy interface {
	Type() models.StrategyType

	// минимальный размер окна; ниже него Evaluate возвращает ok==false
	MinCandles() int

	// ok==false когда данных мало (это не ошибка, а прогрев).
	// Action=="" — нейтральная оценка: условия стратегии не сработали.
	Evaluate(candles []models.Candle) (models.StrategySignal, bool)
}

func neutral(t models.StrategyType, metrics map[string]float64) models.StrategySignal {
	return models.StrategySignal{Strategy: t, Action: models.ActionNeutral, Metrics: metrics}
}
