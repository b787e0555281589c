package service

import (
	"fmt"
	"strings"
	"time"

	"signal_bot/internal/models"
	bootstrap "signal_bot/internal/modules/bootstrap/service"
	bybit "signal_bot/internal/modules/bybit_client/service"
	health "signal_bot/internal/modules/health/service"
)

const helpText = "*🤖 Сигнальный бот*\n\n" +
	"/listen `[стратегии|all]` — подписаться на сигналы\n" +
	"/unlisten `[стратегии]` — отписаться (без аргументов — полностью)\n" +
	"/interval `15m|1h|4h|...` — сменить таймфрейм\n" +
	"/top `[gainers|losers] [n]` — лидеры движения за сутки\n" +
	"/chat `вопрос` — спросить LLM\n" +
	"/status — состояние движка\n\n" +
	"Стратегии: `rsi` `macd` `bollinger` `ichimoku` `harmonic` `volume_profile`"

var strategyEmoji = map[models.StrategyType]string{
	models.StrategyRSI:           "📉",
	models.StrategyMACD:          "📊",
	models.StrategyBollinger:     "🎯",
	models.StrategyIchimoku:      "☁️",
	models.StrategyHarmonic:      "🦋",
	models.StrategyVolumeProfile: "📦",
}

func actionEmoji(a models.Action) string {
	if a == models.ActionBuy {
		return "🟢 BUY"
	}
	return "🔴 SELL"
}

func onOff(v bool) string {
	if v {
		return "🟢 online"
	}
	return "🔴 offline"
}

// formatSignalBatch собирает сообщение для конкретного чата: сигналы,
// в которых нет ни одной стратегии из подписки чата, пропускаются.
func formatSignalBatch(ranked []models.AggregatedSignal, chat *models.ChatSubscription) string {
	var b strings.Builder
	count := 0

	for _, sig := range ranked {
		if !chatWantsSignal(chat, sig) {
			continue
		}
		count++

		fmt.Fprintf(&b, "\n%s *%s* — %.0f%%  `%s`\n",
			actionEmoji(sig.Action), sig.Symbol, sig.Confidence*100, f2(sig.Price))
		for _, c := range sig.Contributing {
			fmt.Fprintf(&b, "  %s %s %.0f%%\n", strategyEmoji[c.Strategy], c.Strategy, c.Confidence*100)
		}
	}

	if count == 0 {
		return ""
	}
	return "*📣 Сигналы*\n" + b.String()
}

func chatWantsSignal(chat *models.ChatSubscription, sig models.AggregatedSignal) bool {
	for _, c := range sig.Contributing {
		if chat.HasStrategy(c.Strategy) {
			return true
		}
	}
	return false
}

func formatTopMovers(direction string, movers []bybit.Ticker) string {
	title := "*🚀 Лидеры роста за 24ч*"
	if direction == "losers" {
		title = "*🩸 Лидеры падения за 24ч*"
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	for i, m := range movers {
		fmt.Fprintf(&b, "%d. *%s*  %+.2f%%  `%s`\n", i+1, m.Symbol, m.Change24h*100, f2(m.LastPrice))
	}
	if len(movers) == 0 {
		b.WriteString("_пусто_")
	}
	return b.String()
}

func formatStatus(state *health.State, sm *bootstrap.StreamManager, chat *models.ChatSubscription) string {
	var b strings.Builder
	b.WriteString("*⚙️ Статус*\n\n")
	fmt.Fprintf(&b, "Поток: %s\n", onOff(state.WSConnected()))
	fmt.Fprintf(&b, "Интервал: `%s`\n", sm.Interval())
	fmt.Fprintf(&b, "Символов: %d\n", state.TrackedSymbols())
	fmt.Fprintf(&b, "Сигналов с запуска: %d\n", state.SignalsEmitted())
	if last := state.LastCandle(); !last.IsZero() {
		fmt.Fprintf(&b, "Последняя свеча: %s назад\n", time.Since(last).Round(time.Second))
	}
	fmt.Fprintf(&b, "Аптайм: %s\n", state.Uptime().Round(time.Second))

	if len(chat.Strategies) == 0 {
		b.WriteString("\nЭтот чат не подписан. /listen")
	} else {
		fmt.Fprintf(&b, "\nПодписка чата: %s", strategyList(chat.Strategies))
	}
	return b.String()
}

func strategyList(types []models.StrategyType) string {
	parts := make([]string, len(types))
	for i, st := range types {
		parts[i] = "`" + string(st) + "`"
	}
	return strings.Join(parts, " ")
}

// f2 — цена без экспоненты и хвостовых нулей.
func f2(v float64) string {
	s := fmt.Sprintf("%.8f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
