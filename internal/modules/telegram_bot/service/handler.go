package service

import (
	"context"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	openrouter "signal_bot/internal/modules/openrouter/service"
	"signal_bot/pkg/logger"
)

// Run — основной цикл long poll. Каждая команда обрабатывается в своей
// горутине, чтобы медленный /chat не тормозил остальных.
func (t *Telegram) Run(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30

	updates := t.bot.GetUpdatesChan(u)
	logger.Info("[TG] bot %s online", t.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if upd.Message == nil || !upd.Message.IsCommand() {
				continue
			}
			go t.handleCommand(ctx, upd.Message)
		}
	}
}

func (t *Telegram) handleCommand(ctx context.Context, msg *tgbot.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	var err error
	switch msg.Command() {
	case "start", "help":
		_, err = t.Send(ctx, chatID, helpText)
	case "listen":
		err = t.cmdListen(ctx, chatID, args)
	case "unlisten":
		err = t.cmdUnlisten(ctx, chatID, args)
	case "interval":
		err = t.cmdInterval(ctx, chatID, args)
	case "top":
		err = t.cmdTop(ctx, chatID, args)
	case "chat":
		err = t.cmdChat(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "status":
		err = t.cmdStatus(ctx, chatID)
	default:
		_, err = t.Send(ctx, chatID, "Не знаю такую команду. /help")
	}

	if err != nil {
		logger.Error("[TG] /%s in %d: %v", msg.Command(), chatID, err)
		_, _ = t.SendF(ctx, chatID, "⚠️ Не получилось: %v", err)
	}
}

// cmdListen включает стратегии для чата и синхронизирует движок.
// /listen            — все стратегии
// /listen rsi macd   — только указанные
func (t *Telegram) cmdListen(ctx context.Context, chatID int64, args []string) error {
	requested, err := parseStrategies(args)
	if err != nil {
		return err
	}

	sub := t.chatSub(ctx, chatID)
	for _, st := range requested {
		if !sub.HasStrategy(st) {
			sub.Strategies = append(sub.Strategies, st)
		}
	}
	if sub.Interval == "" {
		sub.Interval = t.sm.Interval()
	}
	if err := t.repo.Upsert(ctx, sub); err != nil {
		return err
	}
	if err := t.syncEngine(ctx); err != nil {
		return err
	}

	_, err = t.SendF(ctx, chatID, "✅ Подписка: %s\nИнтервал: `%s`, символов: %d",
		strategyList(sub.Strategies), sub.Interval, len(t.sm.Symbols()))
	return err
}

// cmdUnlisten выключает стратегии чата (без аргументов — все).
func (t *Telegram) cmdUnlisten(ctx context.Context, chatID int64, args []string) error {
	sub := t.chatSub(ctx, chatID)
	if len(sub.Strategies) == 0 {
		_, err := t.Send(ctx, chatID, "Подписки и так нет.")
		return err
	}

	if len(args) == 0 || strings.EqualFold(args[0], "all") {
		sub.Strategies = nil
	} else {
		drop, err := parseStrategies(args)
		if err != nil {
			return err
		}
		kept := sub.Strategies[:0]
		for _, st := range sub.Strategies {
			found := false
			for _, d := range drop {
				if st == d {
					found = true
					break
				}
			}
			if !found {
				kept = append(kept, st)
			}
		}
		sub.Strategies = kept
	}

	if len(sub.Strategies) == 0 {
		if err := t.repo.Delete(ctx, chatID); err != nil {
			return err
		}
	} else if err := t.repo.Upsert(ctx, sub); err != nil {
		return err
	}
	if err := t.syncEngine(ctx); err != nil {
		return err
	}

	if len(sub.Strategies) == 0 {
		_, err := t.Send(ctx, chatID, "🔕 Подписка снята.")
		return err
	}
	_, err := t.SendF(ctx, chatID, "Осталось: %s", strategyList(sub.Strategies))
	return err
}

// cmdInterval меняет таймфрейм движка целиком: окна сбрасываются,
// стримы переподнимаются, история догружается заново.
func (t *Telegram) cmdInterval(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		_, err := t.SendF(ctx, chatID, "Текущий интервал: `%s`", t.sm.Interval())
		return err
	}
	if !helper.ValidInterval(args[0]) {
		return errors.Errorf("интервал %q не из нотации Bybit (1m 5m 15m 1h 4h 1d ...)", args[0])
	}
	norm := helper.NormInterval(args[0])

	sub := t.chatSub(ctx, chatID)
	sub.Interval = norm
	if err := t.repo.Upsert(ctx, sub); err != nil {
		return err
	}

	if err := t.disp.SetInterval("", norm); err != nil {
		return err
	}
	t.sm.Restart(norm)
	go func() {
		if err := t.wu.Warmup(ctx, t.sm.Symbols(), norm); err != nil {
			logger.Error("[TG] re-warmup after interval change: %v", err)
		}
	}()

	_, err := t.SendF(ctx, chatID, "⏱ Интервал теперь `%s`. Окна сброшены, история догружается.", norm)
	return err
}

// cmdTop — /top [gainers|losers] [n].
func (t *Telegram) cmdTop(ctx context.Context, chatID int64, args []string) error {
	direction := "gainers"
	n := 10
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "gainers", "losers":
			direction = strings.ToLower(args[0])
		default:
			return errors.Errorf("ожидал gainers или losers, получил %q", args[0])
		}
	}
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v <= 0 || v > 50 {
			return errors.Errorf("количество должно быть 1..50, получил %q", args[1])
		}
		n = v
	}

	movers, err := t.mkt.TopMovers(ctx, direction, n)
	if err != nil {
		return err
	}
	_, err = t.Send(ctx, chatID, formatTopMovers(direction, movers))
	return err
}

func (t *Telegram) cmdChat(ctx context.Context, chatID int64, prompt string) error {
	if prompt == "" {
		_, err := t.Send(ctx, chatID, "Напиши вопрос: `/chat что происходит с BTC?`")
		return err
	}

	answer, err := t.ai.Chat(ctx, prompt)
	if errors.Is(err, openrouter.ErrDisabled) {
		_, err = t.Send(ctx, chatID, "🤖 LLM не настроен (нет OPENROUTER_API_KEY).")
		return err
	}
	if err != nil {
		return err
	}
	_, err = t.Send(ctx, chatID, answer)
	return err
}

func (t *Telegram) cmdStatus(ctx context.Context, chatID int64) error {
	sub := t.chatSub(ctx, chatID)
	_, err := t.Send(ctx, chatID, formatStatus(t.state, t.sm, &sub))
	return err
}

// chatSub — подписка чата из pg, пустая при отсутствии.
func (t *Telegram) chatSub(ctx context.Context, chatID int64) models.ChatSubscription {
	subs, err := t.repo.List(ctx)
	if err != nil {
		logger.Error("[TG] load subscription %d: %v", chatID, err)
	}
	for _, s := range subs {
		if s.ChatID == chatID {
			return s
		}
	}
	return models.ChatSubscription{ChatID: chatID}
}

// syncEngine приводит активные стратегии движка к объединению подписок
// всех чатов. Enable идемпотентен, окна при этом не сбрасываются.
func (t *Telegram) syncEngine(ctx context.Context) error {
	subs, err := t.repo.List(ctx)
	if err != nil {
		return err
	}

	union := make(map[models.StrategyType]bool)
	for _, sub := range subs {
		for _, st := range sub.Strategies {
			union[st] = true
		}
	}

	var enable, disable []models.StrategyType
	for _, st := range models.AllStrategies() {
		if union[st] {
			enable = append(enable, st)
		} else {
			disable = append(disable, st)
		}
	}

	for _, symbol := range t.sm.Symbols() {
		if len(enable) == 0 {
			t.disp.Unsubscribe(symbol, nil)
			continue
		}
		if _, err := t.disp.Subscribe(symbol, enable); err != nil {
			return err
		}
		t.disp.Unsubscribe(symbol, disable)
	}
	return nil
}

func parseStrategies(args []string) ([]models.StrategyType, error) {
	if len(args) == 0 || strings.EqualFold(args[0], "all") {
		return models.AllStrategies(), nil
	}
	out := make([]models.StrategyType, 0, len(args))
	for _, a := range args {
		st, ok := models.ParseStrategyType(strings.ToLower(a))
		if !ok {
			return nil, errors.Errorf("неизвестная стратегия %q, доступны: %s",
				a, strategyList(models.AllStrategies()))
		}
		out = append(out, st)
	}
	return out, nil
}
