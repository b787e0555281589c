package service

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
	bootstrap "signal_bot/internal/modules/bootstrap/service"
	bybit "signal_bot/internal/modules/bybit_client/service"
	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	openrouter "signal_bot/internal/modules/openrouter/service"
	runner "signal_bot/internal/modules/runner/service"
	subs "signal_bot/internal/modules/subscriptions/service"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
)

// Telegram — командный интерфейс и доставка сигналов в чаты.
type Telegram struct {
	bot   *tgbot.BotAPI
	cfg   *config.Config
	repo  *subs.Repo
	disp  *runner.Dispatcher
	sm    *bootstrap.StreamManager
	wu    *bootstrap.Warmuper
	mkt   *bybit.Client
	ai    *openrouter.Client
	state *health.State

	// буфер сигналов: конвейеры не ждут телеграм, переполнение — дроп
	signals chan models.AggregatedSignal
}

func NewTelegram(
	cfg *config.Config,
	repo *subs.Repo,
	disp *runner.Dispatcher,
	sm *bootstrap.StreamManager,
	wu *bootstrap.Warmuper,
	mkt *bybit.Client,
	ai *openrouter.Client,
	state *health.State,
) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	return &Telegram{
		bot:     b,
		cfg:     cfg,
		repo:    repo,
		disp:    disp,
		sm:      sm,
		wu:      wu,
		mkt:     mkt,
		ai:      ai,
		state:   state,
		signals: make(chan models.AggregatedSignal, 256),
	}, nil
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	m := tgbot.NewMessage(chatID, msg)
	m.ParseMode = tgbot.ModeMarkdown
	return t.bot.Send(m)
}

func (t *Telegram) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return t.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

// EnqueueSignal — колбэк диспетчера. Никогда не блокирует.
func (t *Telegram) EnqueueSignal(sig models.AggregatedSignal) {
	t.state.IncSignals()
	select {
	case t.signals <- sig:
	default:
		logger.Warn("[TG] signal buffer full, drop %s %s", sig.Symbol, sig.Action)
	}
}

// RunFlusher копит сигналы и раз в период шлёт ранжированную пачку.
func (t *Telegram) RunFlusher(ctx context.Context) {
	tick := time.NewTicker(30 * time.Second)
	defer tick.Stop()

	var pending []models.AggregatedSignal
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-t.signals:
			pending = append(pending, s)
		case <-tick.C:
			if len(pending) == 0 {
				continue
			}
			t.flush(ctx, pending)
			pending = nil
		}
	}
}

func (t *Telegram) flush(ctx context.Context, batch []models.AggregatedSignal) {
	// по символу оставляем самый свежий сигнал
	latest := make(map[string]models.AggregatedSignal, len(batch))
	for _, s := range batch {
		if cur, ok := latest[s.Symbol]; !ok || s.GeneratedAt.After(cur.GeneratedAt) {
			latest[s.Symbol] = s
		}
	}
	ranked := make([]models.AggregatedSignal, 0, len(latest))
	for _, s := range latest {
		ranked = append(ranked, s)
	}
	strategy.Rank(ranked)

	if max := t.cfg.Engine.MaxSignalsPerBatch; max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}

	chats, err := t.repo.List(ctx)
	if err != nil {
		logger.Error("[TG] list subscriptions: %v", err)
		return
	}

	for _, chat := range chats {
		msg := formatSignalBatch(ranked, &chat)
		if msg == "" {
			continue
		}
		if _, err := t.Send(ctx, chat.ChatID, msg); err != nil {
			logger.Error("[TG] send to %d: %v", chat.ChatID, err)
		}
	}
}
