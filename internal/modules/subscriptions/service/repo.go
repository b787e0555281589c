package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_subscriptions (
	chat_id    BIGINT PRIMARY KEY,
	interval   TEXT        NOT NULL,
	strategies TEXT[]      NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Repo — подписки чатов в pg. Единственное персистентное состояние
// бота: история сигналов и окна свечей не переживают рестарт.
type Repo struct {
	tx db.TxManager
}

func NewRepo(tx *db.PgTxManager) *Repo {
	return &Repo{tx: tx}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	return r.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, schema)
		return errors.Wrap(err, "ensure schema")
	})
}

func (r *Repo) Upsert(ctx context.Context, sub models.ChatSubscription) error {
	strategies := make([]string, len(sub.Strategies))
	for i, s := range sub.Strategies {
		strategies[i] = string(s)
	}

	return r.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO chat_subscriptions (chat_id, interval, strategies, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (chat_id) DO UPDATE
			SET interval = $2, strategies = $3, updated_at = $4`,
			sub.ChatID, sub.Interval, strategies, time.Now().UTC())
		return errors.Wrapf(err, "upsert subscription %d", sub.ChatID)
	})
}

func (r *Repo) Delete(ctx context.Context, chatID int64) error {
	return r.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM chat_subscriptions WHERE chat_id = $1`, chatID)
		return errors.Wrapf(err, "delete subscription %d", chatID)
	})
}

func (r *Repo) List(ctx context.Context) ([]models.ChatSubscription, error) {
	var out []models.ChatSubscription
	err := r.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT chat_id, interval, strategies, updated_at
			FROM chat_subscriptions
			ORDER BY chat_id`)
		if err != nil {
			return errors.Wrap(err, "list subscriptions")
		}
		defer rows.Close()

		for rows.Next() {
			var sub models.ChatSubscription
			var strategies []string
			if err := rows.Scan(&sub.ChatID, &sub.Interval, &strategies, &sub.UpdatedAt); err != nil {
				return errors.Wrap(err, "scan subscription")
			}
			for _, s := range strategies {
				if st, ok := models.ParseStrategyType(s); ok {
					sub.Strategies = append(sub.Strategies, st)
				}
			}
			out = append(out, sub)
		}
		return rows.Err()
	})
	return out, err
}
