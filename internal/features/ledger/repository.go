// Package ledger — repository.go выполняет операции с таблицей reward_entries.
// Записи добавляются только внутри атомарной области вместе с изменением
// баланса: либо и то и другое, либо ничего.
package ledger

import (
	"context"
	"fmt"

	"miniapp-economy/internal/db/postgres"
)

// Repository предоставляет методы для работы с журналом наград.
type Repository struct {
	q postgres.Querier
}

// NewRepository создаёт репозиторий журнала поверх пула или транзакции.
func NewRepository(q postgres.Querier) *Repository {
	return &Repository{q: q}
}

// Append добавляет записи журнала. Порядок аргументов сохраняется:
// для платного спина сначала списание, затем выигрыш.
func (r *Repository) Append(ctx context.Context, entries ...*Entry) error {
	for _, e := range entries {
		err := r.q.QueryRow(ctx, `
			INSERT INTO reward_entries (user_id, entry_type, reward_type, amount, target_user_id, details)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			RETURNING id, created_at
		`, e.UserID, e.Type, e.RewardType, e.Amount, e.TargetUserID, e.Details,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("ошибка записи журнала: %w", err)
		}
	}
	return nil
}

// ListByUser возвращает страницу записей аккаунта, новые первыми.
func (r *Repository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*Entry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, entry_type, reward_type, amount, target_user_id,
		       COALESCE(details, ''), created_at
		FROM reward_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID, &e.UserID, &e.Type, &e.RewardType, &e.Amount,
			&e.TargetUserID, &e.Details, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// PurgeByUser удаляет все записи аккаунта.
// Единственное исключение из append-only: административный сброс
// или удаление, которые сами логируются под ID администратора
// и потому переживают чистку.
func (r *Repository) PurgeByUser(ctx context.Context, userID int64) error {
	if _, err := r.q.Exec(ctx,
		`DELETE FROM reward_entries WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка чистки журнала: %w", err)
	}
	return nil
}

// SumByUser считает суммы журнала аккаунта по валютам.
// Используется ночной сверкой: суммы обязаны совпадать с балансами.
func (r *Repository) SumByUser(ctx context.Context, userID int64) (*CurrencySums, error) {
	var s CurrencySums
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE reward_type IN ('coin', 'coin_and_slot')), 0),
			COALESCE(SUM(amount) FILTER (WHERE reward_type = 'gem'), 0)
		FROM reward_entries
		WHERE user_id = $1
	`, userID).Scan(&s.Coins, &s.Gems)
	if err != nil {
		return nil, fmt.Errorf("ошибка сверки журнала: %w", err)
	}
	return &s, nil
}
