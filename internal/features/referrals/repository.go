// Package referrals — repository.go читает таблицу referral_milestones.
package referrals

import (
	"context"
	"fmt"

	"miniapp-economy/internal/db/postgres"
)

// Repository предоставляет чтение вех реферальной программы.
type Repository struct {
	q postgres.Querier
}

// NewRepository создаёт репозиторий вех.
func NewRepository(q postgres.Querier) *Repository {
	return &Repository{q: q}
}

// List возвращает все вехи по возрастанию порога.
func (r *Repository) List(ctx context.Context) ([]*Milestone, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, reward_type, value, required_active
		FROM referral_milestones
		ORDER BY required_active
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения вех: %w", err)
	}
	defer rows.Close()

	var out []*Milestone
	for rows.Next() {
		var m Milestone
		if err := rows.Scan(&m.ID, &m.RewardType, &m.Value, &m.RequiredActive); err != nil {
			return nil, fmt.Errorf("ошибка сканирования вехи: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
