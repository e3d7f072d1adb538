// Package accounts — repository.go выполняет все операции с таблицей accounts.
// Репозиторий принимает postgres.Querier, поэтому одни и те же методы
// работают и на пуле (простые чтения), и внутри атомарной области.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"miniapp-economy/internal/common"
	"miniapp-economy/internal/db/postgres"
)

// Repository предоставляет методы для работы с аккаунтами.
type Repository struct {
	q postgres.Querier
}

// NewRepository создаёт репозиторий аккаунтов поверх пула или транзакции.
func NewRepository(q postgres.Querier) *Repository {
	return &Repository{q: q}
}

const accountColumns = `
	id, user_id, username, coin_balance, gem_balance, bonus_slots,
	last_check_in, streak_count, referrer_id, referral_count, is_admin,
	created_at, updated_at
`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.UserID, &a.Username, &a.CoinBalance, &a.GemBalance, &a.BonusSlots,
		&a.LastCheckIn, &a.StreakCount, &a.ReferrerID, &a.ReferralCount, &a.IsAdmin,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка чтения аккаунта: %w", err)
	}
	return &a, nil
}

// Get возвращает аккаунт по внешнему идентификатору.
func (r *Repository) Get(ctx context.Context, userID int64) (*Account, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID)
	return scanAccount(row)
}

// GetForUpdate читает аккаунт с блокировкой строки (FOR UPDATE).
// Вызывается внутри атомарной области: конкурирующая операция над тем же
// аккаунтом будет ждать коммита и перечитает уже обновлённое состояние.
// Так исключается двойное списание одного баланса.
func (r *Repository) GetForUpdate(ctx context.Context, userID int64) (*Account, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 FOR UPDATE`, userID)
	return scanAccount(row)
}

// Create добавляет новый аккаунт. Вызывается при первой аутентификации.
func (r *Repository) Create(ctx context.Context, a *Account) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO accounts (user_id, username, coin_balance, gem_balance, bonus_slots,
			last_check_in, streak_count, referrer_id, referral_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, a.UserID, a.Username, a.CoinBalance, a.GemBalance, a.BonusSlots,
		a.LastCheckIn, a.StreakCount, a.ReferrerID, a.ReferralCount,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания аккаунта: %w", err)
	}
	return nil
}

// Update записывает все изменяемые движком поля аккаунта.
// Поле is_admin намеренно не входит в запрос: его меняет только
// отдельный административный примитив SetAdmin.
func (r *Repository) Update(ctx context.Context, a *Account) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE accounts
		SET username = $2, coin_balance = $3, gem_balance = $4, bonus_slots = $5,
		    last_check_in = $6, streak_count = $7, referrer_id = $8,
		    referral_count = $9, updated_at = NOW()
		WHERE user_id = $1
	`, a.UserID, a.Username, a.CoinBalance, a.GemBalance, a.BonusSlots,
		a.LastCheckIn, a.StreakCount, a.ReferrerID, a.ReferralCount)
	if err != nil {
		return fmt.Errorf("ошибка обновления аккаунта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAccountNotFound
	}
	return nil
}

// SetAdmin выставляет флаг администратора.
func (r *Repository) SetAdmin(ctx context.Context, userID int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE accounts SET is_admin = TRUE, updated_at = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("ошибка назначения администратора: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAccountNotFound
	}
	return nil
}

// Delete удаляет аккаунт. Записи журнала удаляются отдельно
// в той же атомарной области.
func (r *Repository) Delete(ctx context.Context, userID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления аккаунта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAccountNotFound
	}
	return nil
}

// List возвращает страницу аккаунтов в порядке создания.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]*Account, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения аккаунтов: %w", err)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count возвращает общее число аккаунтов (для пагинации админки).
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта аккаунтов: %w", err)
	}
	return n, nil
}
