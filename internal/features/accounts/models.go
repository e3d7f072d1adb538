// Package accounts управляет аккаунтами экономики.
// models.go описывает структуру аккаунта.
package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account представляет экономическое состояние одного пользователя.
// Балансы хранятся как decimal: накопление ошибки округления float
// на тысячах мелких начислений недопустимо.
type Account struct {
	ID            int64           `db:"id"`             // ID записи
	UserID        int64           `db:"user_id"`        // Внешний стабильный идентификатор
	Username      string          `db:"username"`       // Обновляется при каждой аутентификации
	CoinBalance   decimal.Decimal `db:"coin_balance"`   // Монеты, всегда >= 0
	GemBalance    decimal.Decimal `db:"gem_balance"`    // Кристаллы, всегда >= 0
	BonusSlots    int             `db:"bonus_slots"`    // Оплаченные кредиты на спин без монет
	LastCheckIn   *time.Time      `db:"last_check_in"`  // nil — чек-ина ещё не было
	StreakCount   int             `db:"streak_count"`   // Дней чек-ина подряд
	ReferrerID    *int64          `db:"referrer_id"`    // Устанавливается максимум один раз
	ReferralCount int             `db:"referral_count"` // Скольких пользователей привёл
	IsAdmin       bool            `db:"is_admin"`       // Меняется только примитивом SetAdmin
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// NewAccount создаёт аккаунт с нулевыми балансами.
// Стартовый баланс всегда ноль: любое начисление, включая реферальный
// бонус новичка, проходит через журнал — иначе сверка журнала
// с балансом не сойдётся.
func NewAccount(userID int64, username string) *Account {
	return &Account{
		UserID:      userID,
		Username:    username,
		CoinBalance: decimal.Zero,
		GemBalance:  decimal.Zero,
	}
}
