// Package economy — models.go описывает результаты операций.
package economy

import (
	"github.com/shopspring/decimal"

	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/ledger"
)

// BalanceSnapshot — балансы после успешной операции.
type BalanceSnapshot struct {
	Coins      decimal.Decimal
	Gems       decimal.Decimal
	BonusSlots int
}

func snapshotOf(a *accounts.Account) BalanceSnapshot {
	return BalanceSnapshot{
		Coins:      a.CoinBalance,
		Gems:       a.GemBalance,
		BonusSlots: a.BonusSlots,
	}
}

// AuthResult — результат аутентификации.
type AuthResult struct {
	Account         *accounts.Account
	IsNew           bool // Аккаунт создан этим вызовом
	ReferralApplied bool // Реферальный бонус начислен при регистрации
}

// FreeSlotResult — результат бесплатного слота.
type FreeSlotResult struct {
	Reward  decimal.Decimal // Всегда строго положительная
	Balance BalanceSnapshot
}

// SpinResult — результат платного спина.
// Списание и награда — два независимых факта: даже при пустом выигрыше
// журнал показывает стоимость.
type SpinResult struct {
	CostType   ledger.RewardType // Чем оплачен спин: coin или bonus_slot
	Cost       decimal.Decimal   // Отрицательная сумма списания
	RewardType ledger.RewardType // coin, gem или none
	Reward     decimal.Decimal
	Balance    BalanceSnapshot
}

// CheckInResult — результат чек-ина.
type CheckInResult struct {
	Reward     decimal.Decimal // Базовая награда, от стрика не зависит
	Streak     int             // Новая длина стрика
	BonusSlots int             // Слоты, выданные за эту длину (может быть 0)
	Balance    BalanceSnapshot
}

// ReferralResult — результат реферального начисления.
type ReferralResult struct {
	NewUserBonus  decimal.Decimal // Монеты приглашённому
	ReferrerBonus decimal.Decimal // Монеты рефереру
	ReferrerSlots int             // Слоты рефереру
	Balance       BalanceSnapshot // Балансы приглашённого
}
