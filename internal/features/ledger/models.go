// Package ledger ведёт append-only журнал наград.
// models.go описывает запись журнала и допустимые типы.
//
// Журнал — главный инвариант движка: сумма amount по валюте для аккаунта
// с момента его создания равна текущему балансу (стартовый баланс — ноль).
// Записи никогда не обновляются и не удаляются, кроме явного
// административного сброса, который сам оставляет запись.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType — тип события, породившего запись.
type EntryType string

const (
	EntryTypeSpinCost        EntryType = "spin_cost"        // Списание стоимости спина
	EntryTypeSpinReward      EntryType = "spin_reward"      // Выигрыш платного спина
	EntryTypeCheckIn         EntryType = "checkin"          // Ежедневный чек-ин
	EntryTypeReferral        EntryType = "referral"         // Реферальный бонус
	EntryTypeFreeSlot        EntryType = "free_slot"        // Бесплатный слот
	EntryTypeAdminAdjustment EntryType = "admin_adjustment" // Действие администратора
)

// RewardType — валюта или вид награды в записи.
type RewardType string

const (
	RewardTypeCoin         RewardType = "coin"          // Монеты
	RewardTypeGem          RewardType = "gem"           // Кристаллы
	RewardTypeBonusSlot    RewardType = "bonus_slot"    // Бонусные слоты (amount — количество)
	RewardTypeCoinAndSlot  RewardType = "coin_and_slot" // Чек-ин: монеты + слоты одной записью
	RewardTypeNone         RewardType = "none"          // Спин без выигрыша (amount = 0)
	RewardTypeUserReset    RewardType = "user_reset"    // Административный сброс
	RewardTypeAdminPromote RewardType = "admin_promote" // Назначение администратора
	RewardTypeUserDelete   RewardType = "user_delete"   // Удаление аккаунта
)

// Entry — одна неизменяемая запись журнала.
// Amount знаковый: списания отрицательные, начисления положительные.
type Entry struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`        // Чей баланс затронут
	Type         EntryType       `db:"entry_type"`     // Что произошло
	RewardType   RewardType      `db:"reward_type"`    // В какой валюте
	Amount       decimal.Decimal `db:"amount"`         // Знаковая сумма
	TargetUserID *int64          `db:"target_user_id"` // Второй аккаунт (реферал, админ-действие)
	Details      string          `db:"details"`        // Свободный текст
	CreatedAt    time.Time       `db:"created_at"`
}

// CurrencySums — суммы журнала по валютам для одного аккаунта.
// coin_and_slot учитывается в монетах: amount такой записи хранит
// только монетную часть, слоты живут в деталях.
type CurrencySums struct {
	Coins decimal.Decimal
	Gems  decimal.Decimal
}
