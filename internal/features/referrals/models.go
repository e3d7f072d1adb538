// Package referrals отдаёт реферальную сводку пользователя:
// сколько приглашено и какие вехи существуют.
// models.go описывает веху реферальной программы.
package referrals

import "github.com/shopspring/decimal"

// Milestone — веха реферальной программы: награда за N активных рефералов.
// Вехи задаются миграцией и читаются как есть; операции получения
// наград по вехам в движке нет.
type Milestone struct {
	ID             int64           `db:"id"`
	RewardType     string          `db:"reward_type"` // coin или gem
	Value          decimal.Decimal `db:"value"`
	RequiredActive int             `db:"required_active"`
}

// Info — реферальная сводка пользователя.
type Info struct {
	InvitedCount int
	Milestones   []*Milestone
}
