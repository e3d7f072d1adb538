// Package referrals — service.go собирает реферальную сводку.
package referrals

import (
	"context"

	"miniapp-economy/internal/features/accounts"
)

// Service отдаёт реферальную сводку пользователя.
type Service struct {
	milestones *Repository
	accounts   *accounts.Repository
}

// NewService создаёт сервис реферальной сводки.
func NewService(milestones *Repository, accts *accounts.Repository) *Service {
	return &Service{milestones: milestones, accounts: accts}
}

// Info возвращает число приглашённых и список вех.
// Чтение вне атомарной области: сводка не мутирует состояние.
func (s *Service) Info(ctx context.Context, userID int64) (*Info, error) {
	acc, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ms, err := s.milestones.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Info{InvitedCount: acc.ReferralCount, Milestones: ms}, nil
}
