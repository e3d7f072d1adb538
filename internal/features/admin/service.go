// Package admin реализует административные примитивы поверх того же
// координатора транзакций, что и пользовательские операции: список
// аккаунтов, назначение администратора, сброс и удаление аккаунта.
//
// Каждое действие оставляет запись admin_adjustment в журнале наград
// под идентификатором ДЕЙСТВУЮЩЕГО администратора — поэтому чистка
// журнала целевого аккаунта такую запись не трогает.
package admin

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"miniapp-economy/internal/common"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/economy"
	"miniapp-economy/internal/features/ledger"
)

// AccountPage — страница списка аккаунтов с общим количеством.
type AccountPage struct {
	Accounts []*accounts.Account
	Total    int64
	Page     int
	Limit    int
}

// Service управляет административными действиями.
type Service struct {
	atomic economy.Atomic
	cache  economy.AccountCache
	audit  economy.AuditSink
}

// NewService создаёт административный сервис.
func NewService(atomic economy.Atomic, cache economy.AccountCache, audit economy.AuditSink) *Service {
	return &Service{atomic: atomic, cache: cache, audit: audit}
}

// ListAccounts возвращает страницу аккаунтов и общее число.
// Список и счётчик читаются в одной атомарной области, чтобы
// пагинация была согласованной.
func (s *Service) ListAccounts(ctx context.Context, page, limit int) (*AccountPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	var res AccountPage
	err := s.atomic.RunAtomic(ctx, func(st economy.Stores) error {
		accts, err := st.Accounts.List(ctx, (page-1)*limit, limit)
		if err != nil {
			return err
		}
		total, err := st.Accounts.Count(ctx)
		if err != nil {
			return err
		}
		res = AccountPage{Accounts: accts, Total: total, Page: page, Limit: limit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// PromoteAccount назначает целевой аккаунт администратором.
// Повторное назначение отклоняется как AlreadyDone.
func (s *Service) PromoteAccount(ctx context.Context, adminID, targetID int64) error {
	err := s.atomic.RunAtomic(ctx, func(st economy.Stores) error {
		target, err := st.Accounts.GetForUpdate(ctx, targetID)
		if err != nil {
			return err
		}
		if target.IsAdmin {
			return common.ErrAlreadyAdmin
		}
		if err := st.Accounts.SetAdmin(ctx, targetID); err != nil {
			return err
		}
		return st.Ledger.Append(ctx, &ledger.Entry{
			UserID:       adminID,
			Type:         ledger.EntryTypeAdminAdjustment,
			RewardType:   ledger.RewardTypeAdminPromote,
			Amount:       decimal.Zero,
			TargetUserID: &targetID,
			Details:      fmt.Sprintf("аккаунт %d назначен администратором", targetID),
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, targetID)
	s.audit.Log(ctx, adminID, "admin_promote", map[string]any{"target_id": targetID})
	log.WithFields(log.Fields{"admin_id": adminID, "target_id": targetID}).Info("Аккаунт назначен администратором")
	return nil
}

// ResetAccount обнуляет все изменяемые экономические поля аккаунта и
// чистит его журнал. Сам сброс логируется под ID администратора.
// Чистка выполняется ДО записи о сбросе: администратор может сбросить
// и собственный аккаунт, и тогда запись под его ID обязана пережить
// чистку его же журнала.
func (s *Service) ResetAccount(ctx context.Context, adminID, targetID int64) error {
	err := s.atomic.RunAtomic(ctx, func(st economy.Stores) error {
		target, err := st.Accounts.GetForUpdate(ctx, targetID)
		if err != nil {
			return err
		}

		target.CoinBalance = decimal.Zero
		target.GemBalance = decimal.Zero
		target.BonusSlots = 0
		target.LastCheckIn = nil
		target.StreakCount = 0
		target.ReferrerID = nil
		target.ReferralCount = 0
		if err := st.Accounts.Update(ctx, target); err != nil {
			return err
		}

		if err := st.Ledger.PurgeByUser(ctx, targetID); err != nil {
			return err
		}
		return st.Ledger.Append(ctx, &ledger.Entry{
			UserID:       adminID,
			Type:         ledger.EntryTypeAdminAdjustment,
			RewardType:   ledger.RewardTypeUserReset,
			Amount:       decimal.Zero,
			TargetUserID: &targetID,
			Details:      fmt.Sprintf("экономика аккаунта %d сброшена", targetID),
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, targetID)
	s.audit.Log(ctx, adminID, "admin_reset", map[string]any{"target_id": targetID})
	return nil
}

// CreditCoins начисляет целевому аккаунту монеты от имени администратора.
// Сумма обязана быть строго положительной: административные списания
// делаются сбросом, а не отрицательным начислением. Запись лежит под ID
// целевого аккаунта, чтобы сверка журнала с балансом сходилась.
func (s *Service) CreditCoins(ctx context.Context, adminID, targetID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}

	err := s.atomic.RunAtomic(ctx, func(st economy.Stores) error {
		target, err := st.Accounts.GetForUpdate(ctx, targetID)
		if err != nil {
			return err
		}
		target.CoinBalance = target.CoinBalance.Add(amount)
		if err := st.Accounts.Update(ctx, target); err != nil {
			return err
		}
		return st.Ledger.Append(ctx, &ledger.Entry{
			UserID:       targetID,
			Type:         ledger.EntryTypeAdminAdjustment,
			RewardType:   ledger.RewardTypeCoin,
			Amount:       amount,
			TargetUserID: &adminID,
			Details:      fmt.Sprintf("начисление администратором %d", adminID),
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, targetID)
	s.audit.Log(ctx, adminID, "admin_credit", map[string]any{
		"target_id": targetID,
		"amount":    amount.String(),
	})
	return nil
}

// DeleteAccount удаляет аккаунт вместе с его журналом.
// Удаление собственного аккаунта запрещено; действие логируется
// под ID администратора.
func (s *Service) DeleteAccount(ctx context.Context, adminID, targetID int64) error {
	if adminID == targetID {
		return common.ErrSelfDelete
	}

	err := s.atomic.RunAtomic(ctx, func(st economy.Stores) error {
		if _, err := st.Accounts.GetForUpdate(ctx, targetID); err != nil {
			return err
		}
		if err := st.Accounts.Delete(ctx, targetID); err != nil {
			return err
		}
		if err := st.Ledger.PurgeByUser(ctx, targetID); err != nil {
			return err
		}
		return st.Ledger.Append(ctx, &ledger.Entry{
			UserID:       adminID,
			Type:         ledger.EntryTypeAdminAdjustment,
			RewardType:   ledger.RewardTypeUserDelete,
			Amount:       decimal.Zero,
			TargetUserID: &targetID,
			Details:      fmt.Sprintf("аккаунт %d удалён вместе с журналом", targetID),
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, targetID)
	s.audit.Log(ctx, adminID, "admin_delete", map[string]any{"target_id": targetID})
	return nil
}
