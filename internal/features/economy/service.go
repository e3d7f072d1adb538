// Package economy — service.go содержит пять пользовательских операций
// экономики: аутентификация, бесплатный слот, платный спин, чек-ин и
// реферальное начисление, плюс постраничное чтение журнала.
//
// Каждая операция — одна атомарная область: прочитать аккаунт(ы) под
// блокировкой, изменить в памяти, записать журнал, закоммитить всё разом.
// Кэш и аудит трогаются строго после коммита и не влияют на исход.
package economy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"miniapp-economy/internal/common"
	"miniapp-economy/internal/config"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/ledger"
)

// Service управляет экономикой мини-приложения.
type Service struct {
	atomic Atomic       // Координатор транзакций
	cache  AccountCache // Слой когерентности кэша (best-effort)
	audit  AuditSink    // Журнал действий (best-effort)
	draws  DrawSource   // Источник случайных бросков
	cfg    *config.Config
	now    func() time.Time // Подменяется в тестах
}

// NewService создаёт сервис экономики.
func NewService(atomic Atomic, cache AccountCache, audit AuditSink, draws DrawSource, cfg *config.Config) *Service {
	return &Service{
		atomic: atomic,
		cache:  cache,
		audit:  audit,
		draws:  draws,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Authenticate обрабатывает успешную аутентификацию пользователя.
// Для незнакомого идентификатора создаётся аккаунт с нулевыми балансами;
// для знакомого — обновляется отображаемое имя, если оно изменилось.
//
// Если при регистрации передан referrerID, реферальный бонус начисляется
// в той же атомарной области. Некорректный реферер (не найден, сам себе)
// регистрацию НЕ ломает: бонус просто не начисляется — так вёл себя
// оригинальный поток регистрации.
func (s *Service) Authenticate(ctx context.Context, userID int64, username string, referrerID *int64) (*AuthResult, error) {
	var (
		res      AuthResult
		referrer *accounts.Account
	)
	err := s.atomic.RunAtomic(ctx, func(st Stores) error {
		res = AuthResult{}
		referrer = nil

		acc, err := st.Accounts.Get(ctx, userID)
		if err == nil {
			if username != "" && acc.Username != username {
				acc.Username = username
				if err := st.Accounts.Update(ctx, acc); err != nil {
					return err
				}
			}
			res.Account = acc
			return nil
		}
		if !errors.Is(err, common.ErrAccountNotFound) {
			return err
		}

		// Первая аутентификация — создаём аккаунт
		acc = accounts.NewAccount(userID, username)
		if err := st.Accounts.Create(ctx, acc); err != nil {
			return err
		}
		res.Account = acc
		res.IsNew = true

		if referrerID == nil {
			return nil
		}
		ref, err := s.applyReferral(ctx, st, acc, *referrerID)
		if err != nil {
			if common.IsBusinessError(err) {
				log.WithFields(log.Fields{
					"user_id":     userID,
					"referrer_id": *referrerID,
				}).WithError(err).Warn("Реферер при регистрации отклонён")
				return nil
			}
			return err
		}
		referrer = ref
		res.ReferralApplied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, res.Account)
	if referrer != nil {
		s.cache.Put(ctx, referrer)
	}
	action := "login"
	if res.IsNew {
		action = "register"
	}
	s.audit.Log(ctx, userID, action, map[string]any{"referral_applied": res.ReferralApplied})
	return &res, nil
}

// FreeSlotSpin крутит бесплатный слот: без стоимости, исход всегда
// строго положительный монетный выигрыш, ровно одна запись журнала.
func (s *Service) FreeSlotSpin(ctx context.Context, userID int64) (*FreeSlotResult, error) {
	var (
		res     FreeSlotResult
		updated *accounts.Account
	)
	err := s.atomic.RunAtomic(ctx, func(st Stores) error {
		acc, err := st.Accounts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		reward := ResolveFreeSlot(s.cfg, s.draws.Draw())
		acc.CoinBalance = acc.CoinBalance.Add(reward)
		if err := st.Accounts.Update(ctx, acc); err != nil {
			return err
		}
		if err := st.Ledger.Append(ctx, &ledger.Entry{
			UserID:     userID,
			Type:       ledger.EntryTypeFreeSlot,
			RewardType: ledger.RewardTypeCoin,
			Amount:     reward,
		}); err != nil {
			return err
		}

		updated = acc
		res = FreeSlotResult{Reward: reward, Balance: snapshotOf(acc)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, updated)
	s.audit.Log(ctx, userID, "free_slot", map[string]any{"reward": res.Reward.String()})
	return &res, nil
}

// PaidSpin крутит платный спин.
//
// Ёмкость спина = floor(монеты / стоимость) + бонусные слоты; при нуле —
// InsufficientResources до какой-либо записи. Стоимость списывается одним
// бонусным слотом, если они есть, иначе монетами. Списание и награда —
// две независимые записи журнала, даже когда выигрыш пуст.
func (s *Service) PaidSpin(ctx context.Context, userID int64) (*SpinResult, error) {
	var (
		res     SpinResult
		updated *accounts.Account
	)
	err := s.atomic.RunAtomic(ctx, func(st Stores) error {
		acc, err := st.Accounts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		spinCost := decimal.NewFromInt(s.cfg.SpinCost)

		// Списание стоимости
		var costType ledger.RewardType
		var cost decimal.Decimal
		switch {
		case acc.BonusSlots > 0:
			acc.BonusSlots--
			costType = ledger.RewardTypeBonusSlot
			cost = decimal.NewFromInt(-1)
		case acc.CoinBalance.GreaterThanOrEqual(spinCost):
			acc.CoinBalance = acc.CoinBalance.Sub(spinCost)
			costType = ledger.RewardTypeCoin
			cost = spinCost.Neg()
		default:
			return common.ErrInsufficientFunds
		}

		// Один бросок на операцию, перебрасывать исход нельзя
		outcome := ResolvePaidSpin(s.cfg, s.draws.Draw())
		switch outcome.RewardType {
		case ledger.RewardTypeCoin:
			acc.CoinBalance = acc.CoinBalance.Add(outcome.Amount)
		case ledger.RewardTypeGem:
			acc.GemBalance = acc.GemBalance.Add(outcome.Amount)
		}

		if err := st.Accounts.Update(ctx, acc); err != nil {
			return err
		}
		if err := st.Ledger.Append(ctx,
			&ledger.Entry{
				UserID:     userID,
				Type:       ledger.EntryTypeSpinCost,
				RewardType: costType,
				Amount:     cost,
			},
			&ledger.Entry{
				UserID:     userID,
				Type:       ledger.EntryTypeSpinReward,
				RewardType: outcome.RewardType,
				Amount:     outcome.Amount,
			},
		); err != nil {
			return err
		}

		updated = acc
		res = SpinResult{
			CostType:   costType,
			Cost:       cost,
			RewardType: outcome.RewardType,
			Reward:     outcome.Amount,
			Balance:    snapshotOf(acc),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, updated)
	s.audit.Log(ctx, userID, "paid_spin", map[string]any{
		"reward_type": string(res.RewardType),
		"reward":      res.Reward.String(),
	})
	return &res, nil
}

// CheckIn выполняет ежедневный чек-ин.
//
// Повторный чек-ин в тот же календарный день отклоняется. Стрик растёт
// только если прошлый чек-ин был ровно вчера, иначе сбрасывается в 1.
// Монетная награда фиксированная; от длины стрика зависят только
// бонусные слоты (3, 5, 7 и «больше 7»).
func (s *Service) CheckIn(ctx context.Context, userID int64) (*CheckInResult, error) {
	loc := s.cfg.Location()
	now := s.now()

	var (
		res     CheckInResult
		updated *accounts.Account
	)
	err := s.atomic.RunAtomic(ctx, func(st Stores) error {
		acc, err := st.Accounts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if acc.LastCheckIn != nil && common.SameDay(*acc.LastCheckIn, now, loc) {
			return common.ErrAlreadyCheckedIn
		}

		streak := 1
		if acc.LastCheckIn != nil && common.IsYesterday(*acc.LastCheckIn, now, loc) {
			streak = acc.StreakCount + 1
		}
		slots := s.cfg.StreakSlotBonus(streak)
		reward := decimal.NewFromInt(s.cfg.CheckInBaseReward)

		checkedInAt := now
		acc.LastCheckIn = &checkedInAt
		acc.StreakCount = streak
		acc.CoinBalance = acc.CoinBalance.Add(reward)
		acc.BonusSlots += slots

		if err := st.Accounts.Update(ctx, acc); err != nil {
			return err
		}

		// Ровно одна запись на чек-ин. Amount — только монетная часть:
		// слоты живут в reward_type и деталях, иначе сверка журнала
		// по монетам не сойдётся.
		rewardType := ledger.RewardTypeCoin
		details := fmt.Sprintf("стрик %d", streak)
		if slots > 0 {
			rewardType = ledger.RewardTypeCoinAndSlot
			details = fmt.Sprintf("стрик %d, +%d %s", streak, slots, common.PluralizeSlots(int64(slots)))
		}
		if err := st.Ledger.Append(ctx, &ledger.Entry{
			UserID:     userID,
			Type:       ledger.EntryTypeCheckIn,
			RewardType: rewardType,
			Amount:     reward,
			Details:    details,
		}); err != nil {
			return err
		}

		updated = acc
		res = CheckInResult{
			Reward:     reward,
			Streak:     streak,
			BonusSlots: slots,
			Balance:    snapshotOf(acc),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, updated)
	s.audit.Log(ctx, userID, "checkin", map[string]any{"streak": res.Streak, "slots": res.BonusSlots})
	return &res, nil
}

// ReferralCredit начисляет реферальный бонус по явному вызову.
// Тот же guard, что и на пути регистрации: реферер ещё не установлен,
// не сам себе, реферер существует. Оба аккаунта меняются в одной
// атомарной области — полуприменённого реферала не бывает.
func (s *Service) ReferralCredit(ctx context.Context, userID, referrerID int64) (*ReferralResult, error) {
	if userID == referrerID {
		return nil, common.ErrSelfReferral
	}

	var (
		referred *accounts.Account
		referrer *accounts.Account
	)
	err := s.atomic.RunAtomic(ctx, func(st Stores) error {
		// Блокируем строки в порядке возрастания id, чтобы встречные
		// рефералы не дедлочились
		lockOrder := []int64{userID, referrerID}
		if referrerID < userID {
			lockOrder[0], lockOrder[1] = referrerID, userID
		}
		locked := make(map[int64]*accounts.Account, 2)
		for _, id := range lockOrder {
			a, err := st.Accounts.GetForUpdate(ctx, id)
			if err != nil {
				if errors.Is(err, common.ErrAccountNotFound) && id == referrerID {
					return common.ErrReferrerNotFound
				}
				return err
			}
			locked[id] = a
		}
		referred = locked[userID]
		referrer = locked[referrerID]

		if referred.ReferrerID != nil {
			return common.ErrReferralAlreadySet
		}
		return s.creditReferral(ctx, st, referred, referrer)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, referred)
	s.cache.Put(ctx, referrer)
	s.audit.Log(ctx, userID, "referral", map[string]any{"referrer_id": referrerID})
	return &ReferralResult{
		NewUserBonus:  decimal.NewFromInt(s.cfg.ReferralNewUserCoins),
		ReferrerBonus: decimal.NewFromInt(s.cfg.ReferralReferrerCoins),
		ReferrerSlots: s.cfg.ReferralReferrerSlots,
		Balance:       snapshotOf(referred),
	}, nil
}

// applyReferral — guard и начисление для пути регистрации.
// Возвращает аккаунт реферера, если бонус начислен.
func (s *Service) applyReferral(ctx context.Context, st Stores, referred *accounts.Account, referrerID int64) (*accounts.Account, error) {
	if referrerID == referred.UserID {
		return nil, common.ErrSelfReferral
	}
	if referred.ReferrerID != nil {
		return nil, common.ErrReferralAlreadySet
	}
	referrer, err := st.Accounts.GetForUpdate(ctx, referrerID)
	if err != nil {
		if errors.Is(err, common.ErrAccountNotFound) {
			return nil, common.ErrReferrerNotFound
		}
		return nil, err
	}
	if err := s.creditReferral(ctx, st, referred, referrer); err != nil {
		return nil, err
	}
	return referrer, nil
}

// creditReferral выполняет само начисление: guard уже пройден.
// Три записи журнала: бонус приглашённому, монетный бонус рефереру и
// слотовый бонус рефереру отдельным видом награды.
func (s *Service) creditReferral(ctx context.Context, st Stores, referred, referrer *accounts.Account) error {
	newUserBonus := decimal.NewFromInt(s.cfg.ReferralNewUserCoins)
	referrerBonus := decimal.NewFromInt(s.cfg.ReferralReferrerCoins)
	referrerSlots := s.cfg.ReferralReferrerSlots

	referrerID := referrer.UserID
	referred.ReferrerID = &referrerID
	referred.CoinBalance = referred.CoinBalance.Add(newUserBonus)

	referrer.CoinBalance = referrer.CoinBalance.Add(referrerBonus)
	referrer.BonusSlots += referrerSlots
	referrer.ReferralCount++

	if err := st.Accounts.Update(ctx, referred); err != nil {
		return err
	}
	if err := st.Accounts.Update(ctx, referrer); err != nil {
		return err
	}

	referredID := referred.UserID
	return st.Ledger.Append(ctx,
		&ledger.Entry{
			UserID:       referredID,
			Type:         ledger.EntryTypeReferral,
			RewardType:   ledger.RewardTypeCoin,
			Amount:       newUserBonus,
			TargetUserID: &referrerID,
			Details:      fmt.Sprintf("+%d %s за регистрацию по приглашению", s.cfg.ReferralNewUserCoins, common.PluralizeCoins(s.cfg.ReferralNewUserCoins)),
		},
		&ledger.Entry{
			UserID:       referrerID,
			Type:         ledger.EntryTypeReferral,
			RewardType:   ledger.RewardTypeCoin,
			Amount:       referrerBonus,
			TargetUserID: &referredID,
			Details:      fmt.Sprintf("+%d %s за приглашённого", s.cfg.ReferralReferrerCoins, common.PluralizeCoins(s.cfg.ReferralReferrerCoins)),
		},
		&ledger.Entry{
			UserID:       referrerID,
			Type:         ledger.EntryTypeReferral,
			RewardType:   ledger.RewardTypeBonusSlot,
			Amount:       decimal.NewFromInt(int64(referrerSlots)),
			TargetUserID: &referredID,
			Details:      fmt.Sprintf("+%d %s за приглашённого", referrerSlots, common.PluralizeSlots(int64(referrerSlots))),
		},
	)
}

// ListRewardEntries возвращает страницу журнала аккаунта, новые первыми.
// Нулевой или превышающий лимит размер страницы приводится к
// сконфигурированному.
func (s *Service) ListRewardEntries(ctx context.Context, userID int64, page, pageSize int) ([]*ledger.Entry, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > s.cfg.LedgerPageSize {
		pageSize = s.cfg.LedgerPageSize
	}

	var entries []*ledger.Entry
	err := s.atomic.RunAtomic(ctx, func(st Stores) error {
		// Проверяем существование аккаунта, чтобы отличать
		// «нет записей» от «нет аккаунта»
		if _, err := st.Accounts.Get(ctx, userID); err != nil {
			return err
		}
		var err error
		entries, err = st.Ledger.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
