// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ночная сверка журнала с балансами.
//
// Сверка — контроль главного инварианта движка: сумма записей журнала
// по валюте равна текущему балансу аккаунта. Движок сам этот инвариант
// гарантирует; задача ловит расхождения от ручных правок в БД.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"miniapp-economy/internal/config"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/ledger"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	accounts *accounts.Repository
	ledger   *ledger.Repository
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(cfg *config.Config, accts *accounts.Repository, entries *ledger.Repository) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Location()))
	return &Scheduler{
		cron:     c,
		accounts: accts,
		ledger:   entries,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ночная сверка в 03:30 — вне пиковой нагрузки
	s.cron.AddFunc("30 3 * * *", func() {
		log.Info("[CRON] Сверка журнала с балансами")
		if err := s.ReconcileLedger(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка сверки")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// ReconcileLedger постранично обходит все аккаунты и сверяет суммы
// журнала с балансами. Расхождение — ошибка уровня Error в логах,
// но обход продолжается: одна битая запись не должна прятать другие.
func (s *Scheduler) ReconcileLedger(ctx context.Context) error {
	const pageSize = 200

	var mismatches int
	for offset := 0; ; offset += pageSize {
		page, err := s.accounts.List(ctx, offset, pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}

		for _, acc := range page {
			sums, err := s.ledger.SumByUser(ctx, acc.UserID)
			if err != nil {
				log.WithError(err).WithField("user_id", acc.UserID).Error("Сверка: не удалось посчитать суммы")
				continue
			}
			// Стартовый баланс нулевой, поэтому суммы обязаны
			// совпадать с балансами точно
			if !sums.Coins.Equal(acc.CoinBalance) || !sums.Gems.Equal(acc.GemBalance) {
				mismatches++
				log.WithFields(log.Fields{
					"user_id":      acc.UserID,
					"coin_balance": acc.CoinBalance.String(),
					"coin_ledger":  sums.Coins.String(),
					"gem_balance":  acc.GemBalance.String(),
					"gem_ledger":   sums.Gems.String(),
				}).Error("Сверка: журнал не сходится с балансом")
			}
		}

		if len(page) < pageSize {
			break
		}
	}

	if mismatches == 0 {
		log.Info("Сверка завершена: расхождений нет")
	} else {
		log.WithField("mismatches", mismatches).Warn("Сверка завершена с расхождениями")
	}
	return nil
}
