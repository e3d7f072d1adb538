// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, кэш, координатор транзакций,
// сервисы и планировщик, и собирает всё в один объект App.
//
// Транспортный слой (HTTP-роутинг, верификация Telegram-подписи,
// rate limiting) живёт снаружи и монтируется поверх сервисов App:
// движок получает уже проверенный идентификатор пользователя.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"miniapp-economy/internal/cache"
	"miniapp-economy/internal/config"
	"miniapp-economy/internal/db/postgres"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/admin"
	"miniapp-economy/internal/features/audit"
	"miniapp-economy/internal/features/economy"
	"miniapp-economy/internal/features/ledger"
	"miniapp-economy/internal/features/referrals"
	"miniapp-economy/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Economy   *economy.Service
	Admin     *admin.Service
	Referrals *referrals.Service
	Scheduler *jobs.Scheduler
	Cache     *cache.AccountCache
	DB        *pgxpool.Pool
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Кэш снапшотов ===
	accountCache := cache.New(cfg)

	// === 3. Репозитории поверх пула (для чтений вне транзакций) ===
	accountRepo := accounts.NewRepository(pool)
	ledgerRepo := ledger.NewRepository(pool)
	milestoneRepo := referrals.NewRepository(pool)
	auditLogger := audit.NewLogger(pool)

	// === 4. Координатор транзакций и сервисы ===
	coordinator := economy.NewTxCoordinator(pool)
	economyService := economy.NewService(coordinator, accountCache, auditLogger, economy.NewDrawSource(), cfg)
	adminService := admin.NewService(coordinator, accountCache, auditLogger)
	referralService := referrals.NewService(milestoneRepo, accountRepo)

	// === 5. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, accountRepo, ledgerRepo)

	log.Info("Приложение собрано")

	return &App{
		Economy:   economyService,
		Admin:     adminService,
		Referrals: referralService,
		Scheduler: scheduler,
		Cache:     accountCache,
		DB:        pool,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Accounts},
		{2, migration002RewardEntries},
		{3, migration003AuditLogs},
		{4, migration004ReferralMilestones},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Accounts = `
CREATE TABLE IF NOT EXISTS accounts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255) NOT NULL DEFAULT '',
    coin_balance NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (coin_balance >= 0),
    gem_balance NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (gem_balance >= 0),
    bonus_slots INTEGER NOT NULL DEFAULT 0 CHECK (bonus_slots >= 0),
    last_check_in TIMESTAMPTZ,
    streak_count INTEGER NOT NULL DEFAULT 0 CHECK (streak_count >= 0),
    referrer_id BIGINT,
    referral_count INTEGER NOT NULL DEFAULT 0 CHECK (referral_count >= 0),
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
CREATE INDEX IF NOT EXISTS idx_accounts_referrer_id ON accounts(referrer_id);
`

var migration002RewardEntries = `
CREATE TABLE IF NOT EXISTS reward_entries (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    entry_type VARCHAR(32) NOT NULL,
    reward_type VARCHAR(32) NOT NULL,
    amount NUMERIC(20,2) NOT NULL,
    target_user_id BIGINT,
    details TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reward_entries_user_id ON reward_entries(user_id, created_at DESC);
`

var migration003AuditLogs = `
CREATE TABLE IF NOT EXISTS audit_logs (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    action VARCHAR(64) NOT NULL,
    details JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id, created_at DESC);
`

var migration004ReferralMilestones = `
CREATE TABLE IF NOT EXISTS referral_milestones (
    id BIGSERIAL PRIMARY KEY,
    reward_type VARCHAR(16) NOT NULL,
    value NUMERIC(20,2) NOT NULL,
    required_active INTEGER NOT NULL
);
INSERT INTO referral_milestones (reward_type, value, required_active)
SELECT v.reward_type, v.value, v.required_active
FROM (VALUES
    ('coin', 25.00, 3),
    ('coin', 100.00, 10),
    ('gem', 5.00, 25)
) AS v(reward_type, value, required_active)
WHERE NOT EXISTS (SELECT 1 FROM referral_milestones);
`
