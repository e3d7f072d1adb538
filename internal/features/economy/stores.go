// Package economy — stores.go описывает хранилища, которыми пользуются
// операции экономики, и координатор транзакций поверх PostgreSQL.
//
// Сервис зависит от интерфейсов, а не от pgx напрямую: тесты подставляют
// память вместо базы и проверяют инварианты журнала без инфраструктуры.
package economy

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"miniapp-economy/internal/db/postgres"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/ledger"
)

// AccountStore — операции над аккаунтами внутри атомарной области.
type AccountStore interface {
	Get(ctx context.Context, userID int64) (*accounts.Account, error)
	// GetForUpdate обязан перечитывать состояние под блокировкой:
	// снапшоту, принесённому вызывающим, доверять нельзя
	GetForUpdate(ctx context.Context, userID int64) (*accounts.Account, error)
	Create(ctx context.Context, a *accounts.Account) error
	Update(ctx context.Context, a *accounts.Account) error
	SetAdmin(ctx context.Context, userID int64) error
	Delete(ctx context.Context, userID int64) error
	List(ctx context.Context, offset, limit int) ([]*accounts.Account, error)
	Count(ctx context.Context) (int64, error)
}

// LedgerStore — операции над журналом наград внутри атомарной области.
type LedgerStore interface {
	Append(ctx context.Context, entries ...*ledger.Entry) error
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*ledger.Entry, error)
	PurgeByUser(ctx context.Context, userID int64) error
}

// Stores — набор хранилищ, принадлежащих одной атомарной области.
type Stores struct {
	Accounts AccountStore
	Ledger   LedgerStore
}

// Atomic — координатор транзакций.
// RunAtomic выполняет fn против согласованного изолированного представления
// хранилища: все записи внутри либо коммитятся разом, либо откатываются
// разом при любой ошибке, включая бизнес-отказ.
type Atomic interface {
	RunAtomic(ctx context.Context, fn func(s Stores) error) error
}

// AccountCache — побочный канал для слоя когерентности кэша.
// Координатор дёргает его строго ПОСЛЕ коммита; ошибки кэша глотаются
// внутри реализации и никогда не влияют на исход операции.
type AccountCache interface {
	Put(ctx context.Context, a *accounts.Account)
	Invalidate(ctx context.Context, userID int64)
}

// AuditSink — журнал действий (кто, что, детали).
// Пишется best-effort после коммита; сбой аудита не ломает операцию.
type AuditSink interface {
	Log(ctx context.Context, actorID int64, action string, details map[string]any)
}

// TxCoordinator реализует Atomic поверх пула PostgreSQL:
// каждая область — одна транзакция БД, хранилища строятся над ней.
type TxCoordinator struct {
	pool *pgxpool.Pool
}

// NewTxCoordinator создаёт координатор поверх пула.
func NewTxCoordinator(pool *pgxpool.Pool) *TxCoordinator {
	return &TxCoordinator{pool: pool}
}

// RunAtomic выполняет fn в одной транзакции БД.
func (c *TxCoordinator) RunAtomic(ctx context.Context, fn func(s Stores) error) error {
	return postgres.RunAtomic(ctx, c.pool, func(q postgres.Querier) error {
		return fn(Stores{
			Accounts: accounts.NewRepository(q),
			Ledger:   ledger.NewRepository(q),
		})
	})
}
