// Package postgres — atomic.go реализует атомарную область операции.
// Контракт: все чтения и записи внутри fn принадлежат одной транзакции БД;
// любая ошибка fn откатывает всё сразу, частичных записей не остаётся.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"miniapp-economy/internal/common"
)

// Querier — общий интерфейс запросов, который реализуют и пул, и транзакция.
// Репозитории принимают Querier и не знают, работают ли они в транзакции.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunAtomic выполняет fn внутри одной транзакции БД.
//
// Сбои инфраструктуры (Begin/Commit) оборачиваются в ErrStoreUnavailable:
// ничего не записано, повтор всей операции безопасен. Бизнес-ошибка из fn
// возвращается как есть — откат уже выполнен.
//
// Автоматических повторов нет: политика повторов — забота вызывающего.
func RunAtomic(ctx context.Context, pool *pgxpool.Pool, fn func(q Querier) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrStoreUnavailable, err)
	}
	// Откат после коммита — no-op, поэтому defer безопасен
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}
