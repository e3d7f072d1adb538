// Package audit ведёт журнал действий: кто, что и с какими деталями сделал.
// Запись best-effort: аудит никогда не ломает операцию, сбои глотаются
// и логируются.
package audit

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"miniapp-economy/internal/db/postgres"
)

// Record — одна запись журнала действий.
type Record struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"` // Кто действовал
	Action    string    `db:"action"`  // register, login, paid_spin, ...
	Details   []byte    `db:"details"` // Произвольный JSON
	CreatedAt time.Time `db:"created_at"`
}

// Logger пишет записи аудита в таблицу audit_logs.
type Logger struct {
	q postgres.Querier
}

// NewLogger создаёт журнал действий поверх пула.
func NewLogger(q postgres.Querier) *Logger {
	return &Logger{q: q}
}

// Log добавляет запись. Ошибка не возвращается намеренно:
// вызывающие не должны проверять аудит.
func (l *Logger) Log(ctx context.Context, actorID int64, action string, details map[string]any) {
	raw, err := json.Marshal(details)
	if err != nil {
		log.WithError(err).WithField("action", action).Warn("Аудит: ошибка сериализации деталей")
		raw = []byte("{}")
	}
	_, err = l.q.Exec(ctx, `
		INSERT INTO audit_logs (user_id, action, details)
		VALUES ($1, $2, $3)
	`, actorID, action, raw)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": actorID,
			"action":  action,
		}).Warn("Аудит: запись не удалась")
	}
}

// ListByUser возвращает последние записи пользователя (для админки).
func (l *Logger) ListByUser(ctx context.Context, userID int64, limit int) ([]*Record, error) {
	rows, err := l.q.Query(ctx, `
		SELECT id, user_id, action, details, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Action, &r.Details, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
