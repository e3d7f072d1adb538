// Package cache реализует слой когерентности кэша снапшотов аккаунтов.
//
// Кэш — мягкий ускоритель чтения с коротким TTL, а не источник истины.
// Координатор обновляет его строго после коммита; ЛЮБАЯ ошибка кэша
// (чтение или запись) глотается и логируется — корректность журнала
// от кэша не зависит. Окно устаревания ограничено TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"miniapp-economy/internal/config"
	"miniapp-economy/internal/features/accounts"
)

// AccountCache хранит снапшоты аккаунтов в Redis под ключом account:<id>.
type AccountCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New создаёт кэш поверх Redis. Недоступность Redis на старте не фатальна:
// кэш просто будет промахиваться, движок продолжит работать.
func New(cfg *config.Config) *AccountCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &AccountCache{rdb: rdb, ttl: cfg.CacheTTL}
}

func key(userID int64) string {
	return fmt.Sprintf("account:%d", userID)
}

// Get возвращает снапшот аккаунта, если он есть в кэше.
// Промах и ошибка неразличимы для вызывающего: (nil, false).
func (c *AccountCache) Get(ctx context.Context, userID int64) (*accounts.Account, bool) {
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("user_id", userID).Warn("Кэш: ошибка чтения")
		}
		return nil, false
	}
	var a accounts.Account
	if err := json.Unmarshal(raw, &a); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Кэш: битый снапшот")
		return nil, false
	}
	return &a, true
}

// Put сохраняет снапшот аккаунта с TTL. Ошибки глотаются.
func (c *AccountCache) Put(ctx context.Context, a *accounts.Account) {
	raw, err := json.Marshal(a)
	if err != nil {
		log.WithError(err).WithField("user_id", a.UserID).Warn("Кэш: ошибка сериализации")
		return
	}
	if err := c.rdb.Set(ctx, key(a.UserID), raw, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("user_id", a.UserID).Warn("Кэш: ошибка записи")
	}
}

// Invalidate удаляет снапшот аккаунта. Ошибки глотаются.
func (c *AccountCache) Invalidate(ctx context.Context, userID int64) {
	if err := c.rdb.Del(ctx, key(userID)).Err(); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Кэш: ошибка инвалидации")
	}
}

// Close закрывает соединение с Redis.
func (c *AccountCache) Close() error {
	return c.rdb.Close()
}
