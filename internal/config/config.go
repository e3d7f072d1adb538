// Package config загружает конфигурацию движка из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
//
// Все экономические константы неизменяемы после старта процесса: структура
// загружается один раз в main() и явно передаётся в сервисы. Никакого
// глобального состояния — это позволяет подменять конфиг в тестах.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"economy"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"miniapp_economy"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Redis (кэш снапшотов аккаунтов) ---
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Часовой пояс календарных суток для чек-инов и стриков
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Платный спин ---
	// Стоимость одного спина в монетах
	SpinCost int64 `envconfig:"ECONOMY_SPIN_COST" default:"10"`
	// Кумулятивные полосы вероятностей на одном броске r из [0,1):
	//   r < SpinCoinChance                      → монетный выигрыш
	//   r < SpinCoinChance + SpinGemChance      → 1 кристалл
	//   иначе                                   → без выигрыша
	SpinCoinChance float64 `envconfig:"ECONOMY_SPIN_COIN_CHANCE" default:"0.30"`
	SpinGemChance  float64 `envconfig:"ECONOMY_SPIN_GEM_CHANCE" default:"0.20"`
	// Номиналы монетных выигрышей (выбираются равновероятно)
	SpinCoinRewardsRaw string  `envconfig:"ECONOMY_SPIN_COIN_REWARDS" default:"50,102,203"`
	SpinCoinRewards    []int64 `envconfig:"-"` // заполним вручную

	// --- Бесплатный слот ---
	FreeSlotBigChance       float64 `envconfig:"ECONOMY_FREESLOT_BIG_CHANCE" default:"0.05"`
	FreeSlotBigRewardsRaw   string  `envconfig:"ECONOMY_FREESLOT_BIG_REWARDS" default:"10,15,20"`
	FreeSlotSmallRewardsRaw string  `envconfig:"ECONOMY_FREESLOT_SMALL_REWARDS" default:"1,2,3"`
	FreeSlotBigRewards      []int64 `envconfig:"-"`
	FreeSlotSmallRewards    []int64 `envconfig:"-"`

	// --- Чек-ин ---
	// Базовая награда в монетах; от длины стрика НЕ зависит
	CheckInBaseReward int64 `envconfig:"ECONOMY_CHECKIN_BASE_REWARD" default:"1"`
	// Бонусные слоты за точные длины стрика и за любой стрик длиннее 7
	StreakSlots3    int `envconfig:"ECONOMY_STREAK_SLOTS_3" default:"1"`
	StreakSlots5    int `envconfig:"ECONOMY_STREAK_SLOTS_5" default:"2"`
	StreakSlots7    int `envconfig:"ECONOMY_STREAK_SLOTS_7" default:"3"`
	StreakSlotsLong int `envconfig:"ECONOMY_STREAK_SLOTS_LONG" default:"5"`

	// --- Рефералы ---
	ReferralNewUserCoins  int64 `envconfig:"ECONOMY_REFERRAL_NEW_USER_COINS" default:"10"`
	ReferralReferrerCoins int64 `envconfig:"ECONOMY_REFERRAL_REFERRER_COINS" default:"5"`
	ReferralReferrerSlots int   `envconfig:"ECONOMY_REFERRAL_REFERRER_SLOTS" default:"1"`

	// --- Чтение журнала ---
	LedgerPageSize int `envconfig:"LEDGER_PAGE_SIZE" default:"50"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс календарных суток.
// Если пояс не загрузился — фиксированный UTC+3, как делает планировщик.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// StreakSlotBonus возвращает количество бонусных слотов за стрик длины n.
// Ключи 3, 5, 7 — точные; любой стрик длиннее 7 получает StreakSlotsLong;
// остальные длины — ноль.
func (c *Config) StreakSlotBonus(n int) int {
	switch {
	case n == 3:
		return c.StreakSlots3
	case n == 5:
		return c.StreakSlots5
	case n == 7:
		return c.StreakSlots7
	case n > 7:
		return c.StreakSlotsLong
	default:
		return 0
	}
}

// Validate проверяет конфигурацию и падает быстро при некорректных значениях.
// Движок не должен стартовать с отрицательными наградами или
// вероятностями вне [0,1].
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL должен быть > 0")
	}
	if c.SpinCost <= 0 {
		return fmt.Errorf("ECONOMY_SPIN_COST должен быть > 0")
	}
	if c.SpinCoinChance < 0 || c.SpinCoinChance > 1 {
		return fmt.Errorf("ECONOMY_SPIN_COIN_CHANCE вне [0,1]")
	}
	if c.SpinGemChance < 0 || c.SpinGemChance > 1 {
		return fmt.Errorf("ECONOMY_SPIN_GEM_CHANCE вне [0,1]")
	}
	if c.SpinCoinChance+c.SpinGemChance > 1 {
		return fmt.Errorf("сумма полос вероятностей спина больше 1")
	}
	if c.FreeSlotBigChance < 0 || c.FreeSlotBigChance > 1 {
		return fmt.Errorf("ECONOMY_FREESLOT_BIG_CHANCE вне [0,1]")
	}
	if c.CheckInBaseReward < 0 {
		return fmt.Errorf("ECONOMY_CHECKIN_BASE_REWARD не может быть отрицательным")
	}
	if c.StreakSlots3 < 0 || c.StreakSlots5 < 0 || c.StreakSlots7 < 0 || c.StreakSlotsLong < 0 {
		return fmt.Errorf("бонусные слоты за стрик не могут быть отрицательными")
	}
	if c.ReferralNewUserCoins < 0 || c.ReferralReferrerCoins < 0 || c.ReferralReferrerSlots < 0 {
		return fmt.Errorf("реферальные бонусы не могут быть отрицательными")
	}
	if c.LedgerPageSize <= 0 {
		return fmt.Errorf("LEDGER_PAGE_SIZE должен быть > 0")
	}
	for _, set := range []struct {
		name    string
		rewards []int64
	}{
		{"ECONOMY_SPIN_COIN_REWARDS", c.SpinCoinRewards},
		{"ECONOMY_FREESLOT_BIG_REWARDS", c.FreeSlotBigRewards},
		{"ECONOMY_FREESLOT_SMALL_REWARDS", c.FreeSlotSmallRewards},
	} {
		if len(set.rewards) == 0 {
			return fmt.Errorf("%s: список номиналов пуст", set.name)
		}
		for _, v := range set.rewards {
			if v <= 0 {
				return fmt.Errorf("%s: номинал %d должен быть > 0", set.name, v)
			}
		}
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	var err error
	if cfg.SpinCoinRewards, err = parseInt64CSV(cfg.SpinCoinRewardsRaw); err != nil {
		return nil, fmt.Errorf("ECONOMY_SPIN_COIN_REWARDS parse: %w", err)
	}
	if cfg.FreeSlotBigRewards, err = parseInt64CSV(cfg.FreeSlotBigRewardsRaw); err != nil {
		return nil, fmt.Errorf("ECONOMY_FREESLOT_BIG_REWARDS parse: %w", err)
	}
	if cfg.FreeSlotSmallRewards, err = parseInt64CSV(cfg.FreeSlotSmallRewardsRaw); err != nil {
		return nil, fmt.Errorf("ECONOMY_FREESLOT_SMALL_REWARDS parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
