// Package economy — resolver.go разрешает исход спина из случайного броска.
//
// Резольвер чистый и детерминированный: один бросок r из [0,1) на операцию,
// никаких повторных бросков по исходу — иначе фарм наград перебрасыванием.
// Выбор номинала внутри полосы вероятности получается перемасштабированием
// того же r на [0,1), как это делает оригинальная таблица выплат.
package economy

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"miniapp-economy/internal/config"
	"miniapp-economy/internal/features/ledger"
)

// DrawSource выдаёт равномерные броски из [0,1).
// Скрытая зависимость от генератора вынесена в интерфейс:
// тесты подставляют фиксированные броски и проверяют точные исходы.
type DrawSource interface {
	Draw() float64
}

type randDraw struct{}

func (randDraw) Draw() float64 { return rand.Float64() }

// NewDrawSource возвращает боевой источник бросков на math/rand/v2.
// Глобальный генератор v2 потокобезопасен.
func NewDrawSource() DrawSource { return randDraw{} }

// SpinOutcome — исход платного спина: валюта и знаковая сумма награды.
// Для исхода «без выигрыша» RewardType = none и Amount = 0 —
// запись в журнале появляется всё равно.
type SpinOutcome struct {
	RewardType ledger.RewardType
	Amount     decimal.Decimal
}

// ResolveFreeSlot разрешает бесплатный слот.
//   - r < FreeSlotBigChance → крупный номинал
//   - иначе                 → мелкий номинал
//
// Исход всегда строго положительный: «пустого» результата у бесплатного
// слота нет.
func ResolveFreeSlot(cfg *config.Config, r float64) decimal.Decimal {
	var reward int64
	if r < cfg.FreeSlotBigChance {
		reward = pickDenomination(r, 0, cfg.FreeSlotBigChance, cfg.FreeSlotBigRewards)
	} else {
		reward = pickDenomination(r, cfg.FreeSlotBigChance, 1, cfg.FreeSlotSmallRewards)
	}
	return decimal.NewFromInt(reward)
}

// ResolvePaidSpin разрешает платный спин по кумулятивным полосам:
//   - r < SpinCoinChance                 → монетный выигрыш
//   - r < SpinCoinChance + SpinGemChance → ровно 1 кристалл
//   - иначе                              → без выигрыша
func ResolvePaidSpin(cfg *config.Config, r float64) SpinOutcome {
	coinEnd := cfg.SpinCoinChance
	gemEnd := cfg.SpinCoinChance + cfg.SpinGemChance

	switch {
	case r < coinEnd:
		reward := pickDenomination(r, 0, coinEnd, cfg.SpinCoinRewards)
		return SpinOutcome{RewardType: ledger.RewardTypeCoin, Amount: decimal.NewFromInt(reward)}
	case r < gemEnd:
		return SpinOutcome{RewardType: ledger.RewardTypeGem, Amount: decimal.NewFromInt(1)}
	default:
		return SpinOutcome{RewardType: ledger.RewardTypeNone, Amount: decimal.Zero}
	}
}

// pickDenomination равновероятно выбирает номинал внутри полосы [lo, hi),
// перемасштабируя бросок r на [0,1). Полоса непустая: конфиг валидируется
// при старте.
func pickDenomination(r, lo, hi float64, denoms []int64) int64 {
	u := (r - lo) / (hi - lo)
	idx := int(u * float64(len(denoms)))
	// Защита края: u теоретически может дать ровно len из-за округления
	if idx >= len(denoms) {
		idx = len(denoms) - 1
	}
	return denoms[idx]
}
