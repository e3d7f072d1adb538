package economy_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"miniapp-economy/internal/common"
	"miniapp-economy/internal/config"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/economy"
	"miniapp-economy/internal/features/economy/memstore"
	"miniapp-economy/internal/features/ledger"
)

func testConfig() *config.Config {
	return &config.Config{
		AppTimezone:           "UTC",
		SpinCost:              10,
		SpinCoinChance:        0.30,
		SpinGemChance:         0.20,
		SpinCoinRewards:       []int64{50, 102, 203},
		FreeSlotBigChance:     0.05,
		FreeSlotBigRewards:    []int64{10, 15, 20},
		FreeSlotSmallRewards:  []int64{1, 2, 3},
		CheckInBaseReward:     1,
		StreakSlots3:          1,
		StreakSlots5:          2,
		StreakSlots7:          3,
		StreakSlotsLong:       5,
		ReferralNewUserCoins:  10,
		ReferralReferrerCoins: 5,
		ReferralReferrerSlots: 1,
		LedgerPageSize:        50,
	}
}

func newTestService(store *memstore.Store, draws economy.DrawSource) *economy.Service {
	return economy.NewService(store, memstore.NopCache{}, memstore.NopAudit{}, draws, testConfig())
}

func seedAccount(store *memstore.Store, userID int64, coins int64, slots int) {
	acc := accounts.NewAccount(userID, "user")
	acc.CoinBalance = decimal.NewFromInt(coins)
	acc.BonusSlots = slots
	store.Seed(acc)
}

// Сверка журнала: сумма знаковых amount по валюте равна текущему балансу.
// Должна сходиться после любой последовательности операций, потому что
// аккаунты создаются с нулевыми балансами.
func assertLedgerMatchesBalance(t *testing.T, store *memstore.Store, userID int64) {
	t.Helper()
	acc := store.Account(userID)
	if acc == nil {
		t.Fatalf("аккаунт %d не найден при сверке", userID)
	}
	coins, gems := decimal.Zero, decimal.Zero
	for _, e := range store.EntriesFor(userID) {
		switch e.RewardType {
		case ledger.RewardTypeCoin, ledger.RewardTypeCoinAndSlot:
			coins = coins.Add(e.Amount)
		case ledger.RewardTypeGem:
			gems = gems.Add(e.Amount)
		}
	}
	if !coins.Equal(acc.CoinBalance) {
		t.Fatalf("монеты разошлись для %d: журнал %s, баланс %s", userID, coins, acc.CoinBalance)
	}
	if !gems.Equal(acc.GemBalance) {
		t.Fatalf("кристаллы разошлись для %d: журнал %s, баланс %s", userID, gems, acc.GemBalance)
	}
}

func TestAuthenticateCreatesAccount(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, memstore.NewDraws(0.5))

	res, err := svc.Authenticate(context.Background(), 100, "alice", nil)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !res.IsNew {
		t.Fatal("ожидался новый аккаунт")
	}
	acc := store.Account(100)
	if acc == nil {
		t.Fatal("аккаунт не сохранён")
	}
	if !acc.CoinBalance.IsZero() || !acc.GemBalance.IsZero() || acc.BonusSlots != 0 {
		t.Fatalf("новый аккаунт должен стартовать с нуля: %+v", acc)
	}
	if acc.Username != "alice" {
		t.Fatalf("username = %q", acc.Username)
	}
	if len(store.EntriesFor(100)) != 0 {
		t.Fatal("регистрация без реферера не должна писать в журнал")
	}
}

func TestAuthenticateRefreshesUsername(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.5))

	res, err := svc.Authenticate(context.Background(), 100, "new-name", nil)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.IsNew {
		t.Fatal("аккаунт уже существовал")
	}
	if got := store.Account(100).Username; got != "new-name" {
		t.Fatalf("username не обновился: %q", got)
	}
}

func TestAuthenticateRegistrationWithReferral(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 200, 0, 0) // реферер
	svc := newTestService(store, memstore.NewDraws(0.5))

	referrerID := int64(200)
	res, err := svc.Authenticate(context.Background(), 100, "alice", &referrerID)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !res.IsNew || !res.ReferralApplied {
		t.Fatalf("ожидались IsNew и ReferralApplied: %+v", res)
	}

	referred := store.Account(100)
	if !referred.CoinBalance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("бонус приглашённому: %s", referred.CoinBalance)
	}
	if referred.ReferrerID == nil || *referred.ReferrerID != 200 {
		t.Fatalf("реферер не записан: %v", referred.ReferrerID)
	}

	referrer := store.Account(200)
	if !referrer.CoinBalance.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("монетный бонус рефереру: %s", referrer.CoinBalance)
	}
	if referrer.BonusSlots != 1 || referrer.ReferralCount != 1 {
		t.Fatalf("слоты/счётчик рефереру: %+v", referrer)
	}

	// Три записи: приглашённому, рефереру монеты, рефереру слот
	if n := len(store.EntriesFor(100)); n != 1 {
		t.Fatalf("записей приглашённого: %d", n)
	}
	if n := len(store.EntriesFor(200)); n != 2 {
		t.Fatalf("записей реферера: %d", n)
	}
	assertLedgerMatchesBalance(t, store, 100)
	assertLedgerMatchesBalance(t, store, 200)
}

// Несуществующий реферер регистрацию не ломает: аккаунт создаётся,
// бонус просто не начисляется.
func TestAuthenticateRegistrationBadReferrerTolerated(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, memstore.NewDraws(0.5))

	referrerID := int64(999)
	res, err := svc.Authenticate(context.Background(), 100, "alice", &referrerID)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !res.IsNew || res.ReferralApplied {
		t.Fatalf("ожидался новый аккаунт без реферального бонуса: %+v", res)
	}
	if store.Account(100) == nil {
		t.Fatal("аккаунт не создан")
	}
	if len(store.EntriesFor(100)) != 0 {
		t.Fatal("журнал должен остаться пустым")
	}
}

func TestFreeSlotSpin(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.5)) // мелкая полоса → 2

	res, err := svc.FreeSlotSpin(context.Background(), 100)
	if err != nil {
		t.Fatalf("FreeSlotSpin: %v", err)
	}
	if !res.Reward.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("награда = %s, ожидалось 2", res.Reward)
	}

	entries := store.EntriesFor(100)
	if len(entries) != 1 {
		t.Fatalf("записей: %d, ожидалась ровно одна", len(entries))
	}
	e := entries[0]
	if e.Type != ledger.EntryTypeFreeSlot || e.RewardType != ledger.RewardTypeCoin {
		t.Fatalf("запись: %+v", e)
	}
	if !e.Amount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("amount = %s", e.Amount)
	}
	assertLedgerMatchesBalance(t, store, 100)
}

func TestFreeSlotSpinBigReward(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.0)) // крупная полоса → 10

	res, err := svc.FreeSlotSpin(context.Background(), 100)
	if err != nil {
		t.Fatalf("FreeSlotSpin: %v", err)
	}
	if !res.Reward.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("награда = %s, ожидалось 10", res.Reward)
	}
}

func TestFreeSlotSpinUnknownAccount(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, memstore.NewDraws(0.5))

	if _, err := svc.FreeSlotSpin(context.Background(), 999); !errors.Is(err, common.ErrAccountNotFound) {
		t.Fatalf("ожидался ErrAccountNotFound, получено %v", err)
	}
}

func TestPaidSpinCoinCost(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 100, 0)
	svc := newTestService(store, memstore.NewDraws(0.0)) // монетная полоса → 50

	res, err := svc.PaidSpin(context.Background(), 100)
	if err != nil {
		t.Fatalf("PaidSpin: %v", err)
	}
	if res.CostType != ledger.RewardTypeCoin || !res.Cost.Equal(decimal.NewFromInt(-10)) {
		t.Fatalf("списание: %s %s", res.CostType, res.Cost)
	}
	if res.RewardType != ledger.RewardTypeCoin || !res.Reward.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("награда: %s %s", res.RewardType, res.Reward)
	}
	if !res.Balance.Coins.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("баланс: %s, ожидалось 140", res.Balance.Coins)
	}

	entries := store.EntriesFor(100)
	if len(entries) != 2 {
		t.Fatalf("записей: %d, ожидались стоимость и награда", len(entries))
	}
	if entries[0].Type != ledger.EntryTypeSpinCost || entries[1].Type != ledger.EntryTypeSpinReward {
		t.Fatalf("порядок записей: %s, %s", entries[0].Type, entries[1].Type)
	}
	assertLedgerMatchesBalance(t, store, 100)
}

// Бонусные слоты тратятся раньше монет; пустой выигрыш всё равно
// оставляет запись награды с нулевой суммой.
func TestPaidSpinBonusSlotCostFirst(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 100, 2)
	svc := newTestService(store, memstore.NewDraws(0.9)) // без выигрыша

	res, err := svc.PaidSpin(context.Background(), 100)
	if err != nil {
		t.Fatalf("PaidSpin: %v", err)
	}
	if res.CostType != ledger.RewardTypeBonusSlot || !res.Cost.Equal(decimal.NewFromInt(-1)) {
		t.Fatalf("списание: %s %s", res.CostType, res.Cost)
	}
	if res.RewardType != ledger.RewardTypeNone || !res.Reward.IsZero() {
		t.Fatalf("награда: %s %s", res.RewardType, res.Reward)
	}

	acc := store.Account(100)
	if acc.BonusSlots != 1 {
		t.Fatalf("слотов осталось %d, ожидался 1", acc.BonusSlots)
	}
	if !acc.CoinBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("монеты не должны были измениться: %s", acc.CoinBalance)
	}
	if n := len(store.EntriesFor(100)); n != 2 {
		t.Fatalf("записей: %d", n)
	}
	assertLedgerMatchesBalance(t, store, 100)
}

func TestPaidSpinGemReward(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 10, 0)
	svc := newTestService(store, memstore.NewDraws(0.35)) // кристальная полоса

	res, err := svc.PaidSpin(context.Background(), 100)
	if err != nil {
		t.Fatalf("PaidSpin: %v", err)
	}
	if res.RewardType != ledger.RewardTypeGem || !res.Reward.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("награда: %s %s", res.RewardType, res.Reward)
	}
	if !res.Balance.Coins.IsZero() || !res.Balance.Gems.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("баланс: %+v", res.Balance)
	}
	assertLedgerMatchesBalance(t, store, 100)
}

// Нулевая ёмкость отклоняется до какой-либо записи: ни журнал,
// ни балансы не меняются.
func TestPaidSpinInsufficient(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 5, 0) // меньше стоимости, слотов нет
	svc := newTestService(store, memstore.NewDraws(0.0))

	_, err := svc.PaidSpin(context.Background(), 100)
	if !errors.Is(err, common.ErrInsufficientFunds) {
		t.Fatalf("ожидался ErrInsufficientFunds, получено %v", err)
	}
	if common.KindOf(err) != common.KindInsufficientResources {
		t.Fatalf("kind = %v", common.KindOf(err))
	}
	if !store.Account(100).CoinBalance.Equal(decimal.NewFromInt(5)) {
		t.Fatal("баланс изменился при отклонённом спине")
	}
	if len(store.EntriesFor(100)) != 0 {
		t.Fatal("отклонённый спин оставил записи в журнале")
	}
}

func TestCheckInFirst(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.5))
	svc.SetNow(func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) })

	res, err := svc.CheckIn(context.Background(), 100)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Streak != 1 || res.BonusSlots != 0 {
		t.Fatalf("стрик %d, слоты %d", res.Streak, res.BonusSlots)
	}
	if !res.Reward.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("награда %s", res.Reward)
	}

	entries := store.EntriesFor(100)
	if len(entries) != 1 {
		t.Fatalf("записей: %d, чек-ин даёт ровно одну", len(entries))
	}
	if entries[0].Type != ledger.EntryTypeCheckIn || entries[0].RewardType != ledger.RewardTypeCoin {
		t.Fatalf("запись: %+v", entries[0])
	}
	assertLedgerMatchesBalance(t, store, 100)
}

func TestCheckInSameDayRejected(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.5))
	svc.SetNow(func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) })

	if _, err := svc.CheckIn(context.Background(), 100); err != nil {
		t.Fatalf("первый CheckIn: %v", err)
	}
	before := store.Account(100)

	// Вторая попытка позже в тот же календарный день
	svc.SetNow(func() time.Time { return time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC) })
	_, err := svc.CheckIn(context.Background(), 100)
	if !errors.Is(err, common.ErrAlreadyCheckedIn) {
		t.Fatalf("ожидался ErrAlreadyCheckedIn, получено %v", err)
	}

	after := store.Account(100)
	if !after.CoinBalance.Equal(before.CoinBalance) || after.StreakCount != before.StreakCount {
		t.Fatal("повторный чек-ин изменил состояние")
	}
	if n := len(store.EntriesFor(100)); n != 1 {
		t.Fatalf("записей: %d, повторный чек-ин не должен писать", n)
	}
}

func TestCheckInStreakGrowsToThree(t *testing.T) {
	store := memstore.New()
	yesterday := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)
	acc := accounts.NewAccount(100, "user")
	acc.LastCheckIn = &yesterday
	acc.StreakCount = 2
	store.Seed(acc)

	svc := newTestService(store, memstore.NewDraws(0.5))
	svc.SetNow(func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) })

	res, err := svc.CheckIn(context.Background(), 100)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Streak != 3 || res.BonusSlots != 1 {
		t.Fatalf("стрик %d, слоты %d, ожидалось 3 и 1", res.Streak, res.BonusSlots)
	}

	entries := store.EntriesFor(100)
	if len(entries) != 1 || entries[0].RewardType != ledger.RewardTypeCoinAndSlot {
		t.Fatalf("ожидалась одна запись coin_and_slot: %+v", entries)
	}
	// Amount — только монетная часть, иначе сверка по монетам не сойдётся
	if !entries[0].Amount.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("amount = %s", entries[0].Amount)
	}
	assertLedgerMatchesBalance(t, store, 100)
}

// Пропуск дня сбрасывает стрик в 1 без бонусных слотов.
func TestCheckInStreakResets(t *testing.T) {
	store := memstore.New()
	threeDaysAgo := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	acc := accounts.NewAccount(100, "user")
	acc.LastCheckIn = &threeDaysAgo
	acc.StreakCount = 6
	store.Seed(acc)

	svc := newTestService(store, memstore.NewDraws(0.5))
	svc.SetNow(func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) })

	res, err := svc.CheckIn(context.Background(), 100)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Streak != 1 || res.BonusSlots != 0 {
		t.Fatalf("стрик %d, слоты %d, ожидался сброс", res.Streak, res.BonusSlots)
	}
}

func TestCheckInLongStreak(t *testing.T) {
	store := memstore.New()
	yesterday := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	acc := accounts.NewAccount(100, "user")
	acc.LastCheckIn = &yesterday
	acc.StreakCount = 9
	store.Seed(acc)

	svc := newTestService(store, memstore.NewDraws(0.5))
	svc.SetNow(func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) })

	res, err := svc.CheckIn(context.Background(), 100)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Streak != 10 || res.BonusSlots != 5 {
		t.Fatalf("стрик %d, слоты %d, ожидалось 10 и 5", res.Streak, res.BonusSlots)
	}
}

func TestReferralCredit(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	seedAccount(store, 200, 50, 0)
	svc := newTestService(store, memstore.NewDraws(0.5))

	res, err := svc.ReferralCredit(context.Background(), 100, 200)
	if err != nil {
		t.Fatalf("ReferralCredit: %v", err)
	}
	if !res.Balance.Coins.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("баланс приглашённого: %s", res.Balance.Coins)
	}

	referrer := store.Account(200)
	if !referrer.CoinBalance.Equal(decimal.NewFromInt(55)) || referrer.BonusSlots != 1 {
		t.Fatalf("реферер: %s монет, %d слотов", referrer.CoinBalance, referrer.BonusSlots)
	}
	if referrer.ReferralCount != 1 {
		t.Fatalf("счётчик рефералов: %d", referrer.ReferralCount)
	}

	assertLedgerMatchesBalance(t, store, 100)
	assertLedgerMatchesBalance(t, store, 200)
}

func TestReferralCreditAlreadySet(t *testing.T) {
	store := memstore.New()
	referrerID := int64(200)
	acc := accounts.NewAccount(100, "user")
	acc.ReferrerID = &referrerID
	store.Seed(acc)
	seedAccount(store, 200, 0, 0)
	seedAccount(store, 300, 0, 0)

	svc := newTestService(store, memstore.NewDraws(0.5))
	_, err := svc.ReferralCredit(context.Background(), 100, 300)
	if !errors.Is(err, common.ErrReferralAlreadySet) {
		t.Fatalf("ожидался ErrReferralAlreadySet, получено %v", err)
	}
	if len(store.EntriesFor(100)) != 0 || len(store.EntriesFor(300)) != 0 {
		t.Fatal("отклонённый реферал оставил записи")
	}
	if got := store.Account(100).ReferrerID; got == nil || *got != 200 {
		t.Fatalf("реферер изменился: %v", got)
	}
}

func TestReferralCreditSelf(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.5))

	if _, err := svc.ReferralCredit(context.Background(), 100, 100); !errors.Is(err, common.ErrSelfReferral) {
		t.Fatalf("ожидался ErrSelfReferral, получено %v", err)
	}
}

func TestReferralCreditMissingReferrer(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.5))

	if _, err := svc.ReferralCredit(context.Background(), 100, 999); !errors.Is(err, common.ErrReferrerNotFound) {
		t.Fatalf("ожидался ErrReferrerNotFound, получено %v", err)
	}
}

// Сквозная сверка: после произвольной последовательности операций сумма
// журнала по каждой валюте равна балансу обоих аккаунтов.
func TestLedgerReconciliation(t *testing.T) {
	store := memstore.New()
	draws := memstore.NewDraws(0.1, 0.4, 0.7, 0.02, 0.95, 0.33)
	svc := newTestService(store, draws)
	svc.SetNow(func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) })

	ctx := context.Background()
	if _, err := svc.Authenticate(ctx, 1, "alice", nil); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	referrerID := int64(1)
	if _, err := svc.Authenticate(ctx, 2, "bob", &referrerID); err != nil {
		t.Fatalf("Authenticate с реферером: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := svc.FreeSlotSpin(ctx, 1); err != nil {
			t.Fatalf("FreeSlotSpin: %v", err)
		}
	}
	if _, err := svc.CheckIn(ctx, 2); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	// Платные спины до исчерпания ёмкости
	for {
		if _, err := svc.PaidSpin(ctx, 2); err != nil {
			if !errors.Is(err, common.ErrInsufficientFunds) {
				t.Fatalf("PaidSpin: %v", err)
			}
			break
		}
	}

	assertLedgerMatchesBalance(t, store, 1)
	assertLedgerMatchesBalance(t, store, 2)
}

// Конкурентные платные спины при ёмкости ровно в один спин: успешен
// ровно один, остальные получают InsufficientResources, баланс не
// уходит в минус.
func TestConcurrentPaidSpins(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 10, 0) // хватает ровно на один спин
	svc := newTestService(store, memstore.NewDraws(0.9)) // без выигрыша

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PaidSpin(context.Background(), 100)
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}
	if ok != 1 || insufficient != n-1 {
		t.Fatalf("успехов %d, отказов %d, ожидалось 1 и %d", ok, insufficient, n-1)
	}

	acc := store.Account(100)
	if !acc.CoinBalance.IsZero() {
		t.Fatalf("баланс после спинов: %s", acc.CoinBalance)
	}
	if n := len(store.EntriesFor(100)); n != 2 {
		t.Fatalf("записей: %d, единственный успешный спин даёт две", n)
	}
	assertLedgerMatchesBalance(t, store, 100)
}

func TestListRewardEntries(t *testing.T) {
	store := memstore.New()
	seedAccount(store, 100, 0, 0)
	svc := newTestService(store, memstore.NewDraws(0.5))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := svc.FreeSlotSpin(ctx, 100); err != nil {
			t.Fatalf("FreeSlotSpin: %v", err)
		}
	}

	page1, err := svc.ListRewardEntries(ctx, 100, 1, 2)
	if err != nil {
		t.Fatalf("ListRewardEntries: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("страница 1: %d записей", len(page1))
	}
	// Новые первыми
	if page1[0].ID <= page1[1].ID {
		t.Fatalf("порядок: %d, %d", page1[0].ID, page1[1].ID)
	}

	page3, err := svc.ListRewardEntries(ctx, 100, 3, 2)
	if err != nil {
		t.Fatalf("ListRewardEntries: %v", err)
	}
	if len(page3) != 1 {
		t.Fatalf("страница 3: %d записей", len(page3))
	}

	page4, err := svc.ListRewardEntries(ctx, 100, 4, 2)
	if err != nil {
		t.Fatalf("ListRewardEntries: %v", err)
	}
	if len(page4) != 0 {
		t.Fatalf("страница 4 должна быть пустой: %d записей", len(page4))
	}

	// Нулевой размер страницы приводится к сконфигурированному
	all, err := svc.ListRewardEntries(ctx, 100, 1, 0)
	if err != nil {
		t.Fatalf("ListRewardEntries: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("дефолтная страница: %d записей", len(all))
	}

	if _, err := svc.ListRewardEntries(ctx, 999, 1, 10); !errors.Is(err, common.ErrAccountNotFound) {
		t.Fatalf("ожидался ErrAccountNotFound, получено %v", err)
	}
}
