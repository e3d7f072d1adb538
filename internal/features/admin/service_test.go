package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"miniapp-economy/internal/common"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/economy"
	"miniapp-economy/internal/features/economy/memstore"
	"miniapp-economy/internal/features/ledger"
)

func newTestService(store *memstore.Store) *Service {
	return NewService(store, memstore.NopCache{}, memstore.NopAudit{})
}

func seedAdmin(store *memstore.Store, userID int64) {
	acc := accounts.NewAccount(userID, "admin")
	acc.IsAdmin = true
	store.Seed(acc)
}

func TestListAccounts(t *testing.T) {
	store := memstore.New()
	for i := int64(1); i <= 5; i++ {
		store.Seed(accounts.NewAccount(i, "user"))
	}
	svc := newTestService(store)

	page, err := svc.ListAccounts(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("всего аккаунтов: %d", page.Total)
	}
	if len(page.Accounts) != 2 {
		t.Fatalf("на странице: %d", len(page.Accounts))
	}
	// Страница 2 при лимите 2 — третий и четвёртый по порядку создания
	if page.Accounts[0].UserID != 3 || page.Accounts[1].UserID != 4 {
		t.Fatalf("страница: %d, %d", page.Accounts[0].UserID, page.Accounts[1].UserID)
	}
}

func TestPromoteAccount(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	store.Seed(accounts.NewAccount(100, "user"))
	svc := newTestService(store)

	if err := svc.PromoteAccount(context.Background(), 1, 100); err != nil {
		t.Fatalf("PromoteAccount: %v", err)
	}
	if !store.Account(100).IsAdmin {
		t.Fatal("аккаунт не стал администратором")
	}

	// Запись лежит под ID действующего администратора
	entries := store.EntriesFor(1)
	if len(entries) != 1 {
		t.Fatalf("записей администратора: %d", len(entries))
	}
	e := entries[0]
	if e.Type != ledger.EntryTypeAdminAdjustment || e.RewardType != ledger.RewardTypeAdminPromote {
		t.Fatalf("запись: %+v", e)
	}
	if e.TargetUserID == nil || *e.TargetUserID != 100 {
		t.Fatalf("target: %v", e.TargetUserID)
	}
}

func TestPromoteAccountAlreadyAdmin(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	seedAdmin(store, 100)
	svc := newTestService(store)

	err := svc.PromoteAccount(context.Background(), 1, 100)
	if !errors.Is(err, common.ErrAlreadyAdmin) {
		t.Fatalf("ожидался ErrAlreadyAdmin, получено %v", err)
	}
	if len(store.EntriesFor(1)) != 0 {
		t.Fatal("отклонённое назначение оставило запись")
	}
}

func TestResetAccount(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)

	referrerID := int64(1)
	lastCheckIn := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	target := accounts.NewAccount(100, "user")
	target.CoinBalance = decimal.NewFromInt(500)
	target.GemBalance = decimal.NewFromInt(3)
	target.BonusSlots = 4
	target.LastCheckIn = &lastCheckIn
	target.StreakCount = 6
	target.ReferrerID = &referrerID
	target.ReferralCount = 2
	store.Seed(target)

	svc := newTestService(store)
	// Старые записи целевого аккаунта должны исчезнуть при сбросе
	seedErr := store.RunAtomic(context.Background(), func(st economy.Stores) error {
		return st.Ledger.Append(context.Background(), &ledger.Entry{
			UserID:     100,
			Type:       ledger.EntryTypeFreeSlot,
			RewardType: ledger.RewardTypeCoin,
			Amount:     decimal.NewFromInt(500),
		})
	})
	if seedErr != nil {
		t.Fatalf("подготовка журнала: %v", seedErr)
	}

	if err := svc.ResetAccount(context.Background(), 1, 100); err != nil {
		t.Fatalf("ResetAccount: %v", err)
	}

	acc := store.Account(100)
	if !acc.CoinBalance.IsZero() || !acc.GemBalance.IsZero() || acc.BonusSlots != 0 {
		t.Fatalf("балансы не обнулены: %+v", acc)
	}
	if acc.LastCheckIn != nil || acc.StreakCount != 0 || acc.ReferrerID != nil || acc.ReferralCount != 0 {
		t.Fatalf("поля стрика/реферала не обнулены: %+v", acc)
	}
	if n := len(store.EntriesFor(100)); n != 0 {
		t.Fatalf("журнал целевого аккаунта не очищен: %d записей", n)
	}
	// Сама запись о сбросе пережила чистку: она под ID администратора
	adminEntries := store.EntriesFor(1)
	if len(adminEntries) != 1 || adminEntries[0].RewardType != ledger.RewardTypeUserReset {
		t.Fatalf("записи администратора: %+v", adminEntries)
	}
}

// Сброс собственного аккаунта: запись о сбросе лежит под тем же ID,
// что и вычищаемый журнал, и обязана пережить чистку.
func TestResetAccountSelf(t *testing.T) {
	store := memstore.New()
	admin := accounts.NewAccount(1, "admin")
	admin.IsAdmin = true
	admin.CoinBalance = decimal.NewFromInt(200)
	store.Seed(admin)

	svc := newTestService(store)
	seedErr := store.RunAtomic(context.Background(), func(st economy.Stores) error {
		return st.Ledger.Append(context.Background(), &ledger.Entry{
			UserID:     1,
			Type:       ledger.EntryTypeFreeSlot,
			RewardType: ledger.RewardTypeCoin,
			Amount:     decimal.NewFromInt(200),
		})
	})
	if seedErr != nil {
		t.Fatalf("подготовка журнала: %v", seedErr)
	}

	if err := svc.ResetAccount(context.Background(), 1, 1); err != nil {
		t.Fatalf("ResetAccount: %v", err)
	}

	acc := store.Account(1)
	if !acc.CoinBalance.IsZero() {
		t.Fatalf("баланс не обнулён: %s", acc.CoinBalance)
	}
	entries := store.EntriesFor(1)
	if len(entries) != 1 {
		t.Fatalf("запись о сбросе потеряна: %+v", entries)
	}
	if entries[0].RewardType != ledger.RewardTypeUserReset {
		t.Fatalf("выжила не та запись: %+v", entries[0])
	}
}

func TestCreditCoins(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	target := accounts.NewAccount(100, "user")
	target.CoinBalance = decimal.NewFromInt(30)
	store.Seed(target)

	svc := newTestService(store)
	if err := svc.CreditCoins(context.Background(), 1, 100, decimal.NewFromInt(70)); err != nil {
		t.Fatalf("CreditCoins: %v", err)
	}

	acc := store.Account(100)
	if !acc.CoinBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("баланс после начисления: %s", acc.CoinBalance)
	}

	// Запись под ID целевого аккаунта: сверка журнала с балансом сходится
	entries := store.EntriesFor(100)
	if len(entries) != 1 {
		t.Fatalf("записей: %d", len(entries))
	}
	e := entries[0]
	if e.Type != ledger.EntryTypeAdminAdjustment || e.RewardType != ledger.RewardTypeCoin {
		t.Fatalf("запись: %+v", e)
	}
	if !e.Amount.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("amount = %s", e.Amount)
	}
	if e.TargetUserID == nil || *e.TargetUserID != 1 {
		t.Fatalf("администратор не записан: %v", e.TargetUserID)
	}
}

func TestCreditCoinsRejectsNonPositive(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	store.Seed(accounts.NewAccount(100, "user"))
	svc := newTestService(store)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if err := svc.CreditCoins(context.Background(), 1, 100, amount); !errors.Is(err, common.ErrInvalidAmount) {
			t.Fatalf("ожидался ErrInvalidAmount для %s, получено %v", amount, err)
		}
	}
	if len(store.EntriesFor(100)) != 0 {
		t.Fatal("отклонённое начисление оставило записи")
	}
	if !store.Account(100).CoinBalance.IsZero() {
		t.Fatal("баланс изменился при отклонённом начислении")
	}
}

func TestCreditCoinsMissingTarget(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	svc := newTestService(store)

	if err := svc.CreditCoins(context.Background(), 1, 999, decimal.NewFromInt(10)); !errors.Is(err, common.ErrAccountNotFound) {
		t.Fatalf("ожидался ErrAccountNotFound, получено %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	store.Seed(accounts.NewAccount(100, "user"))
	svc := newTestService(store)

	if err := svc.DeleteAccount(context.Background(), 1, 100); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if store.Account(100) != nil {
		t.Fatal("аккаунт не удалён")
	}
	adminEntries := store.EntriesFor(1)
	if len(adminEntries) != 1 || adminEntries[0].RewardType != ledger.RewardTypeUserDelete {
		t.Fatalf("записи администратора: %+v", adminEntries)
	}
}

func TestDeleteAccountSelf(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	svc := newTestService(store)

	if err := svc.DeleteAccount(context.Background(), 1, 1); !errors.Is(err, common.ErrSelfDelete) {
		t.Fatalf("ожидался ErrSelfDelete, получено %v", err)
	}
	if store.Account(1) == nil {
		t.Fatal("собственный аккаунт удалён")
	}
}

func TestDeleteAccountMissing(t *testing.T) {
	store := memstore.New()
	seedAdmin(store, 1)
	svc := newTestService(store)

	if err := svc.DeleteAccount(context.Background(), 1, 999); !errors.Is(err, common.ErrAccountNotFound) {
		t.Fatalf("ожидался ErrAccountNotFound, получено %v", err)
	}
}
