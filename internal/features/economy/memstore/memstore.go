// Package memstore — хранилище в памяти, реализующее контракт координатора
// транзакций. Используется тестами движка: полный откат при ошибке,
// сериализация конкурирующих областей, проверка неотрицательности балансов
// как у CHECK-ограничений настоящей схемы.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"miniapp-economy/internal/common"
	"miniapp-economy/internal/features/accounts"
	"miniapp-economy/internal/features/economy"
	"miniapp-economy/internal/features/ledger"
)

// Store — хранилище аккаунтов и журнала в памяти.
// Глобальный мьютекс даёт изоляцию строже снапшотной: области
// выполняются строго по очереди.
type Store struct {
	mu          sync.Mutex
	accounts    map[int64]*accounts.Account
	entries     []*ledger.Entry
	nextAccount int64
	nextEntry   int64
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{accounts: make(map[int64]*accounts.Account)}
}

// RunAtomic выполняет fn под мьютексом; при ошибке состояние
// восстанавливается из снимка — частичных записей не остаётся.
func (s *Store) RunAtomic(ctx context.Context, fn func(st economy.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backupAccounts := make(map[int64]*accounts.Account, len(s.accounts))
	for id, a := range s.accounts {
		backupAccounts[id] = cloneAccount(a)
	}
	backupEntries := make([]*ledger.Entry, len(s.entries))
	copy(backupEntries, s.entries)
	backupNextAccount, backupNextEntry := s.nextAccount, s.nextEntry

	tx := &txStores{s: s}
	if err := fn(economy.Stores{Accounts: tx, Ledger: tx}); err != nil {
		s.accounts = backupAccounts
		s.entries = backupEntries
		s.nextAccount, s.nextEntry = backupNextAccount, backupNextEntry
		return err
	}
	return nil
}

// Seed кладёт аккаунт в хранилище напрямую (подготовка теста).
func (s *Store) Seed(a *accounts.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAccount++
	c := cloneAccount(a)
	c.ID = s.nextAccount
	s.accounts[c.UserID] = c
}

// Account возвращает копию аккаунта или nil.
func (s *Store) Account(userID int64) *accounts.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil
	}
	return cloneAccount(a)
}

// EntriesFor возвращает записи журнала аккаунта в порядке добавления.
func (s *Store) EntriesFor(userID int64) []*ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ledger.Entry
	for _, e := range s.entries {
		if e.UserID == userID {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}

// txStores реализует интерфейсы хранилищ внутри области.
type txStores struct {
	s *Store
}

func cloneAccount(a *accounts.Account) *accounts.Account {
	c := *a
	if a.LastCheckIn != nil {
		t := *a.LastCheckIn
		c.LastCheckIn = &t
	}
	if a.ReferrerID != nil {
		id := *a.ReferrerID
		c.ReferrerID = &id
	}
	return &c
}

func (t *txStores) Get(ctx context.Context, userID int64) (*accounts.Account, error) {
	a, ok := t.s.accounts[userID]
	if !ok {
		return nil, common.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (t *txStores) GetForUpdate(ctx context.Context, userID int64) (*accounts.Account, error) {
	return t.Get(ctx, userID)
}

func (t *txStores) Create(ctx context.Context, a *accounts.Account) error {
	if _, ok := t.s.accounts[a.UserID]; ok {
		return fmt.Errorf("аккаунт %d уже существует", a.UserID)
	}
	t.s.nextAccount++
	a.ID = t.s.nextAccount
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	t.s.accounts[a.UserID] = cloneAccount(a)
	return nil
}

func (t *txStores) Update(ctx context.Context, a *accounts.Account) error {
	if _, ok := t.s.accounts[a.UserID]; !ok {
		return common.ErrAccountNotFound
	}
	// Аналог CHECK-ограничений схемы
	if a.CoinBalance.IsNegative() || a.GemBalance.IsNegative() || a.BonusSlots < 0 {
		return fmt.Errorf("нарушено ограничение неотрицательности для %d", a.UserID)
	}
	a.UpdatedAt = time.Now()
	t.s.accounts[a.UserID] = cloneAccount(a)
	return nil
}

func (t *txStores) SetAdmin(ctx context.Context, userID int64) error {
	a, ok := t.s.accounts[userID]
	if !ok {
		return common.ErrAccountNotFound
	}
	a.IsAdmin = true
	return nil
}

func (t *txStores) Delete(ctx context.Context, userID int64) error {
	if _, ok := t.s.accounts[userID]; !ok {
		return common.ErrAccountNotFound
	}
	delete(t.s.accounts, userID)
	return nil
}

func (t *txStores) List(ctx context.Context, offset, limit int) ([]*accounts.Account, error) {
	all := make([]*accounts.Account, 0, len(t.s.accounts))
	for _, a := range t.s.accounts {
		all = append(all, a)
	}
	// Порядок создания, как ORDER BY id
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].ID < all[i].ID {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*accounts.Account, 0, end-offset)
	for _, a := range all[offset:end] {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (t *txStores) Count(ctx context.Context) (int64, error) {
	return int64(len(t.s.accounts)), nil
}

func (t *txStores) Append(ctx context.Context, entries ...*ledger.Entry) error {
	for _, e := range entries {
		t.s.nextEntry++
		c := *e
		c.ID = t.s.nextEntry
		c.CreatedAt = time.Now()
		e.ID = c.ID
		e.CreatedAt = c.CreatedAt
		t.s.entries = append(t.s.entries, &c)
	}
	return nil
}

func (t *txStores) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*ledger.Entry, error) {
	var mine []*ledger.Entry
	// Новые первыми, как ORDER BY created_at DESC, id DESC
	for i := len(t.s.entries) - 1; i >= 0; i-- {
		if t.s.entries[i].UserID == userID {
			mine = append(mine, t.s.entries[i])
		}
	}
	if offset >= len(mine) {
		return nil, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	out := make([]*ledger.Entry, 0, end-offset)
	for _, e := range mine[offset:end] {
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

func (t *txStores) PurgeByUser(ctx context.Context, userID int64) error {
	kept := t.s.entries[:0]
	for _, e := range t.s.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	t.s.entries = kept
	return nil
}

// NopCache — кэш-заглушка для тестов.
type NopCache struct{}

func (NopCache) Put(ctx context.Context, a *accounts.Account) {}
func (NopCache) Invalidate(ctx context.Context, userID int64) {}

// NopAudit — аудит-заглушка для тестов.
type NopAudit struct{}

func (NopAudit) Log(ctx context.Context, actorID int64, action string, details map[string]any) {}

// Draws — детерминированный источник бросков для тестов:
// выдаёт значения по кругу, потокобезопасен.
type Draws struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

// NewDraws создаёт источник с фиксированной последовательностью.
func NewDraws(vals ...float64) *Draws {
	return &Draws{vals: vals}
}

// Draw возвращает следующий бросок.
func (d *Draws) Draw() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.vals[d.i%len(d.vals)]
	d.i++
	return v
}
