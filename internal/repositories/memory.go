package repositories

import (
	"context" // Context for interface parity
	"sync"    // Mutex guarding the maps

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/domain" // Domain models
)

// MemoryWalletRepository is an in-process WalletRepository with the same
// optimistic-concurrency contract as the GORM implementation. It backs the
// ledger service tests, where concurrent interleavings must run without a
// database.
type MemoryWalletRepository struct {
	mu           sync.Mutex                    // Guards every map below
	byUser       map[int64]*domain.Wallet      // Stored wallets keyed by user
	byID         map[uint]*domain.Wallet       // Same wallets keyed by primary key
	entries      map[uint][]domain.LedgerEntry // Append-only log per wallet
	nextWalletID uint                          // Primary key counter
	nextEntryID  uint                          // Entry key counter
}

// NewMemoryWalletRepository returns an empty in-memory store
func NewMemoryWalletRepository() *MemoryWalletRepository {
	return &MemoryWalletRepository{
		byUser:  make(map[int64]*domain.Wallet),
		byID:    make(map[uint]*domain.Wallet),
		entries: make(map[uint][]domain.LedgerEntry),
	}
}

// GetOrCreate returns the stored wallet for userID, creating one under the lock
// so concurrent first accesses still produce exactly one row
func (m *MemoryWalletRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.byUser[userID]; ok {
		return cloneWallet(stored), nil
	}
	wallet := domain.NewWallet(userID)
	m.nextWalletID++
	wallet.ID = m.nextWalletID
	m.byUser[userID] = wallet
	m.byID[wallet.ID] = wallet
	return cloneWallet(wallet), nil
}

// Find returns a copy of the stored wallet or ErrWalletNotFound
func (m *MemoryWalletRepository) Find(ctx context.Context, userID int64) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byUser[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return cloneWallet(stored), nil
}

// Save applies the wallet when its version still matches the stored row
func (m *MemoryWalletRepository) Save(ctx context.Context, wallet *domain.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(wallet)
}

// saveLocked assumes m.mu is held
func (m *MemoryWalletRepository) saveLocked(wallet *domain.Wallet) error {
	stored, ok := m.byID[wallet.ID]
	if !ok {
		return ErrWalletNotFound
	}
	if stored.Version != wallet.Version {
		return ErrStaleWrite // Another writer committed since the read
	}
	wallet.Version++
	updated := cloneWallet(wallet)
	m.byUser[updated.UserID] = updated
	m.byID[updated.ID] = updated
	return nil
}

// AppendEntry records one audit row
func (m *MemoryWalletRepository) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendEntryLocked(entry)
	return nil
}

// appendEntryLocked assumes m.mu is held
func (m *MemoryWalletRepository) appendEntryLocked(entry *domain.LedgerEntry) {
	m.nextEntryID++
	entry.ID = m.nextEntryID
	m.entries[entry.WalletID] = append(m.entries[entry.WalletID], *entry)
}

// Entries returns up to limit audit rows for a wallet, most recent first
func (m *MemoryWalletRepository) Entries(ctx context.Context, walletID uint, limit int) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit < 0 {
		limit = 0
	}
	log := m.entries[walletID]
	result := make([]domain.LedgerEntry, 0, limit)
	for i := len(log) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, log[i])
	}
	return result, nil
}

// InTransaction holds the store lock for the whole callback and stages writes,
// applying them only when fn succeeds. A failed callback leaves no trace, which
// matches the all-or-nothing commit of the database implementation.
func (m *MemoryWalletRepository) InTransaction(ctx context.Context, fn func(tx WalletRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{store: m}
	if err := fn(tx); err != nil {
		return err // Discard everything tx staged
	}
	tx.commit()
	return nil
}

// memoryTx stages writes against a locked MemoryWalletRepository
type memoryTx struct {
	store   *MemoryWalletRepository
	saved   []stagedSave
	appends []*domain.LedgerEntry
}

// stagedSave remembers the caller's wallet pointer so its version can be bumped
// on commit, mirroring what the GORM Save does to the live struct
type stagedSave struct {
	wallet   *domain.Wallet
	snapshot *domain.Wallet
}

func (t *memoryTx) GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	if stored, ok := t.store.byUser[userID]; ok {
		return cloneWallet(stored), nil
	}
	wallet := domain.NewWallet(userID)
	t.store.nextWalletID++
	wallet.ID = t.store.nextWalletID
	t.store.byUser[userID] = wallet
	t.store.byID[wallet.ID] = wallet
	return cloneWallet(wallet), nil
}

func (t *memoryTx) Find(ctx context.Context, userID int64) (*domain.Wallet, error) {
	stored, ok := t.store.byUser[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return cloneWallet(stored), nil
}

func (t *memoryTx) Save(ctx context.Context, wallet *domain.Wallet) error {
	stored, ok := t.store.byID[wallet.ID]
	if !ok {
		return ErrWalletNotFound
	}
	if stored.Version != wallet.Version {
		return ErrStaleWrite
	}
	snapshot := cloneWallet(wallet)
	snapshot.Version++
	t.saved = append(t.saved, stagedSave{wallet: wallet, snapshot: snapshot})
	return nil
}

func (t *memoryTx) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	t.appends = append(t.appends, entry)
	return nil
}

func (t *memoryTx) Entries(ctx context.Context, walletID uint, limit int) ([]domain.LedgerEntry, error) {
	if limit < 0 {
		limit = 0
	}
	log := t.store.entries[walletID]
	result := make([]domain.LedgerEntry, 0, limit)
	for i := len(log) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, log[i])
	}
	return result, nil
}

// Nested transactions reuse the already-locked staging view
func (t *memoryTx) InTransaction(ctx context.Context, fn func(tx WalletRepository) error) error {
	return fn(t)
}

// commit applies staged writes; the store lock is still held by InTransaction
func (t *memoryTx) commit() {
	for _, s := range t.saved {
		t.store.byUser[s.snapshot.UserID] = s.snapshot
		t.store.byID[s.snapshot.ID] = s.snapshot
		s.wallet.Version = s.snapshot.Version
	}
	for _, entry := range t.appends {
		t.store.appendEntryLocked(entry)
	}
}

// cloneWallet copies a wallet so callers never share the stored struct
func cloneWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	return &c
}
