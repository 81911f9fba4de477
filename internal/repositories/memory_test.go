package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetOrCreateIsIdempotent(t *testing.T) {
	repo := NewMemoryWalletRepository()
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Balance.IsZero())
	assert.Equal(t, domain.DefaultCurrency, second.Currency)
}

func TestMemorySaveDetectsStaleWrite(t *testing.T) {
	repo := NewMemoryWalletRepository()
	ctx := context.Background()

	wallet, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	// Two readers hold the same version
	stale, err := repo.Find(ctx, 1)
	require.NoError(t, err)

	wallet.SetBalance(decimal.RequireFromString("10.00"))
	require.NoError(t, repo.Save(ctx, wallet))

	// The second writer must be rejected, not silently overwrite
	stale.SetBalance(decimal.RequireFromString("99.00"))
	assert.ErrorIs(t, repo.Save(ctx, stale), ErrStaleWrite)

	current, err := repo.Find(ctx, 1)
	require.NoError(t, err)
	assert.True(t, current.Balance.Equal(decimal.RequireFromString("10.00")))
}

func TestMemoryFindUnknownUser(t *testing.T) {
	repo := NewMemoryWalletRepository()

	_, err := repo.Find(context.Background(), 999)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestMemoryTransactionRollsBackOnError(t *testing.T) {
	repo := NewMemoryWalletRepository()
	ctx := context.Background()

	wallet, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.InTransaction(ctx, func(tx WalletRepository) error {
		wallet.SetBalance(decimal.RequireFromString("50.00"))
		if err := tx.Save(ctx, wallet); err != nil {
			return err
		}
		entry := domain.NewLedgerEntry(wallet.ID, domain.EntryTypeCredit,
			decimal.RequireFromString("50.00"), decimal.Zero, decimal.RequireFromString("50.00"),
			domain.ReferenceTopup, "", "")
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return err
		}
		return boom // Abort after both writes were staged
	})
	assert.ErrorIs(t, err, boom)

	// Neither the balance nor the entry is visible
	current, err := repo.Find(ctx, 1)
	require.NoError(t, err)
	assert.True(t, current.Balance.IsZero())

	entries, err := repo.Entries(ctx, wallet.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryTransactionCommitsBothWrites(t *testing.T) {
	repo := NewMemoryWalletRepository()
	ctx := context.Background()

	wallet, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	amount := decimal.RequireFromString("25.00")
	err = repo.InTransaction(ctx, func(tx WalletRepository) error {
		wallet.SetBalance(amount)
		if err := tx.Save(ctx, wallet); err != nil {
			return err
		}
		return tx.AppendEntry(ctx, domain.NewLedgerEntry(wallet.ID, domain.EntryTypeCredit,
			amount, decimal.Zero, amount, domain.ReferenceTopup, "ref-1", ""))
	})
	require.NoError(t, err)

	current, err := repo.Find(ctx, 1)
	require.NoError(t, err)
	assert.True(t, current.Balance.Equal(amount))

	entries, err := repo.Entries(ctx, wallet.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ref-1", entries[0].ReferenceID)
	assert.NotZero(t, entries[0].ID)
}

func TestMemoryEntriesMostRecentFirstWithLimit(t *testing.T) {
	repo := NewMemoryWalletRepository()
	ctx := context.Background()

	wallet, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	running := decimal.Zero
	one := decimal.RequireFromString("1.00")
	for i := 0; i < 5; i++ {
		next := running.Add(one)
		require.NoError(t, repo.AppendEntry(ctx, domain.NewLedgerEntry(
			wallet.ID, domain.EntryTypeCredit, one, running, next, domain.ReferenceTopup, "", "")))
		running = next
	}

	entries, err := repo.Entries(ctx, wallet.ID, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first: IDs descend
	assert.Greater(t, entries[0].ID, entries[1].ID)
	assert.Greater(t, entries[1].ID, entries[2].ID)
}
