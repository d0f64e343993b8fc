package credits_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosix/photostudio/pkg/credits"
)

func newTestLedger(t *testing.T, opts ...credits.LedgerOption) (*credits.Ledger, *credits.MemoryStore) {
	t.Helper()
	store := credits.NewMemoryStore()
	ledger, err := credits.NewLedger(context.Background(),
		credits.NewStaticCatalogSource(credits.DefaultCatalog()), store, opts...)
	require.NoError(t, err)
	return ledger, store
}

func createFreeAccount(t *testing.T, store *credits.MemoryStore) uuid.UUID {
	t.Helper()
	catalog := credits.DefaultCatalog()
	account := &credits.Account{
		ID:               uuid.New(),
		Email:            "user@example.com",
		Tier:             credits.TierFree,
		CreditsRemaining: catalog[credits.TierFree],
		CreditsCap:       catalog[credits.TierFree],
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account.ID
}

func TestLedger_Authorize(t *testing.T) {
	t.Parallel()

	t.Run("sufficient balance", func(t *testing.T) {
		t.Parallel()
		ledger, store := newTestLedger(t)
		id := createFreeAccount(t, store)

		ok, err := ledger.Authorize(context.Background(), id, ledger.Cost())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("insufficient balance is false, not an error", func(t *testing.T) {
		t.Parallel()
		ledger, store := newTestLedger(t)
		id := createFreeAccount(t, store)

		ok, err := ledger.Authorize(context.Background(), id, 10_001)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()
		ledger, _ := newTestLedger(t)

		_, err := ledger.Authorize(context.Background(), uuid.New(), 500)
		require.ErrorIs(t, err, credits.ErrAccountNotFound)
	})

	t.Run("non-positive cost", func(t *testing.T) {
		t.Parallel()
		ledger, store := newTestLedger(t)
		id := createFreeAccount(t, store)

		_, err := ledger.Authorize(context.Background(), id, 0)
		require.ErrorIs(t, err, credits.ErrInvalidCost)
	})
}

func TestLedger_Debit_NeverNegative(t *testing.T) {
	t.Parallel()

	ledger, store := newTestLedger(t)
	id := createFreeAccount(t, store) // 10_000 credits, cost 500 => 20 debits fit

	const attempts = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Debit(context.Background(), id, ledger.Cost()); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, succeeded, "exactly the balance worth of debits must win")

	account, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.CreditsRemaining)
	assert.GreaterOrEqual(t, account.CreditsRemaining, int64(0))
	assert.Equal(t, int64(20), account.GenerationCount)
}

func TestLedger_AuthorizeDoesNotReserve(t *testing.T) {
	t.Parallel()

	ledger, store := newTestLedger(t)
	id := createFreeAccount(t, store)

	// Drain the balance to exactly one generation's worth.
	for range 19 {
		_, err := ledger.Debit(context.Background(), id, ledger.Cost())
		require.NoError(t, err)
	}

	ok, err := ledger.Authorize(context.Background(), id, ledger.Cost())
	require.NoError(t, err)
	require.True(t, ok)

	// A competing debit lands between authorize and debit.
	_, err = ledger.Debit(context.Background(), id, ledger.Cost())
	require.NoError(t, err)

	_, err = ledger.Debit(context.Background(), id, ledger.Cost())
	require.ErrorIs(t, err, credits.ErrInsufficientCredits)

	account, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.CreditsRemaining)
}

func TestLedger_FreeTierExhaustion(t *testing.T) {
	t.Parallel()

	ledger, store := newTestLedger(t)
	id := createFreeAccount(t, store)

	for i := range 20 {
		ok, err := ledger.Authorize(context.Background(), id, ledger.Cost())
		require.NoError(t, err)
		require.True(t, ok, "generation %d should be authorized", i+1)

		_, err = ledger.Debit(context.Background(), id, ledger.Cost())
		require.NoError(t, err)
	}

	ok, err := ledger.Authorize(context.Background(), id, ledger.Cost())
	require.NoError(t, err)
	assert.False(t, ok, "the twenty-first authorize must be refused")
}

func TestLedger_Grant(t *testing.T) {
	t.Parallel()

	t.Run("overwrites balance and cap", func(t *testing.T) {
		t.Parallel()
		ledger, store := newTestLedger(t)
		id := createFreeAccount(t, store)

		_, err := ledger.Debit(context.Background(), id, 500)
		require.NoError(t, err)

		require.NoError(t, ledger.Grant(context.Background(), id, credits.TierCreator))

		account, err := store.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, credits.TierCreator, account.Tier)
		assert.True(t, account.Subscribed)
		assert.Equal(t, int64(300_000), account.CreditsRemaining)
		assert.Equal(t, int64(300_000), account.CreditsCap)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		ledger, store := newTestLedger(t)
		id := createFreeAccount(t, store)

		require.NoError(t, ledger.Grant(context.Background(), id, credits.TierStarter))
		first, err := store.GetAccount(context.Background(), id)
		require.NoError(t, err)

		require.NoError(t, ledger.Grant(context.Background(), id, credits.TierStarter))
		second, err := store.GetAccount(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, first.Tier, second.Tier)
		assert.Equal(t, first.Subscribed, second.Subscribed)
		assert.Equal(t, first.CreditsRemaining, second.CreditsRemaining)
		assert.Equal(t, first.CreditsCap, second.CreditsCap)
	})

	t.Run("grant to free clears subscription flag", func(t *testing.T) {
		t.Parallel()
		ledger, store := newTestLedger(t)
		id := createFreeAccount(t, store)

		require.NoError(t, ledger.Grant(context.Background(), id, credits.TierEnterprise))
		require.NoError(t, ledger.Grant(context.Background(), id, credits.TierFree))

		account, err := store.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, credits.TierFree, account.Tier)
		assert.False(t, account.Subscribed)
		assert.Equal(t, int64(10_000), account.CreditsRemaining)
	})

	t.Run("unknown tier", func(t *testing.T) {
		t.Parallel()
		ledger, store := newTestLedger(t)
		id := createFreeAccount(t, store)

		err := ledger.Grant(context.Background(), id, credits.Tier("platinum"))
		require.ErrorIs(t, err, credits.ErrUnknownTier)
	})
}

func TestLedger_GrantDoesNotClampOnCapRaise(t *testing.T) {
	t.Parallel()

	// A raised cap must never clamp an existing balance: grant overwrites
	// both fields together, and later debits only ever lower the balance.
	ledger, store := newTestLedger(t)
	id := createFreeAccount(t, store)

	require.NoError(t, ledger.Grant(context.Background(), id, credits.TierEnterprise))
	require.NoError(t, store.SetEntitlement(context.Background(), id, credits.Entitlement{
		Tier:             credits.TierEnterprise,
		Subscribed:       true,
		CreditsRemaining: 800_000,
		CreditsCap:       900_000, // cap raised without touching the balance
	}))

	account, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(800_000), account.CreditsRemaining)
	assert.Equal(t, int64(900_000), account.CreditsCap)
}

func TestLedger_Renew(t *testing.T) {
	t.Parallel()

	ledger, store := newTestLedger(t)
	id := createFreeAccount(t, store)

	require.NoError(t, ledger.Grant(context.Background(), id, credits.TierStarter))
	for range 3 {
		_, err := ledger.Debit(context.Background(), id, ledger.Cost())
		require.NoError(t, err)
	}

	before := time.Now().UTC()
	require.NoError(t, ledger.Renew(context.Background(), id))

	account, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, credits.TierStarter, account.Tier)
	assert.True(t, account.Subscribed)
	assert.Equal(t, int64(120_000), account.CreditsRemaining)
	require.NotNil(t, account.CreditsResetAt)
	assert.False(t, account.CreditsResetAt.Before(before.Truncate(time.Second)))
}

func TestLedger_CustomCost(t *testing.T) {
	t.Parallel()

	ledger, store := newTestLedger(t, credits.WithGenerationCost(1000))
	id := createFreeAccount(t, store)

	assert.Equal(t, int64(1000), ledger.Cost())

	res, err := ledger.Debit(context.Background(), id, ledger.Cost())
	require.NoError(t, err)
	assert.Equal(t, int64(9000), res.Remaining)
	assert.Equal(t, int64(1), res.GenerationCount)
}
