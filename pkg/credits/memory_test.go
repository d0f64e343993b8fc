package credits_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosix/photostudio/pkg/credits"
)

func TestMemoryStore_CreateAccount(t *testing.T) {
	t.Parallel()

	store := credits.NewMemoryStore()
	account := &credits.Account{ID: uuid.New(), Email: "Dup@Example.com", Tier: credits.TierFree}
	require.NoError(t, store.CreateAccount(context.Background(), account))

	// Email matching is case-insensitive.
	err := store.CreateAccount(context.Background(),
		&credits.Account{ID: uuid.New(), Email: "dup@example.com", Tier: credits.TierFree})
	require.ErrorIs(t, err, credits.ErrEmailTaken)

	got, err := store.GetAccountByEmail(context.Background(), "DUP@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestMemoryStore_BindCustomerRef(t *testing.T) {
	t.Parallel()

	t.Run("first bind wins, later binds read it back", func(t *testing.T) {
		t.Parallel()
		store := credits.NewMemoryStore()
		id := createFreeAccount(t, store)

		ref, err := store.BindCustomerRef(context.Background(), id, "cus_alpha")
		require.NoError(t, err)
		assert.Equal(t, "cus_alpha", ref)

		ref, err = store.BindCustomerRef(context.Background(), id, "cus_beta")
		require.ErrorIs(t, err, credits.ErrCustomerRefBound)
		assert.Equal(t, "cus_alpha", ref, "loser must adopt the winner's reference")

		account, err := store.GetAccountByCustomerRef(context.Background(), "cus_alpha")
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
	})

	t.Run("concurrent binds have exactly one winner", func(t *testing.T) {
		t.Parallel()
		store := credits.NewMemoryStore()
		id := createFreeAccount(t, store)

		const racers = 16
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
			refs    = make(map[string]struct{})
		)
		for i := range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ref, err := store.BindCustomerRef(context.Background(), id, fmt.Sprintf("cus_%d", i))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					winners++
				}
				refs[ref] = struct{}{}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, winners)
		assert.Len(t, refs, 1, "every racer must observe the same bound reference")
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()
		store := credits.NewMemoryStore()
		_, err := store.BindCustomerRef(context.Background(), uuid.New(), "cus_x")
		require.ErrorIs(t, err, credits.ErrAccountNotFound)
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	store := credits.NewMemoryStore()
	id := createFreeAccount(t, store)

	account, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	account.CreditsRemaining = -999 // mutate the copy

	fresh, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), fresh.CreditsRemaining)
}
