package billing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studiosix/photostudio/pkg/billing"
	"github.com/studiosix/photostudio/pkg/credits"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCustomer(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *mockProvider) RetrieveSession(ctx context.Context, sessionID string) (*billing.SessionDetails, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SessionDetails), args.Error(1)
}

func (m *mockProvider) CreateBillingPortalSession(ctx context.Context, customerRef, returnURL string) (*billing.PortalSession, error) {
	args := m.Called(ctx, customerRef, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PortalSession), args.Error(1)
}

func (m *mockProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*billing.Event, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Event), args.Error(1)
}

func testPrices() billing.PriceTable {
	return billing.PriceTable{
		{Ref: "price_starter_monthly", Tier: credits.TierStarter, Interval: billing.IntervalMonthly},
		{Ref: "price_starter_annual", Tier: credits.TierStarter, Interval: billing.IntervalAnnual},
		{Ref: "price_creator_monthly", Tier: credits.TierCreator, Interval: billing.IntervalMonthly},
		{Ref: "price_creator_annual", Tier: credits.TierCreator, Interval: billing.IntervalAnnual},
		{Ref: "price_enterprise_monthly", Tier: credits.TierEnterprise, Interval: billing.IntervalMonthly},
	}
}

type fixture struct {
	store      *credits.MemoryStore
	ledger     *credits.Ledger
	provider   *mockProvider
	reconciler *billing.Reconciler
}

func newFixture(t *testing.T, opts ...billing.ReconcilerOption) *fixture {
	t.Helper()
	store := credits.NewMemoryStore()
	ledger, err := credits.NewLedger(context.Background(),
		credits.NewStaticCatalogSource(credits.DefaultCatalog()), store)
	require.NoError(t, err)

	provider := &mockProvider{}
	reconciler, err := billing.NewReconciler(store, ledger, provider, testPrices(), opts...)
	require.NoError(t, err)

	return &fixture{store: store, ledger: ledger, provider: provider, reconciler: reconciler}
}

func (f *fixture) createAccount(t *testing.T, email, customerRef string) uuid.UUID {
	t.Helper()
	catalog := credits.DefaultCatalog()
	account := &credits.Account{
		ID:               uuid.New(),
		Email:            email,
		Tier:             credits.TierFree,
		CustomerRef:      customerRef,
		CreditsRemaining: catalog[credits.TierFree],
		CreditsCap:       catalog[credits.TierFree],
	}
	require.NoError(t, f.store.CreateAccount(context.Background(), account))
	return account.ID
}

func TestReconciler_ConfirmCheckout(t *testing.T) {
	t.Parallel()

	t.Run("binds customer and grants purchased tier", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "buyer@example.com", "")

		f.provider.On("RetrieveSession", mock.Anything, "txn_1").Return(&billing.SessionDetails{
			CustomerRef: "cus_1",
			PriceRef:    "price_creator_monthly",
		}, nil)

		require.NoError(t, f.reconciler.ConfirmCheckout(context.Background(), id, "txn_1"))

		account, err := f.store.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "cus_1", account.CustomerRef)
		assert.Equal(t, credits.TierCreator, account.Tier)
		assert.True(t, account.Subscribed)
		assert.Equal(t, int64(300_000), account.CreditsRemaining)
	})

	t.Run("already-bound customer grants the owning account", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.createAccount(t, "owner@example.com", "cus_owned")
		other := f.createAccount(t, "other@example.com", "")

		f.provider.On("RetrieveSession", mock.Anything, "txn_2").Return(&billing.SessionDetails{
			CustomerRef: "cus_owned",
			PriceRef:    "price_starter_monthly",
		}, nil)

		// Even when a different session confirms, the bound account wins.
		require.NoError(t, f.reconciler.ConfirmCheckout(context.Background(), other, "txn_2"))

		got, err := f.store.GetAccount(context.Background(), owner)
		require.NoError(t, err)
		assert.Equal(t, credits.TierStarter, got.Tier)

		untouched, err := f.store.GetAccount(context.Background(), other)
		require.NoError(t, err)
		assert.Equal(t, credits.TierFree, untouched.Tier)
	})

	t.Run("session without customer is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "x@example.com", "")

		f.provider.On("RetrieveSession", mock.Anything, "txn_3").Return(&billing.SessionDetails{}, nil)

		err := f.reconciler.ConfirmCheckout(context.Background(), id, "txn_3")
		require.ErrorIs(t, err, billing.ErrCustomerNotFound)
	})
}

func TestReconciler_ApplyEvent(t *testing.T) {
	t.Parallel()

	payload := []byte(`{}`)

	t.Run("checkout completed grants tier and replays safely", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "a@example.com", "cus_a")

		f.provider.On("ParseWebhook", mock.Anything, payload, "sig").Return(&billing.Event{
			Kind:        billing.EventCheckoutCompleted,
			CustomerRef: "cus_a",
			PriceRef:    "price_enterprise_monthly",
			Status:      "active",
		}, nil)

		require.NoError(t, f.reconciler.ApplyEvent(context.Background(), payload, "sig"))
		first, err := f.store.GetAccount(context.Background(), id)
		require.NoError(t, err)

		// Processor retries deliver the same event again.
		require.NoError(t, f.reconciler.ApplyEvent(context.Background(), payload, "sig"))
		second, err := f.store.GetAccount(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, credits.TierEnterprise, second.Tier)
		assert.Equal(t, first.Tier, second.Tier)
		assert.Equal(t, first.CreditsRemaining, second.CreditsRemaining)
		assert.Equal(t, first.CreditsCap, second.CreditsCap)
		assert.Equal(t, first.Subscribed, second.Subscribed)
	})

	t.Run("subscription updated active grants mapped tier", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "b@example.com", "cus_b")

		f.provider.On("ParseWebhook", mock.Anything, payload, "sig").Return(&billing.Event{
			Kind:        billing.EventSubscriptionUpdated,
			CustomerRef: "cus_b",
			PriceRef:    "price_creator_annual",
			Status:      "trialing",
		}, nil)

		require.NoError(t, f.reconciler.ApplyEvent(context.Background(), payload, "sig"))

		account, err := f.store.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, credits.TierCreator, account.Tier)
		assert.True(t, account.Subscribed)
	})

	t.Run("inactive subscription reverts to free", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "c@example.com", "cus_c")
		require.NoError(t, f.ledger.Grant(context.Background(), id, credits.TierCreator))

		f.provider.On("ParseWebhook", mock.Anything, payload, "sig").Return(&billing.Event{
			Kind:        billing.EventSubscriptionDeleted,
			CustomerRef: "cus_c",
			PriceRef:    "price_creator_monthly",
			Status:      "canceled",
		}, nil)

		require.NoError(t, f.reconciler.ApplyEvent(context.Background(), payload, "sig"))

		account, err := f.store.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, credits.TierFree, account.Tier)
		assert.False(t, account.Subscribed)
		assert.Equal(t, int64(10_000), account.CreditsRemaining)
	})

	t.Run("unknown price falls back to default tier", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, billing.WithDefaultTier(credits.TierStarter))
		id := f.createAccount(t, "d@example.com", "cus_d")

		f.provider.On("ParseWebhook", mock.Anything, payload, "sig").Return(&billing.Event{
			Kind:        billing.EventCheckoutCompleted,
			CustomerRef: "cus_d",
			PriceRef:    "price_from_the_future",
		}, nil)

		require.NoError(t, f.reconciler.ApplyEvent(context.Background(), payload, "sig"))

		account, err := f.store.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, credits.TierStarter, account.Tier)
	})

	t.Run("unbound customer is acknowledged without mutation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "e@example.com", "")

		f.provider.On("ParseWebhook", mock.Anything, payload, "sig").Return(&billing.Event{
			Kind:        billing.EventSubscriptionUpdated,
			CustomerRef: "cus_never_seen",
			PriceRef:    "price_creator_monthly",
			Status:      "active",
		}, nil)

		require.NoError(t, f.reconciler.ApplyEvent(context.Background(), payload, "sig"))

		account, err := f.store.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, credits.TierFree, account.Tier)
	})

	t.Run("verification failure causes no mutation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "f@example.com", "cus_f")

		f.provider.On("ParseWebhook", mock.Anything, payload, "bad").
			Return(nil, billing.ErrEventVerificationFailed)

		err := f.reconciler.ApplyEvent(context.Background(), payload, "bad")
		require.ErrorIs(t, err, billing.ErrEventVerificationFailed)

		account, getErr := f.store.GetAccount(context.Background(), id)
		require.NoError(t, getErr)
		assert.Equal(t, credits.TierFree, account.Tier)
	})
}

func TestReconciler_EnsureCustomer(t *testing.T) {
	t.Parallel()

	t.Run("creates and binds on first use", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "new@example.com", "")

		f.provider.On("CreateCustomer", mock.Anything, "new@example.com").Return("cus_new", nil).Once()

		ref, err := f.reconciler.EnsureCustomer(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "cus_new", ref)

		// Second call reads the bound reference; no provider call.
		ref, err = f.reconciler.EnsureCustomer(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "cus_new", ref)
		f.provider.AssertNumberOfCalls(t, "CreateCustomer", 1)
	})

	t.Run("lost bind race adopts the winner's reference", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "race@example.com", "")

		// A concurrent flow binds first, between our read and our bind.
		f.provider.On("CreateCustomer", mock.Anything, "race@example.com").
			Run(func(mock.Arguments) {
				_, err := f.store.BindCustomerRef(context.Background(), id, "cus_winner")
				require.NoError(t, err)
			}).
			Return("cus_loser", nil)

		ref, err := f.reconciler.EnsureCustomer(context.Background(), id)
		require.NoError(t, err, "the race is resolved internally, never surfaced")
		assert.Equal(t, "cus_winner", ref)
	})
}

func TestReconciler_StartCheckout(t *testing.T) {
	t.Parallel()

	t.Run("creator monthly carries the first-month discount", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, billing.WithFirstMonthDiscount("FIRSTMONTH50"))
		id := f.createAccount(t, "promo@example.com", "cus_promo")

		f.provider.On("CreateCheckoutSession", mock.Anything, billing.CheckoutRequest{
			CustomerRef:  "cus_promo",
			PriceRef:     "price_creator_monthly",
			SuccessURL:   "https://app/post-checkout",
			CancelURL:    "https://app/",
			DiscountCode: "FIRSTMONTH50",
		}).Return(&billing.CheckoutSession{URL: "https://pay/xyz", SessionID: "txn_x"}, nil)

		session, err := f.reconciler.StartCheckout(context.Background(), id,
			credits.TierCreator, billing.IntervalMonthly, "https://app/post-checkout", "https://app/")
		require.NoError(t, err)
		assert.Equal(t, "https://pay/xyz", session.URL)
	})

	t.Run("annual checkout has no discount", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, billing.WithFirstMonthDiscount("FIRSTMONTH50"))
		id := f.createAccount(t, "annual@example.com", "cus_annual")

		f.provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req billing.CheckoutRequest) bool {
			return req.DiscountCode == "" && req.PriceRef == "price_creator_annual"
		})).Return(&billing.CheckoutSession{URL: "https://pay/abc"}, nil)

		_, err := f.reconciler.StartCheckout(context.Background(), id,
			credits.TierCreator, billing.IntervalAnnual, "https://app/post-checkout", "https://app/")
		require.NoError(t, err)
	})

	t.Run("unsellable tier is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.createAccount(t, "legacy@example.com", "cus_l")

		_, err := f.reconciler.StartCheckout(context.Background(), id,
			credits.TierLegacy, billing.IntervalMonthly, "", "")
		require.ErrorIs(t, err, billing.ErrInvalidPriceTable)
	})
}
