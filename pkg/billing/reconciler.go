package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studiosix/photostudio/pkg/credits"
)

// Reconciler maps payment processor events and checkout confirmations to
// entitlement changes. Every transition is a pure function of the event: it
// resolves to a terminal tier and is applied as a full Grant overwrite, so
// replays and duplicate delivery paths are naturally safe.
type Reconciler struct {
	store    credits.Store
	ledger   *credits.Ledger
	provider BillingProvider
	prices   PriceTable

	defaultTier  credits.Tier
	discountCode string
	logger       *slog.Logger
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithDefaultTier sets the tier granted when a price reference is not in the
// table. Best-effort policy: a paying customer is never stranded on free
// because of a stale table, but the fallback is logged loudly.
func WithDefaultTier(tier credits.Tier) ReconcilerOption {
	return func(r *Reconciler) {
		r.defaultTier = tier
	}
}

// WithFirstMonthDiscount sets a promotion code applied to creator monthly
// checkouts.
func WithFirstMonthDiscount(code string) ReconcilerOption {
	return func(r *Reconciler) {
		r.discountCode = code
	}
}

// WithReconcilerLogger sets a custom logger.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a Reconciler. Panics if required dependencies are nil
// to fail fast during initialization.
func NewReconciler(store credits.Store, ledger *credits.Ledger, provider BillingProvider, prices PriceTable, opts ...ReconcilerOption) (*Reconciler, error) {
	if store == nil {
		panic("billing: credits.Store is required")
	}
	if ledger == nil {
		panic("billing: credits.Ledger is required")
	}
	if provider == nil {
		panic("billing: BillingProvider is required")
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}

	r := &Reconciler{
		store:       store,
		ledger:      ledger,
		provider:    provider,
		prices:      prices,
		defaultTier: credits.TierCreator,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// EnsureCustomer returns the account's billing customer reference, creating
// and binding one on first use. The bind is at-most-once: when two flows race
// here, the store's conditional bind lets exactly one win and the loser
// adopts the winner's reference. The race is resolved internally, never
// surfaced to the caller.
func (r *Reconciler) EnsureCustomer(ctx context.Context, accountID uuid.UUID) (string, error) {
	account, err := r.store.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account.CustomerRef != "" {
		return account.CustomerRef, nil
	}

	ref, err := r.provider.CreateCustomer(ctx, account.Email)
	if err != nil {
		return "", fmt.Errorf("failed to create billing customer: %w", err)
	}

	bound, err := r.store.BindCustomerRef(ctx, accountID, ref)
	if err != nil {
		if errors.Is(err, credits.ErrCustomerRefBound) {
			// Lost the bind race; the provider-side customer we created is
			// orphaned. Harmless, but worth a trace.
			r.logger.WarnContext(ctx, "customer bind race lost, adopting existing reference",
				slog.String("account_id", accountID.String()),
				slog.String("orphaned_ref", ref),
			)
			return bound, nil
		}
		return "", err
	}
	return bound, nil
}

// StartCheckout creates a hosted checkout session for the given tier and
// interval. The configured first-month discount is attached to creator
// monthly checkouts only, mirroring the launch promotion.
func (r *Reconciler) StartCheckout(ctx context.Context, accountID uuid.UUID, tier credits.Tier, interval BillingInterval, successURL, cancelURL string) (*CheckoutSession, error) {
	priceRef, ok := r.prices.RefFor(tier, interval)
	if !ok {
		return nil, fmt.Errorf("%w: no price for tier %q interval %q", ErrInvalidPriceTable, tier, interval)
	}

	customerRef, err := r.EnsureCustomer(ctx, accountID)
	if err != nil {
		return nil, err
	}

	req := CheckoutRequest{
		CustomerRef: customerRef,
		PriceRef:    priceRef,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
	}
	if tier == credits.TierCreator && interval == IntervalMonthly {
		req.DiscountCode = r.discountCode
	}

	return r.provider.CreateCheckoutSession(ctx, req)
}

// PortalSession returns a customer portal link for subscription management.
func (r *Reconciler) PortalSession(ctx context.Context, accountID uuid.UUID, returnURL string) (*PortalSession, error) {
	customerRef, err := r.EnsureCustomer(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return r.provider.CreateBillingPortalSession(ctx, customerRef, returnURL)
}

// ConfirmCheckout handles the synchronous success-redirect path: it resolves
// the session with the provider, binds the customer reference to the
// redirected account when nothing is bound yet, and grants the purchased
// tier. The webhook for the same checkout may land before or after; both
// apply the same terminal grant, so ordering does not matter.
func (r *Reconciler) ConfirmCheckout(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	details, err := r.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if details.CustomerRef == "" {
		return ErrCustomerNotFound
	}

	targetID := accountID
	owner, err := r.store.GetAccountByCustomerRef(ctx, details.CustomerRef)
	switch {
	case err == nil:
		targetID = owner.ID
	case errors.Is(err, credits.ErrAccountNotFound):
		if _, bindErr := r.store.BindCustomerRef(ctx, accountID, details.CustomerRef); bindErr != nil &&
			!errors.Is(bindErr, credits.ErrCustomerRefBound) {
			return bindErr
		}
	default:
		return err
	}

	return r.ledger.Grant(ctx, targetID, r.tierFor(ctx, details.PriceRef))
}

// ApplyEvent is the webhook entry point. Signature verification happens
// first; a verification failure rejects the event without side effects and
// leaves recovery to the processor's retry. Events for customer references
// not bound to any account are acknowledged and skipped: binding happens
// later via the synchronous confirmation.
func (r *Reconciler) ApplyEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := r.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	account, err := r.store.GetAccountByCustomerRef(ctx, event.CustomerRef)
	if err != nil {
		if errors.Is(err, credits.ErrAccountNotFound) {
			r.logger.InfoContext(ctx, "billing event for unbound customer, skipping",
				slog.String("event", string(event.Kind)),
				slog.String("customer_ref", event.CustomerRef),
			)
			return nil
		}
		return err
	}

	switch event.Kind {
	case EventCheckoutCompleted:
		return r.ledger.Grant(ctx, account.ID, r.tierFor(ctx, event.PriceRef))

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		if event.SubscriptionActive() {
			return r.ledger.Grant(ctx, account.ID, r.tierFor(ctx, event.PriceRef))
		}
		return r.ledger.Grant(ctx, account.ID, credits.TierFree)

	default:
		r.logger.InfoContext(ctx, "ignoring unhandled billing event",
			slog.String("event", event.ProviderEvent),
		)
		return nil
	}
}

// tierFor resolves a price reference through the table, falling back to the
// configured default tier for unknown references. The fallback keeps a paying
// customer entitled when the table lags behind the processor's catalog, but
// it can mask a misconfiguration, so it logs at error level.
func (r *Reconciler) tierFor(ctx context.Context, priceRef string) credits.Tier {
	if tier, ok := r.prices.TierFor(priceRef); ok {
		return tier
	}
	r.logger.ErrorContext(ctx, "unknown price reference, granting default tier",
		slog.String("price_ref", priceRef),
		slog.String("default_tier", string(r.defaultTier)),
	)
	return r.defaultTier
}
