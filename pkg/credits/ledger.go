package credits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DebitResult reports the account state right after a successful debit.
type DebitResult struct {
	Remaining       int64
	Cap             int64
	GenerationCount int64
}

// Ledger enforces debit-before-spend and tier-based replenishment on top of a
// Store. It holds no in-memory balance state: every operation goes through
// the store so concurrent units of work observe serialized per-account
// mutations.
type Ledger struct {
	store   Store
	catalog Catalog
	cost    int64
	logger  *slog.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithGenerationCost overrides the per-generation credit cost.
func WithGenerationCost(cost int64) LedgerOption {
	return func(l *Ledger) {
		l.cost = cost
	}
}

// WithLedgerLogger sets a custom logger.
func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger creates a Ledger with the catalog loaded from src. Panics if
// required dependencies are nil to fail fast during initialization.
func NewLedger(ctx context.Context, src CatalogSource, store Store, opts ...LedgerOption) (*Ledger, error) {
	if src == nil {
		panic("credits: CatalogSource is required")
	}
	if store == nil {
		panic("credits: Store is required")
	}

	catalog, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	l := &Ledger{
		store:   store,
		catalog: catalog,
		cost:    DefaultGenerationCost,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cost <= 0 {
		return nil, ErrInvalidCost
	}
	return l, nil
}

// Cost returns the configured per-generation credit cost.
func (l *Ledger) Cost() int64 {
	return l.cost
}

// Catalog returns a copy of the loaded tier catalog.
func (l *Ledger) Catalog() Catalog {
	cp := make(Catalog, len(l.catalog))
	for tier, cap := range l.catalog {
		cp[tier] = cap
	}
	return cp
}

// Authorize is a read-only check that the account's balance covers cost.
// Insufficient credits is a false result, not an error: the caller decides
// between upsell and queueing. The result is advisory and must not be trusted
// across an awaited external call.
func (l *Ledger) Authorize(ctx context.Context, accountID uuid.UUID, cost int64) (bool, error) {
	if cost <= 0 {
		return false, ErrInvalidCost
	}
	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.CanSpend(cost), nil
}

// Debit atomically subtracts cost from the account's balance and increments
// its generation counter. It re-validates non-negativity on its own: two
// concurrent debits never both succeed past the point where the balance would
// go negative. Returns ErrInsufficientCredits when the balance cannot cover
// the cost.
func (l *Ledger) Debit(ctx context.Context, accountID uuid.UUID, cost int64) (DebitResult, error) {
	if cost <= 0 {
		return DebitResult{}, ErrInvalidCost
	}
	account, err := l.store.DebitCredits(ctx, accountID, cost)
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			l.logger.InfoContext(ctx, "debit rejected",
				slog.String("account_id", accountID.String()),
				slog.Int64("cost", cost),
			)
		}
		return DebitResult{}, err
	}
	return DebitResult{
		Remaining:       account.CreditsRemaining,
		Cap:             account.CreditsCap,
		GenerationCount: account.GenerationCount,
	}, nil
}

// Grant sets the account's balance and cap to the tier's catalog value and
// records the tier. It is a full overwrite keyed by the terminal tier, never
// an additive top-up, so applying the same grant twice leaves identical
// state. The subscription flag follows the tier: every tier except free marks
// the account subscribed.
func (l *Ledger) Grant(ctx context.Context, accountID uuid.UUID, tier Tier) error {
	cap, err := l.catalog.Cap(tier)
	if err != nil {
		return err
	}
	return l.store.SetEntitlement(ctx, accountID, Entitlement{
		Tier:             tier,
		Subscribed:       tier != TierFree,
		CreditsRemaining: cap,
		CreditsCap:       cap,
	})
}

// Renew replenishes the account at its current tier and stamps the reset
// time. The external scheduler collaborator triggers this monthly.
func (l *Ledger) Renew(ctx context.Context, accountID uuid.UUID) error {
	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	cap, err := l.catalog.Cap(account.Tier)
	if err != nil {
		return fmt.Errorf("renew %s: %w", accountID, err)
	}
	now := time.Now().UTC()
	return l.store.SetEntitlement(ctx, accountID, Entitlement{
		Tier:             account.Tier,
		Subscribed:       account.Subscribed,
		CreditsRemaining: cap,
		CreditsCap:       cap,
		ResetAt:          &now,
	})
}
