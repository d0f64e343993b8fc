package credits

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence interface for accounts and their entitlement
// fields. All mutations to a single account must be serialized by the
// implementation (row-level conditional updates or an equivalent); callers
// never hold locks across external calls.
type Store interface {
	// CreateAccount persists a new account. Returns ErrEmailTaken when the
	// email is already registered.
	CreateAccount(ctx context.Context, account *Account) error

	// GetAccount returns ErrAccountNotFound when no account exists.
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// GetAccountByCustomerRef resolves the account bound to a billing
	// customer reference. Returns ErrAccountNotFound for unbound refs.
	GetAccountByCustomerRef(ctx context.Context, ref string) (*Account, error)

	// BindCustomerRef sets the billing customer reference if, and only if,
	// none is bound yet. On a lost race it returns the winner's existing
	// reference together with ErrCustomerRefBound; callers resolve the race
	// by adopting that value instead of creating a duplicate.
	BindCustomerRef(ctx context.Context, id uuid.UUID, ref string) (string, error)

	// SetEntitlement overwrites the account's entitlement fields in one
	// atomic step. Used by Grant and Renew; replaying the same values is a
	// no-op by construction.
	SetEntitlement(ctx context.Context, id uuid.UUID, ent Entitlement) error

	// DebitCredits atomically subtracts cost from the balance and increments
	// the generation counter, but only when the balance covers the cost.
	// Returns the updated account, or ErrInsufficientCredits when the
	// conditional update matched nothing. Never drives the balance negative.
	DebitCredits(ctx context.Context, id uuid.UUID, cost int64) (*Account, error)
}
