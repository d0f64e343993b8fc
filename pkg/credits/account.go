package credits

import (
	"time"

	"github.com/google/uuid"
)

// Account is the durable entitlement record. CreditsRemaining never goes
// negative; CreditsRemaining <= CreditsCap is deliberately NOT enforced, so a
// cap change never clamps an existing balance.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte

	Tier       Tier
	Subscribed bool
	// CustomerRef is the billing processor's customer identifier. It is bound
	// lazily, at most once, the first time the account starts a paid flow and
	// is immutable afterwards.
	CustomerRef string

	CreditsRemaining int64
	CreditsCap       int64
	GenerationCount  int64
	// CreditsResetAt records the last periodic replenishment. Nil for
	// accounts that predate the field.
	CreditsResetAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanSpend reports whether the balance covers the given cost. Advisory only;
// the authoritative check happens inside the store's conditional debit.
func (a *Account) CanSpend(cost int64) bool {
	return cost > 0 && a.CreditsRemaining >= cost
}

// Entitlement is the atomic overwrite applied by Grant and Renew. ResetAt is
// stamped only on periodic replenishment.
type Entitlement struct {
	Tier             Tier
	Subscribed       bool
	CreditsRemaining int64
	CreditsCap       int64
	ResetAt          *time.Time
}
