// Package credits implements the entitlement store and the credit ledger that
// gates image generation.
//
// Every account carries a tier, a subscription flag, a credit balance, and a
// credit cap. Generations spend a fixed number of credits; subscription
// changes replenish the balance via Grant, which is a full overwrite keyed by
// the tier (never an additive top-up), making replenishment naturally
// idempotent.
//
// # Architecture
//
// The package exposes three cooperating pieces:
//
//   - Store – the persistence interface for accounts and their entitlement
//     fields. Implementations must serialize mutations per account: the
//     Postgres store uses conditional row updates, the in-memory store a
//     mutex. DebitCredits is the invariant-bearing operation and must never
//     drive a balance negative.
//   - Catalog – the static tier → credit cap mapping, constructed in code or
//     loaded from a YAML file.
//   - Ledger – the service layer: Authorize (advisory read-only check),
//     Debit (atomic conditional spend), Grant (tier overwrite) and Renew
//     (periodic replenishment for the account's current tier).
//
// Authorize is advisory only. A true result does not guarantee a later Debit
// succeeds: the balance can change between the two calls (a concurrent spend,
// a renewal). Debit re-validates on its own and returns ErrInsufficientCredits
// when the conditional update finds nothing to spend.
//
// # Usage
//
//	store := credits.NewMemoryStore()
//	ledger := credits.NewLedger(store, credits.DefaultCatalog())
//
//	ok, err := ledger.Authorize(ctx, accountID, ledger.Cost())
//	if err != nil || !ok {
//		// surface upsell
//	}
//	// ... perform the external generation call, lock-free ...
//	res, err := ledger.Debit(ctx, accountID, ledger.Cost())
//
// Errors are declared as package-level sentinels and can be compared with
// errors.Is.
package credits
