// Package billing keeps local entitlement state in agreement with the
// payment processor's authoritative state.
//
// Two delivery paths can report the same fact: the synchronous checkout
// return redirect (ConfirmCheckout) and the asynchronous webhook stream
// (ApplyEvent), and the processor retries webhook delivery. The reconciler is
// therefore built to be replay-safe: every transition resolves to a terminal
// tier and is applied through the credit ledger's Grant, which is a full
// overwrite. Applying the same event twice leaves identical state; nothing
// counts events.
//
// # Architecture
//
//   - BillingProvider – the processor abstraction (hosted checkout, customer
//     portal, signed webhook parsing). PaddleProvider is the shipped
//     implementation; signature verification is mandatory and happens inside
//     ParseWebhook before anything else.
//   - PriceTable – the price reference ↔ tier mapping. Unrecognized price
//     references fall back to a configured default tier instead of failing
//     the whole event, and are logged at error level so a misconfigured
//     table cannot stay silent.
//   - Reconciler – consumes provider events and the sync confirmation path,
//     binds accounts to billing customer references (lazily, at most once),
//     and applies tier changes through credits.Ledger.
//
// Verification failures reject the event with ErrEventVerificationFailed and
// cause no state mutation; the processor's own retry mechanism is the
// recovery path.
package billing
