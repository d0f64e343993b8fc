// Package handoff implements the cross-device upload rendezvous: device A
// creates a short-lived token and displays it as a scannable URL, device B
// resolves the token and deposits an image, device A polls until the artifact
// is ready.
//
// The protocol is deliberately minimal. A token is created empty, accepts
// exactly one successful deposit (the used flag flips false→true together
// with the artifact reference, atomically, and never reverses), and is
// terminal afterwards. Concurrent deposit attempts have exactly one winner;
// all others see ErrTokenAlreadyUsed. Poll is read-only and side-effect-free,
// cheap enough to call at sub-second intervals.
//
// Tokens expire after a configurable TTL: the Redis store leans on native key
// expiry, the in-memory store runs a background reaper. An expired token is
// indistinguishable from one that never existed.
//
// The broker knows nothing about credits or accounts; it only produces an
// artifact reference that later feeds the generation flow as an alternate
// input source.
package handoff
