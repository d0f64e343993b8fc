// Package web is the HTTP surface of the service: a chi router exposing
// signup/login, credit-gated image transforms, the generation gallery,
// checkout and webhook endpoints for subscription reconciliation, and the
// QR-based mobile upload handoff.
//
// Handlers are thin: they authenticate, decode, call one core operation and
// encode the result as JSON. All business rules live in the pkg packages.
package web
