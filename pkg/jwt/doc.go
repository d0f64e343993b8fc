// Package jwt signs and verifies the HS256 session tokens the transport
// layer hands out after signup and login. No external claims, no key
// rotation, no algorithm negotiation: one symmetric key, constant-time
// signature checks, and temporal claim validation.
package jwt
