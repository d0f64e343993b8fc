package handoff

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Token is an ephemeral upload rendezvous point. Used is monotonic: it flips
// false→true exactly once, in the same transition that sets ArtifactRef, and
// never reverses.
type Token struct {
	ID string
	// OwnerID is set when an authenticated session starts the handoff;
	// anonymous handoffs are allowed and leave it nil.
	OwnerID     *uuid.UUID
	Used        bool
	ArtifactRef string
	CreatedAt   time.Time
}

// newTokenID returns an opaque unguessable identifier (128 bits of
// randomness, hex encoded).
func newTokenID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// State is the consumer-visible token state reported by Poll.
type State string

const (
	StateUnknown State = "unknown"
	StatePending State = "pending"
	StateReady   State = "ready"
)

// PollResult is the outcome of a Poll call. ArtifactRef is set only for
// StateReady.
type PollResult struct {
	State       State
	ArtifactRef string
}

// TokenStore is the persistence interface for upload tokens. Consume must be
// a compare-and-set on the used flag: exactly one of N concurrent attempts
// wins. Implementations expire tokens after their TTL; an expired token reads
// as not found.
type TokenStore interface {
	CreateToken(ctx context.Context, token *Token) error

	// GetToken returns ErrTokenNotFound for unknown or expired tokens.
	GetToken(ctx context.Context, id string) (*Token, error)

	// ConsumeToken atomically sets the artifact reference and flips the used
	// flag. Returns ErrTokenNotFound or ErrTokenAlreadyUsed; a retried
	// deposit after success is rejected, never overwritten.
	ConsumeToken(ctx context.Context, id, artifactRef string) error
}
