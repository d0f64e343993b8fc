package studio

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Generation is the immutable record of one successful transformation. It is
// created only after the model call succeeded and the output artifact is
// stored.
type Generation struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Flow      Flow
	InputRef  string
	OutputRef string
	CreatedAt time.Time
}

// GenerationStore persists generation records.
type GenerationStore interface {
	CreateGeneration(ctx context.Context, gen *Generation) error

	// ListGenerations returns the account's generations newest first.
	ListGenerations(ctx context.Context, accountID uuid.UUID) ([]Generation, error)
}
