package studio

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGenerationStore implements GenerationStore on a pgx connection
// pool. Generation rows are insert-only.
type PostgresGenerationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresGenerationStore creates a GenerationStore backed by the given
// pool. Panics on a nil pool to fail fast during initialization.
func NewPostgresGenerationStore(pool *pgxpool.Pool) *PostgresGenerationStore {
	if pool == nil {
		panic("studio: pgxpool is required")
	}
	return &PostgresGenerationStore{pool: pool}
}

func (s *PostgresGenerationStore) CreateGeneration(ctx context.Context, gen *Generation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO generations (id, account_id, flow, input_ref, output_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		gen.ID, gen.AccountID, gen.Flow, gen.InputRef, gen.OutputRef, gen.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// ListGenerations is an explicit ordered query, not a lazy relation walk:
// newest first, straight off the created_at index.
func (s *PostgresGenerationStore) ListGenerations(ctx context.Context, accountID uuid.UUID) ([]Generation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, flow, input_ref, output_ref, created_at
		FROM generations
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Generation, error) {
		var g Generation
		err := row.Scan(&g.ID, &g.AccountID, &g.Flow, &g.InputRef, &g.OutputRef, &g.CreatedAt)
		return g, err
	})
}
