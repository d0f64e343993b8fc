package credits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique constraint conflicts.
const uniqueViolation = "23505"

// PostgresStore implements Store on a pgx connection pool. Per-account
// serialization relies on row-level conditional updates: the debit and the
// customer-ref bind are single UPDATE statements whose WHERE clause carries
// the precondition, so concurrent writers cannot both pass it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given pool. Panics on a nil
// pool to fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("credits: pgxpool is required")
	}
	return &PostgresStore{pool: pool}
}

const accountColumns = `id, email, password_hash, tier, subscribed, customer_ref,
	credits_remaining, credits_cap, generation_count, credits_reset_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		a   Account
		ref *string
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Tier, &a.Subscribed, &ref,
		&a.CreditsRemaining, &a.CreditsCap, &a.GenerationCount, &a.CreditsResetAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	if ref != nil {
		a.CustomerRef = *ref
	}
	return &a, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, tier, subscribed, customer_ref,
			credits_remaining, credits_cap, generation_count, credits_reset_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)`,
		account.ID, strings.ToLower(account.Email), account.PasswordHash,
		account.Tier, account.Subscribed, account.CustomerRef,
		account.CreditsRemaining, account.CreditsCap, account.GenerationCount,
		account.CreditsResetAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, strings.ToLower(email))
	return scanAccount(row)
}

func (s *PostgresStore) GetAccountByCustomerRef(ctx context.Context, ref string) (*Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE customer_ref = $1`, ref)
	return scanAccount(row)
}

// BindCustomerRef is the atomic "insert if absent, else fetch existing" for
// the lazy customer binding. The conditional UPDATE only succeeds against an
// unbound row; on a lost race the winner's value is read back and returned
// with ErrCustomerRefBound.
func (s *PostgresStore) BindCustomerRef(ctx context.Context, id uuid.UUID, ref string) (string, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET customer_ref = $2, updated_at = now()
		WHERE id = $1 AND customer_ref IS NULL`,
		id, ref,
	)
	if err != nil {
		return "", fmt.Errorf("failed to bind customer ref: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return ref, nil
	}

	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return "", err
	}
	if account.CustomerRef == "" {
		// Row exists but the update did not stick and no ref is bound;
		// should not happen outside of concurrent deletes.
		return "", fmt.Errorf("failed to bind customer ref for account %s", id)
	}
	return account.CustomerRef, ErrCustomerRefBound
}

func (s *PostgresStore) SetEntitlement(ctx context.Context, id uuid.UUID, ent Entitlement) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET
			tier = $2,
			subscribed = $3,
			credits_remaining = $4,
			credits_cap = $5,
			credits_reset_at = COALESCE($6, credits_reset_at),
			updated_at = now()
		WHERE id = $1`,
		id, ent.Tier, ent.Subscribed, ent.CreditsRemaining, ent.CreditsCap, ent.ResetAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set entitlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DebitCredits carries the non-negativity precondition in the WHERE clause;
// two concurrent debits can never both pass it once the balance is exhausted.
func (s *PostgresStore) DebitCredits(ctx context.Context, id uuid.UUID, cost int64) (*Account, error) {
	if cost <= 0 {
		return nil, ErrInvalidCost
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE accounts SET
			credits_remaining = credits_remaining - $2,
			generation_count = generation_count + 1,
			updated_at = now()
		WHERE id = $1 AND credits_remaining >= $2
		RETURNING `+accountColumns,
		id, cost,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Distinguish a missing account from an exhausted balance.
			if _, getErr := s.GetAccount(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrInsufficientCredits
		}
		return nil, err
	}
	return account, nil
}
