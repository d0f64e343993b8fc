package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/studiosix/photostudio/pkg/credits"
)

const minPasswordLength = 8

// Service registers and verifies accounts. New accounts start on the free
// tier with its full credit grant, so a fresh signup can generate immediately.
type Service struct {
	store      credits.Store
	ledger     *credits.Ledger
	bcryptCost int
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an account service. Panics if store or ledger is nil to
// fail fast during initialization.
func NewService(store credits.Store, ledger *credits.Ledger, opts ...Option) *Service {
	if store == nil {
		panic("account: credits.Store is required")
	}
	if ledger == nil {
		panic("account: credits.Ledger is required")
	}

	s := &Service{
		store:      store,
		ledger:     ledger,
		bcryptCost: bcrypt.DefaultCost,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalizeEmail lowercases and trims the address so lookups are
// case-insensitive regardless of the store backend.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with a hashed credential and seeds it with
// the free tier grant. Returns ErrEmailAlreadyExists when the email is taken.
func (s *Service) Register(ctx context.Context, email, password string) (*credits.Account, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	acc := &credits.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Tier:         credits.TierFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, credits.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.ledger.Grant(ctx, acc.ID, credits.TierFree); err != nil {
		return nil, fmt.Errorf("failed to seed free grant: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", acc.ID.String()),
	)

	return s.store.GetAccount(ctx, acc.ID)
}

// Verify checks an email/password pair and returns the account on success.
// Any failure collapses into ErrInvalidCredentials.
func (s *Service) Verify(ctx context.Context, email, password string) (*credits.Account, error) {
	acc, err := s.store.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Burn a comparison so unknown emails take as long as wrong passwords.
		_ = bcrypt.CompareHashAndPassword(
			[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
			[]byte(password),
		)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// Get returns the account by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*credits.Account, error) {
	return s.store.GetAccount(ctx, id)
}
