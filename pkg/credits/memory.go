package credits

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local development. A single
// mutex serializes all mutations, which trivially satisfies the per-account
// linearizability requirement.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	byEmail  map[string]uuid.UUID
	byRef    map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]*Account),
		byEmail:  make(map[string]uuid.UUID),
		byRef:    make(map[string]uuid.UUID),
	}
}

func cloneAccount(a *Account) *Account {
	cp := *a
	if a.PasswordHash != nil {
		cp.PasswordHash = append([]byte(nil), a.PasswordHash...)
	}
	if a.CreditsResetAt != nil {
		t := *a.CreditsResetAt
		cp.CreditsResetAt = &t
	}
	return &cp
}

func (s *MemoryStore) CreateAccount(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrEmailTaken
	}

	now := time.Now().UTC()
	cp := cloneAccount(account)
	cp.Email = email
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now

	s.accounts[cp.ID] = cp
	s.byEmail[email] = cp.ID
	if cp.CustomerRef != "" {
		s.byRef[cp.CustomerRef] = cp.ID
	}
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id uuid.UUID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (s *MemoryStore) GetAccountByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *MemoryStore) GetAccountByCustomerRef(_ context.Context, ref string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRef[ref]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *MemoryStore) BindCustomerRef(_ context.Context, id uuid.UUID, ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return "", ErrAccountNotFound
	}
	if account.CustomerRef != "" {
		// Lost the create-or-fetch race: hand back the winner's value.
		return account.CustomerRef, ErrCustomerRefBound
	}
	account.CustomerRef = ref
	account.UpdatedAt = time.Now().UTC()
	s.byRef[ref] = id
	return ref, nil
}

func (s *MemoryStore) SetEntitlement(_ context.Context, id uuid.UUID, ent Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.Tier = ent.Tier
	account.Subscribed = ent.Subscribed
	account.CreditsRemaining = ent.CreditsRemaining
	account.CreditsCap = ent.CreditsCap
	if ent.ResetAt != nil {
		t := *ent.ResetAt
		account.CreditsResetAt = &t
	}
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) DebitCredits(_ context.Context, id uuid.UUID, cost int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if cost <= 0 {
		return nil, ErrInvalidCost
	}
	if account.CreditsRemaining < cost {
		return nil, ErrInsufficientCredits
	}
	account.CreditsRemaining -= cost
	account.GenerationCount++
	account.UpdatedAt = time.Now().UTC()
	return cloneAccount(account), nil
}
