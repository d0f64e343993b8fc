package handoff

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenStore is an in-memory TokenStore for tests and single-node
// deployments. A background reaper deletes expired tokens; an expired token
// is reported as not found even before the reaper gets to it.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*Token

	ttl  time.Duration
	done chan struct{}
	once sync.Once
}

// MemoryTokenOption configures a MemoryTokenStore.
type MemoryTokenOption func(*MemoryTokenStore)

// DefaultTokenTTL bounds how long an undeposited token stays resolvable.
const DefaultTokenTTL = 15 * time.Minute

// WithTokenTTL overrides the token lifetime. Zero disables expiry.
func WithTokenTTL(ttl time.Duration) MemoryTokenOption {
	return func(s *MemoryTokenStore) {
		s.ttl = ttl
	}
}

// NewMemoryTokenStore creates the store and starts its reaper.
func NewMemoryTokenStore(opts ...MemoryTokenOption) *MemoryTokenStore {
	s := &MemoryTokenStore{
		tokens: make(map[string]*Token),
		ttl:    DefaultTokenTTL,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		go s.reap()
	}
	return s
}

// Close stops the reaper. Safe to call more than once.
func (s *MemoryTokenStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryTokenStore) reap() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-s.ttl)
			s.mu.Lock()
			for id, token := range s.tokens {
				if token.CreatedAt.Before(cutoff) {
					delete(s.tokens, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryTokenStore) expired(token *Token) bool {
	return s.ttl > 0 && time.Since(token.CreatedAt) > s.ttl
}

func cloneToken(t *Token) *Token {
	cp := *t
	if t.OwnerID != nil {
		id := *t.OwnerID
		cp.OwnerID = &id
	}
	return &cp
}

func (s *MemoryTokenStore) CreateToken(_ context.Context, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.ID] = cloneToken(token)
	return nil
}

func (s *MemoryTokenStore) GetToken(_ context.Context, id string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[id]
	if !ok || s.expired(token) {
		return nil, ErrTokenNotFound
	}
	return cloneToken(token), nil
}

func (s *MemoryTokenStore) ConsumeToken(_ context.Context, id, artifactRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[id]
	if !ok || s.expired(token) {
		return ErrTokenNotFound
	}
	if token.Used {
		return ErrTokenAlreadyUsed
	}
	token.Used = true
	token.ArtifactRef = artifactRef
	return nil
}
