package guard

import (
	"context"
	"sync"
	"time"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

// MemoryTokenStore is a process-local TokenStore. It backs deployments that
// run without redis; expiry is enforced at read time, so no sweeper goroutine
// is needed.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]models.CheckoutToken
}

// NewMemoryTokenStore creates an empty in-memory token store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]models.CheckoutToken),
	}
}

// Save stores the token
func (s *MemoryTokenStore) Save(_ context.Context, token *models.CheckoutToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = *token
	return nil
}

// Get returns the token, or apperrors.ErrTokenExpired when it is unknown or
// past its expiry. Expired entries are dropped on access.
func (s *MemoryTokenStore) Get(_ context.Context, tokenValue string) (*models.CheckoutToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenValue]
	if !ok {
		return nil, apperrors.ErrTokenExpired
	}
	if token.Expired(time.Now()) {
		delete(s.tokens, tokenValue)
		return nil, apperrors.ErrTokenExpired
	}
	return &token, nil
}

// Delete removes the token
func (s *MemoryTokenStore) Delete(_ context.Context, tokenValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenValue)
	return nil
}
