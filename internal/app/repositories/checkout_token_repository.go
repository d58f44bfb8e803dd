package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

// CheckoutTokenRepository stores checkout tokens in redis. The key TTL equals
// the hold window, so redis itself drops tokens at expiry and a missing key
// reads as TokenExpired.
type CheckoutTokenRepository struct {
	client *redis.Client
}

// NewCheckoutTokenRepository creates a redis-backed token store
func NewCheckoutTokenRepository(client *redis.Client) *CheckoutTokenRepository {
	return &CheckoutTokenRepository{client: client}
}

func checkoutKey(tokenValue string) string {
	return "checkout:" + tokenValue
}

// Save stores the token with a TTL matching its expiry
func (r *CheckoutTokenRepository) Save(ctx context.Context, token *models.CheckoutToken) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("error marshaling checkout token: %w", err)
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: token already expired at save", apperrors.ErrTokenExpired)
	}

	if err := r.client.Set(ctx, checkoutKey(token.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("error saving checkout token: %w", err)
	}
	return nil
}

// Get returns the token, or apperrors.ErrTokenExpired when redis no longer
// holds the key
func (r *CheckoutTokenRepository) Get(ctx context.Context, tokenValue string) (*models.CheckoutToken, error) {
	payload, err := r.client.Get(ctx, checkoutKey(tokenValue)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("error retrieving checkout token: %w", err)
	}

	var token models.CheckoutToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("error unmarshaling checkout token: %w", err)
	}
	return &token, nil
}

// Delete removes the token
func (r *CheckoutTokenRepository) Delete(ctx context.Context, tokenValue string) error {
	if err := r.client.Del(ctx, checkoutKey(tokenValue)).Err(); err != nil {
		return fmt.Errorf("error deleting checkout token: %w", err)
	}
	return nil
}
