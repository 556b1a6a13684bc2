// Package quote keeps the order an admin is creating in Redis, one quote
// per admin session.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/go-commerce/internal/order"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store reads and writes session quotes. A quote left alone for ttl is
// dropped.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a Store backed by client.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(session string) string {
	return fmt.Sprintf("quote:%s", session)
}

// Get returns the session's quote, or a new empty one.
func (s *Store) Get(ctx context.Context, session string) (*order.Quote, error) {
	payload, err := s.client.Get(ctx, key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return order.NewQuote(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read quote")
	}

	q := order.NewQuote()
	if err := json.Unmarshal(payload, q); err != nil {
		return nil, errors.Wrap(err, "decode quote")
	}
	return q, nil
}

// Save stores q for the session and restarts its expiry.
func (s *Store) Save(ctx context.Context, session string, q *order.Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return errors.Wrap(err, "encode quote")
	}
	if err := s.client.Set(ctx, key(session), payload, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "store quote")
	}
	return nil
}

// Clear drops the session's quote.
func (s *Store) Clear(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, key(session)).Err(); err != nil {
		return errors.Wrap(err, "clear quote")
	}
	return nil
}
