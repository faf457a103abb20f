package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const storeKeyPrefix = "flow:session"

// Store persists flow sessions in Redis so that the view-router and form
// state survive across stateless API calls from the same client.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a session store with the given idle TTL.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func storeKey(id string) string {
	return fmt.Sprintf("%s:%s", storeKeyPrefix, id)
}

// Get loads the session for id, returning a fresh session when none exists.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, storeKey(id)).Bytes()
	if err == redis.Nil {
		return NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load flow session: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(raw, session); err != nil {
		return nil, fmt.Errorf("failed to decode flow session: %w", err)
	}

	// Required-field configuration is not serialized.
	for _, f := range []*Form{session.Signup, session.Login, session.AddProduct} {
		if f != nil {
			f.restore()
		}
	}
	if session.Signup == nil {
		session.Signup = NewSignupForm()
	}
	if session.Login == nil {
		session.Login = NewLoginForm()
	}
	if session.AddProduct == nil {
		session.AddProduct = NewAddProductForm()
	}
	return session, nil
}

// Save writes the session back, refreshing its TTL.
func (s *Store) Save(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode flow session: %w", err)
	}

	if err := s.rdb.Set(ctx, storeKey(session.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save flow session: %w", err)
	}
	return nil
}
