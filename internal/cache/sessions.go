package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Session TTL. Sessions slide on every authenticated request.
const sessionTTL = 24 * time.Hour

// SessionStore resolves bearer tokens to user IDs.
type SessionStore struct {
	cache Cache
}

// NewSessionStore creates a session store on top of a cache.
func NewSessionStore(cache Cache) *SessionStore {
	return &SessionStore{cache: cache}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Store associates a token with a user ID.
func (s *SessionStore) Store(ctx context.Context, token string, userID uint) error {
	if err := s.cache.Set(ctx, sessionKey(token), strconv.FormatUint(uint64(userID), 10), sessionTTL); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Lookup resolves a token to a user ID. A missing or expired session
// returns (0, false, nil).
func (s *SessionStore) Lookup(ctx context.Context, token string) (uint, bool, error) {
	val, err := s.cache.Get(ctx, sessionKey(token))
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up session: %w", err)
	}
	if val == "" {
		return 0, false, nil
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session value %q: %w", val, err)
	}

	// Slide the expiry on successful lookup.
	_ = s.cache.Expire(ctx, sessionKey(token), sessionTTL)

	return uint(userID), true, nil
}

// Revoke deletes a session.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.cache.Del(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
