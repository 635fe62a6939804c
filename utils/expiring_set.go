package utils

import (
	"context"
	"sync"
	"time"
)

// expiringSet remembers keys until a deadline. Redis is used when configured so
// several instances share the same view; otherwise entries live in process memory.
type expiringSet struct {
	prefix  string
	mu      sync.Mutex
	entries map[string]time.Time
}

func newExpiringSet(prefix string) *expiringSet {
	return &expiringSet{prefix: prefix, entries: map[string]time.Time{}}
}

func (s *expiringSet) add(key string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, s.prefix+key, "1", ttl).Err(); err != nil {
			Sugar.Warnf("redis set %s failed: %v", s.prefix, err)
		}
		return
	}
	s.mu.Lock()
	s.entries[key] = expiresAt
	s.sweepLocked(time.Now())
	s.mu.Unlock()
}

func (s *expiringSet) has(key string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, s.prefix+key).Result()
		// fail open on redis errors to avoid locking everybody out
		return err == nil && n > 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(s.entries, key)
		return false
	}
	return true
}

// take reports whether key was present and removes it; each key is usable once.
func (s *expiringSet) take(key string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		v, err := rc.GetDel(ctx, s.prefix+key).Result()
		return err == nil && v != ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return ok && time.Now().Before(exp)
}

func (s *expiringSet) sweepLocked(now time.Time) {
	for k, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, k)
		}
	}
}

var (
	revokedTokens = newExpiringSet("blogicum:jwt:revoked:")
	oauthStates   = newExpiringSet("blogicum:oauth:state:")
)

// BlacklistToken revokes a token until its natural expiration to support logout.
func BlacklistToken(token string, expiresAt time.Time) {
	revokedTokens.add(token, expiresAt)
}

// IsTokenBlacklisted checks if a token was revoked before natural expiration.
func IsTokenBlacklisted(token string) bool {
	return revokedTokens.has(token)
}

// SaveState stores an OAuth state token with TTL to mitigate CSRF.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	oauthStates.add(state, time.Now().Add(ttl))
}

// ConsumeState validates and removes a state token.
func ConsumeState(state string) bool {
	return oauthStates.take(state)
}
