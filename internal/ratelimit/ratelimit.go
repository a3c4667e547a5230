package ratelimit

import (
	"context"
	"time"
)

// BlockStore is a TTL-keyed blocklist. A present key means the identifier
// is currently blocked; an absent key means it is not. Implementations are
// best-effort single-cache mechanisms, not distributed guarantees.
type BlockStore interface {
	IsBlocked(ctx context.Context, key string) (bool, error)
	Block(ctx context.Context, key string, ttl time.Duration) error
	Clear(ctx context.Context, key string) error
}

func LoginKey(email string) string    { return "login_attempt_" + email }
func RegisterKey(email string) string { return "register_attempt_" + email }
func RevokedKey(jti string) string    { return "revoked_jti_" + jti }
