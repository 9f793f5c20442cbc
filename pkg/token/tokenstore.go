package tokenstore

import (
	"sync"
	"time"
)

// Revoked session token ids, kept until the token itself would have
// expired. Process-local: a restart forgets revocations.
var (
	mu            sync.Mutex
	revokedTokens = map[string]time.Time{}
)

// RevokeToken marks jti as revoked until the given expiry.
func RevokeToken(jti string, until time.Time) {
	if jti == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	revokedTokens[jti] = until
	sweepLocked(time.Now())
}

func IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	mu.Lock()
	defer mu.Unlock()
	until, ok := revokedTokens[jti]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(revokedTokens, jti)
		return false
	}
	return true
}

func sweepLocked(now time.Time) {
	for k, until := range revokedTokens {
		if now.After(until) {
			delete(revokedTokens, k)
		}
	}
}
