package backendfake

import (
	"sync"
	"time"
)

// RevokedTokenCache remembers access tokens ended by logout or replaced by
// refresh, keyed by jti. A token counts as revoked from `from` and is
// forgotten after `until`, when it could no longer be refreshed anyway.
type RevokedTokenCache interface {
	Add(jti string, from, until time.Time)
	IsRevoked(jti string) bool
	Cleanup() // Remove entries past their deadline
}

type revocation struct {
	from, until time.Time
}

type InMemoryRevokedTokenCache struct {
	revoked map[string]revocation
	mu      sync.RWMutex
}

func NewInMemoryRevokedTokenCache() RevokedTokenCache {
	return &InMemoryRevokedTokenCache{
		revoked: make(map[string]revocation),
	}
}

// Add keeps the earliest revocation time when jti is already known, so a
// token refreshed twice does not get a longer overlap.
func (c *InMemoryRevokedTokenCache) Add(jti string, from, until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.revoked[jti]; ok && existing.from.Before(from) {
		from = existing.from
	}
	c.revoked[jti] = revocation{from: from, until: until}
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, exists := c.revoked[jti]
	return exists && !time.Now().Before(r.from)
}

func (c *InMemoryRevokedTokenCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for jti, r := range c.revoked {
		if now.After(r.until) {
			delete(c.revoked, jti)
		}
	}
}
