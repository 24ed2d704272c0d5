package backendfake_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/uniassist/backendfake"
	"github.com/stretchr/testify/require"
)

func TestRevokedTokenCache(t *testing.T) {
	now := time.Now()

	t.Run("revoked until cleanup", func(t *testing.T) {
		cache := backendfake.NewInMemoryRevokedTokenCache()
		cache.Add("live", now, now.Add(time.Hour))
		cache.Add("stale", now.Add(-time.Hour), now.Add(-time.Second))

		require.True(t, cache.IsRevoked("live"))
		require.True(t, cache.IsRevoked("stale"))
		require.False(t, cache.IsRevoked("never"))

		cache.Cleanup()
		require.True(t, cache.IsRevoked("live"))
		require.False(t, cache.IsRevoked("stale"))
	})

	t.Run("overlap before revocation", func(t *testing.T) {
		cache := backendfake.NewInMemoryRevokedTokenCache()
		cache.Add("replaced", now.Add(time.Hour), now.Add(2*time.Hour))
		require.False(t, cache.IsRevoked("replaced"))

		// Logout during the overlap revokes at once.
		cache.Add("replaced", now.Add(-time.Second), now.Add(2*time.Hour))
		require.True(t, cache.IsRevoked("replaced"))

		// A later refresh cannot reopen the token.
		cache.Add("replaced", now.Add(time.Hour), now.Add(2*time.Hour))
		require.True(t, cache.IsRevoked("replaced"))
	})
}
