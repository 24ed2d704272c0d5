package authclient

import (
	"context"
	"time"
)

// RunBackgroundRefresh checks the session every interval and refreshes tokens
// that would expire before the next check. Failures are logged; the loop
// stops when ctx is done.
func (c *Client) RunBackgroundRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.log.Debug().Dur("interval", interval).Msg("Background token refresh started")
	for {
		select {
		case <-ctx.Done():
			c.log.Debug().Msg("Background token refresh stopped")
			return
		case <-ticker.C:
			refreshed, err := c.RefreshIfExpiring(ctx, interval)
			if err != nil {
				c.log.Warn().Err(err).Msg("Background token refresh failed")
				continue
			}
			if refreshed {
				c.log.Info().Msg("Background token refresh succeeded")
			}
		}
	}
}
