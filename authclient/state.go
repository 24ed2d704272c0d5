package authclient

import "context"

// State is the client's authentication state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateRefreshing:
		return "REFRESHING"
	default:
		return "ANONYMOUS"
	}
}

// State reports REFRESHING while any refresh is in flight, otherwise whether
// a decodable token is stored.
func (c *Client) State(ctx context.Context) State {
	if c.refreshing.Load() > 0 {
		return StateRefreshing
	}
	if c.IsAuthenticated(ctx) {
		return StateAuthenticated
	}
	return StateAnonymous
}
