package rest

import "socialhub/wire"

// Session holds the authenticated identity and token pair. The Client is its
// single owner: every mutation (login, refresh, logout) goes through the
// Client so token rotation is never observed half-applied.
type Session struct {
	User         wire.UserSummary
	AccessToken  string
	RefreshToken string
}

// Valid reports whether the session carries a usable identity.
func (s Session) Valid() bool {
	return s.User.ID > 0 && s.AccessToken != ""
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession replaces the session wholesale, for restoring a persisted login.
func (c *Client) SetSession(s Session) {
	c.mu.Lock()
	c.session = s
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange(s)
	}
}

// OnSessionChange registers a hook observing every session mutation,
// including token rotation during refresh. Used to persist credentials.
func (c *Client) OnSessionChange(fn func(Session)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Logout clears the session.
func (c *Client) Logout() {
	c.SetSession(Session{})
}
