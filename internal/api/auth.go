package api

import (
	"context"
	"net/http"

	"github.com/chanombude/twitter-go-client/internal/common"
)

// Refresh exchanges the same-site refresh cookie for a new access token. The
// expiring bearer token is deliberately not sent.
func (c *Client) Refresh(ctx context.Context) (common.AuthSession, error) {
	var out common.AuthSession

	err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    "/auth/refresh",
		out:     &out,
		noAuth:  true,
		noRetry: true,
	})

	return out, err
}

// Me resolves the current user from the bearer token.
func (c *Client) Me(ctx context.Context) (common.User, error) {
	var out common.User

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/auth/me",
		out:    &out,
	})

	return out, err
}

// Logout invalidates the server-side session. Not retried: a dead session is
// the desired end state either way.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{
		method:  http.MethodPost,
		path:    "/auth/logout",
		noRetry: true,
	})
}
