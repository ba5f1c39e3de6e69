package mutator

import (
	"context"

	"github.com/chanombude/twitter-go-client/internal/api"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// UpdateProfile submits a profile edit. No optimistic write: the server owns
// derived fields (avatar URL), so the cache is reconciled from the response.
func (c *Coordinator) UpdateProfile(ctx context.Context, req api.ProfileRequest, avatar *api.Upload) (common.User, error) {
	user, err := c.api.UpdateProfile(ctx, req, avatar)
	if err != nil {
		return common.User{}, err
	}

	c.store.SetUser(user)
	c.store.InvalidateKey(c.keys.UserByUsername(user.Username))
	c.viewer.SetUser(user)

	return user, nil
}
