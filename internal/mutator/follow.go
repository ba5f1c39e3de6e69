package mutator

import (
	"context"

	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// Follow flips the follow state on every cached copy of the target user.
// Failure rolls back with the inverse edit; success trusts the optimistic
// state and triggers no refetch at all, so surrounding lists never jump.
func (c *Coordinator) Follow(ctx context.Context, userID int64) error {
	return c.toggleFollow(ctx, userID, true)
}

// Unfollow is the inverse of Follow with the same policy.
func (c *Coordinator) Unfollow(ctx context.Context, userID int64) error {
	return c.toggleFollow(ctx, userID, false)
}

func (c *Coordinator) toggleFollow(ctx context.Context, userID int64, following bool) error {
	c.store.CancelInFlight(keys.Users, keys.Discovery, keys.Search)
	c.store.ApplyToUser(userID, followUpdater(following))

	var err error
	if following {
		err = c.api.Follow(ctx, userID)
	} else {
		err = c.api.Unfollow(ctx, userID)
	}

	if err != nil {
		c.store.ApplyToUser(userID, followUpdater(!following))
		return err
	}

	return nil
}

func followUpdater(following bool) func(common.User) common.User {
	delta := int32(1)
	if !following {
		delta = -1
	}

	return func(u common.User) common.User {
		u.FollowedByMe = following
		u.FollowersCount = floorCount(u.FollowersCount + delta)

		return u
	}
}
